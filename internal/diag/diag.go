// Package diag centralizes kodit's structured logging setup so the CLI,
// the evaluator, and the debugger all log through the same configured
// logrus.Logger.
package diag

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a logrus.Logger writing to out (stderr if nil). verbose
// raises the level to Debug; otherwise only Info and above are emitted.
func New(out io.Writer, verbose bool) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}

// Discard returns a logger that drops everything, used by callers (tests,
// library embedders) that don't want kodit's internals writing anywhere.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// GCCycle logs one garbage-collection pass at Debug level: routine
// housekeeping, not worth Info noise on every run.
func GCCycle(log *logrus.Logger, cycle, marked, swept, heapSize int) {
	log.WithFields(logrus.Fields{
		"cycle":  cycle,
		"marked": marked,
		"swept":  swept,
		"heap":   heapSize,
	}).Debug("gc cycle")
}

// Fatal logs an unrecoverable evaluator error at Error level before the
// CLI exits non-zero.
func Fatal(log *logrus.Logger, file string, line int, err error) {
	log.WithFields(logrus.Fields{
		"file": file,
		"line": line,
	}).Error(err)
}

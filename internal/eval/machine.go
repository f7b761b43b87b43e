// Package eval implements the evaluator: the stack of call environments,
// the label table, and the dispatch loop that executes canonicalized
// Lines against the value/table heap (spec.md §4.4).
package eval

import (
	"bufio"
	"io"

	"github.com/sirupsen/logrus"

	"kodit/internal/decomposer"
	"kodit/internal/diag"
	"kodit/internal/env"
	"kodit/internal/kerr"
	"kodit/internal/value"
)

// SaveSlot is the conventional identifier operations use as an implicit
// result slot. It carries no special treatment in the binder — it is an
// ordinary name, used only by convention (spec.md §4.4).
const SaveSlot = "@save"

// Machine is one evaluation unit: a canonicalized program, its label
// table, a frame stack, and the table heap it operates against.
type Machine struct {
	File  string
	Lines []decomposer.Line
	PC    int

	Labels env.LabelTable
	Frames *env.Stack
	Heap   *value.Manager

	Out io.Writer
	In  *bufio.Reader

	MaxCycles uint64
	cycles    uint64

	// pendingGC is set by materializeTable when a table literal's
	// creation crosses the GC threshold mid-expression, before the
	// result has been bound anywhere. step() flushes it once the
	// command has finished binding the result.
	pendingGC bool

	Log *logrus.Logger
}

// Option configures a Machine at construction time.
type Option func(*Machine)

// WithIO overrides the default stdout/stdin streams.
func WithIO(out io.Writer, in io.Reader) Option {
	return func(m *Machine) {
		m.Out = out
		m.In = bufio.NewReader(in)
	}
}

// WithGCThreshold overrides the table-creation count between automatic
// mark-sweep cycles (default 20, spec.md §4.3).
func WithGCThreshold(n int) Option {
	return func(m *Machine) { m.Heap = value.NewManager(n) }
}

// WithMaxCycles caps the number of dispatched lines before the machine
// aborts with InternalInvariant, a runaway-program safety net the
// distilled spec doesn't need but a hosted CLI does.
func WithMaxCycles(n uint64) Option {
	return func(m *Machine) { m.MaxCycles = n }
}

// WithLogger overrides the default (discarding) logger.
func WithLogger(l *logrus.Logger) Option {
	return func(m *Machine) { m.Log = l }
}

// New builds a Machine for the given canonicalized program and runs the
// first-pass label scan (spec.md §4.4 step 1).
func New(file string, lines []decomposer.Line, opts ...Option) (*Machine, error) {
	m := &Machine{
		File:   file,
		Lines:  lines,
		Frames: env.NewStack(),
		Heap:   value.NewManager(20),
		Log:    diag.Discard(),
	}

	for _, opt := range opts {
		opt(m)
	}
	if m.Out == nil {
		m.Out = io.Discard
	}
	if m.In == nil {
		m.In = bufio.NewReader(io.Discard)
	}

	labels, err := scanLabels(file, lines)
	if err != nil {
		return nil, err
	}
	m.Labels = labels

	return m, nil
}

// scanLabels implements spec.md §4.4 step 1: register LABEL, FUNCTION
// and FOR lines in the label table before execution starts, so jump
// targets are stable across the run.
func scanLabels(file string, lines []decomposer.Line) (env.LabelTable, error) {
	labels := make(env.LabelTable)
	for idx, ln := range lines {
		if len(ln.Items) == 0 {
			return nil, kerr.New(kerr.InternalInvariant, ln.LineNumber, "canonicalized line has no items")
		}
		cmd := ln.Items[0]
		if cmd.Kind != decomposer.ItemCommand {
			return nil, kerr.New(kerr.InternalInvariant, ln.LineNumber, "first item after canonicalization is not a command")
		}
		switch cmd.Op {
		case decomposer.CmdLabel, decomposer.CmdFunction, decomposer.CmdFor:
			if len(ln.Items) < 2 || ln.Items[1].Kind != decomposer.ItemLabel {
				return nil, kerr.New(kerr.WrongArity, ln.LineNumber, "expected a label name as the first argument")
			}
			labels[ln.Items[1].Text] = env.Coordinate{File: file, LineIndex: idx}
		}
	}
	return labels, nil
}

// Run executes the program from the current PC until it runs off the
// end of the line sequence or a recoverable/fatal error is raised.
// Every error carries the offending line number; the evaluator does not
// offer resumption (spec.md §7).
func (m *Machine) Run() error {
	for m.PC >= 0 && m.PC < len(m.Lines) {
		if m.MaxCycles != 0 && m.cycles >= m.MaxCycles {
			return kerr.Newf(kerr.InternalInvariant, m.currentLineNumber(), "exceeded max cycles (%d)", m.MaxCycles)
		}
		m.cycles++

		if err := m.step(); err != nil {
			return err
		}
	}
	return nil
}

// StepOnce dispatches exactly one line without the MaxCycles check Run
// applies, for callers (the debugger) that drive execution one step at a
// time under their own control.
func (m *Machine) StepOnce() error {
	return m.step()
}

func (m *Machine) currentLineNumber() int {
	if m.PC < 0 || m.PC >= len(m.Lines) {
		return 0
	}
	return m.Lines[m.PC].LineNumber
}

// resolveTarget implements the label-resolution helper of spec.md §4.4:
// the literal name "next" always resolves to pc+1.
func (m *Machine) resolveTarget(item decomposer.Item) (int, error) {
	if item.Kind != decomposer.ItemLabel && item.Kind != decomposer.ItemString {
		return 0, kerr.New(kerr.TypeMismatch, m.currentLineNumber(), "expected a label")
	}
	if item.Text == "next" {
		return m.PC + 1, nil
	}
	coord, ok := m.Labels[item.Text]
	if !ok {
		return 0, kerr.Newf(kerr.Unbound, m.currentLineNumber(), "undefined label %q", item.Text)
	}
	return coord.LineIndex, nil
}

// maybeCollect runs a GC cycle if a table creation just crossed the
// threshold, logging the outcome at Debug level.
func (m *Machine) maybeCollect(due bool) {
	if !due {
		return
	}
	roots := m.Frames.Roots()
	m.Heap.Collect(roots)
	cycles, marked, swept, heapSize := m.Heap.Stats()
	diag.GCCycle(m.Log, cycles, marked, swept, heapSize)
}

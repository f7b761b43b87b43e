// Package debugger wraps an eval.Machine with breakpoints and
// single-step control, the core a CLI or TUI front-end drives.
package debugger

import (
	"bytes"
	"fmt"

	"kodit/internal/eval"
)

// Debugger wraps a Machine, intercepting its run loop one line at a time
// so a front-end can inspect state between steps.
type Debugger struct {
	Machine *eval.Machine

	// Breakpoints holds line indices (within Machine.Lines) execution
	// should stop before dispatching.
	Breakpoints map[int]bool

	Output bytes.Buffer
	Halted bool
	LastErr error
}

// New wraps m for stepped execution.
func New(m *eval.Machine) *Debugger {
	return &Debugger{
		Machine:     m,
		Breakpoints: make(map[int]bool),
	}
}

// Break registers a breakpoint at the given line index.
func (d *Debugger) Break(lineIndex int) {
	d.Breakpoints[lineIndex] = true
}

// ClearBreak removes a breakpoint.
func (d *Debugger) ClearBreak(lineIndex int) {
	delete(d.Breakpoints, lineIndex)
}

// Step dispatches exactly one line, regardless of breakpoints.
func (d *Debugger) Step() error {
	if d.Halted {
		return fmt.Errorf("machine already halted")
	}
	if d.Machine.PC < 0 || d.Machine.PC >= len(d.Machine.Lines) {
		d.Halted = true
		return nil
	}
	err := d.Machine.StepOnce()
	if err != nil {
		d.Halted = true
		d.LastErr = err
		return err
	}
	return nil
}

// Continue steps until a breakpoint is hit, the program halts, or an
// error occurs.
func (d *Debugger) Continue() error {
	for !d.Halted {
		if d.Machine.PC < 0 || d.Machine.PC >= len(d.Machine.Lines) {
			d.Halted = true
			return nil
		}
		if d.Breakpoints[d.Machine.PC] {
			return nil
		}
		if err := d.Step(); err != nil {
			return err
		}
	}
	return d.LastErr
}

// CurrentLine returns the line number about to execute, or 0 if the
// machine has run off the end.
func (d *Debugger) CurrentLine() int {
	if d.Machine.PC < 0 || d.Machine.PC >= len(d.Machine.Lines) {
		return 0
	}
	return d.Machine.Lines[d.Machine.PC].LineNumber
}

// Frames returns the current call-stack depth, for a frame-stack panel.
func (d *Debugger) Frames() int {
	return d.Machine.Frames.Depth()
}

// Package tui implements kodit's terminal step debugger, a tview/tcell
// front-end over internal/debugger.
package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"kodit/internal/debugger"
)

// TUI is the terminal debugger's view layer.
type TUI struct {
	Debugger *debugger.Debugger
	App      *tview.Application

	MainLayout   *tview.Flex
	SourceView   *tview.TextView
	FramesView   *tview.TextView
	HeapView     *tview.TextView
	OutputView   *tview.TextView
	CommandInput *tview.InputField

	Source []string
}

// New builds a TUI wrapping d, rendering lines as the source panel.
func New(d *debugger.Debugger, sourceLines []string) *TUI {
	t := &TUI{
		Debugger: d,
		App:      tview.NewApplication(),
		Source:   sourceLines,
	}
	t.initViews()
	t.buildLayout()
	t.setupKeyBindings()
	return t
}

func (t *TUI) initViews() {
	t.SourceView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.SourceView.SetBorder(true).SetTitle(" Source ")

	t.FramesView = tview.NewTextView().SetDynamicColors(true)
	t.FramesView.SetBorder(true).SetTitle(" Frames ")

	t.HeapView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.HeapView.SetBorder(true).SetTitle(" Heap ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ")
	t.CommandInput.SetBorder(true).SetTitle(" Command (step/continue/break N/quit) ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	right := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.FramesView, 0, 1, false).
		AddItem(t.HeapView, 0, 2, false)

	top := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.SourceView, 0, 2, false).
		AddItem(right, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(top, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF5:
			t.run("continue")
			return nil
		case tcell.KeyF11:
			t.run("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := t.CommandInput.GetText()
	t.CommandInput.SetText("")
	if cmd != "" {
		t.run(cmd)
	}
}

func (t *TUI) run(cmd string) {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return
	}
	var err error
	switch fields[0] {
	case "step", "s":
		err = t.Debugger.Step()
	case "continue", "c":
		err = t.Debugger.Continue()
	case "break", "b":
		if len(fields) == 2 {
			var n int
			if _, scanErr := fmt.Sscanf(fields[1], "%d", &n); scanErr == nil {
				t.Debugger.Break(n)
			}
		}
	case "quit", "q":
		t.App.Stop()
		return
	}
	if err != nil {
		fmt.Fprintf(t.OutputView, "[red]error:[white] %v\n", err)
	}
	t.refresh()
}

func (t *TUI) refresh() {
	t.updateSource()
	t.updateFrames()
	t.updateHeap()
	t.App.Draw()
}

func (t *TUI) updateSource() {
	t.SourceView.Clear()
	line := t.Debugger.CurrentLine()
	for i, text := range t.Source {
		if i+1 == line {
			fmt.Fprintf(t.SourceView, "[yellow]-> %4d %s[white]\n", i+1, text)
		} else {
			fmt.Fprintf(t.SourceView, "   %4d %s\n", i+1, text)
		}
	}
}

func (t *TUI) updateFrames() {
	t.FramesView.Clear()
	fmt.Fprintf(t.FramesView, "depth: %d\n", t.Debugger.Frames())
}

func (t *TUI) updateHeap() {
	t.HeapView.Clear()
	cycles, marked, swept, _ := t.Debugger.Machine.Heap.Stats()
	fmt.Fprintf(t.HeapView, "gc cycles: %d\nlast marked: %d\nlast swept: %d\nlive tables: %d\n",
		cycles, marked, swept, t.Debugger.Machine.Heap.Size())
}

// Run starts the TUI event loop.
func (t *TUI) Run() error {
	t.refresh()
	return t.App.SetRoot(t.MainLayout, true).SetFocus(t.CommandInput).Run()
}

package eval

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"kodit/internal/decomposer"
	"kodit/internal/env"
	"kodit/internal/kerr"
	"kodit/internal/value"
)

// step dispatches and executes the current line, advancing m.PC per
// the command's own rule (spec.md §4.4's per-command table).
func (m *Machine) step() error {
	ln := m.Lines[m.PC]
	if len(ln.Items) == 0 || ln.Items[0].Kind != decomposer.ItemCommand {
		return kerr.New(kerr.InternalInvariant, ln.LineNumber, "line is not headed by a command")
	}
	args := ln.Items[1:]

	m.Log.WithFields(logrus.Fields{"line": ln.LineNumber, "cmd": ln.Items[0].Op}).Debug("dispatch")

	if err := m.dispatch(ln, args); err != nil {
		return err
	}
	if m.pendingGC {
		m.pendingGC = false
		m.maybeCollect(true)
	}
	return nil
}

func (m *Machine) dispatch(ln decomposer.Line, args []decomposer.Item) error {
	switch ln.Items[0].Op {
	case decomposer.CmdLabel, decomposer.CmdFunction, decomposer.CmdNoop:
		m.PC++
		return nil

	case decomposer.CmdGoto:
		return m.doGoto(args)
	case decomposer.CmdIf:
		return m.doIf(args)
	case decomposer.CmdFor:
		return m.doFor(args)
	case decomposer.CmdContinue:
		return m.doContinue(args)
	case decomposer.CmdCall:
		return m.doCall(args)
	case decomposer.CmdReturn:
		return m.doReturn(args)
	case decomposer.CmdSum:
		return m.doSum(args)
	case decomposer.CmdSay:
		return m.doSay(args)
	case decomposer.CmdAsk:
		return m.doAsk(args)
	case decomposer.CmdSet:
		return m.doSet(args)
	case decomposer.CmdTable:
		return m.doTable(args)
	case decomposer.CmdGet:
		return m.doGet(args)
	case decomposer.CmdPut:
		return m.doPut(args)
	case decomposer.CmdSlice:
		return m.doSlice(args)

	default:
		return kerr.New(kerr.InternalInvariant, ln.LineNumber, "unhandled command")
	}
}

func (m *Machine) arityError(want string) error {
	return kerr.Newf(kerr.WrongArity, m.currentLineNumber(), "expected %s", want)
}

func (m *Machine) doGoto(args []decomposer.Item) error {
	if len(args) != 1 {
		return m.arityError("GOTO target")
	}
	target, err := m.resolveTarget(args[0])
	if err != nil {
		return err
	}
	m.PC = target
	return nil
}

func (m *Machine) doIf(args []decomposer.Item) error {
	if len(args) != 3 {
		return m.arityError("IF cond then-label else-label")
	}
	cond, err := m.valueOf(args[0], false)
	if err != nil {
		return err
	}
	var target decomposer.Item
	if cond.Truthy() {
		target = args[1]
	} else {
		target = args[2]
	}
	pc, err := m.resolveTarget(target)
	if err != nil {
		return err
	}
	m.PC = pc
	return nil
}

func (m *Machine) doFor(args []decomposer.Item) error {
	if len(args) != 4 {
		return m.arityError("FOR self-label end-label var expr")
	}
	endLabel, varItem, exprItem := args[1], args[2], args[3]
	if varItem.Kind != decomposer.ItemLabel {
		return kerr.New(kerr.TypeMismatch, m.currentLineNumber(), "FOR variable must be a name")
	}
	current, err := m.numericOf(varItem, false)
	if err != nil {
		return err
	}
	end, err := m.numericOf(exprItem, false)
	if err != nil {
		return err
	}
	if current < end {
		m.PC++
		return nil
	}
	pc, err := m.resolveTarget(endLabel)
	if err != nil {
		return err
	}
	m.PC = pc
	return nil
}

func (m *Machine) doContinue(args []decomposer.Item) error {
	if len(args) != 1 {
		return m.arityError("CONTINUE for-label")
	}
	pc, err := m.resolveTarget(args[0])
	if err != nil {
		return err
	}
	forLine := m.Lines[pc]
	if len(forLine.Items) < 5 || forLine.Items[0].Op != decomposer.CmdFor {
		return kerr.New(kerr.TypeMismatch, m.currentLineNumber(), "CONTINUE target is not a FOR line")
	}
	varName := forLine.Items[3].Text
	current, err := m.numericOf(forLine.Items[3], false)
	if err != nil {
		return err
	}
	m.Frames.Assign(varName, value.Number(float64(roundToInt(current)+1)))
	m.PC = pc
	return nil
}

func (m *Machine) doCall(args []decomposer.Item) error {
	if len(args) < 1 {
		return m.arityError("CALL target [args...]")
	}
	target := args[0]
	if target.Kind != decomposer.ItemLabel && target.Kind != decomposer.ItemString {
		return kerr.New(kerr.TypeMismatch, m.currentLineNumber(), "CALL target must be a label or string")
	}
	pc, err := m.resolveTarget(target)
	if err != nil {
		return err
	}
	if pc < 0 || pc >= len(m.Lines) {
		return kerr.Newf(kerr.Unbound, m.currentLineNumber(), "CALL target %q is out of range", target.Text)
	}
	fn := m.Lines[pc]
	if len(fn.Items) < 1 || fn.Items[0].Op != decomposer.CmdFunction {
		return kerr.Newf(kerr.TypeMismatch, m.currentLineNumber(), "CALL target %q is not a FUNCTION", target.Text)
	}
	params := fn.Items[2:]
	callArgs := args[1:]
	if len(params) != len(callArgs) {
		return kerr.Newf(kerr.WrongArity, m.currentLineNumber(), "FUNCTION %q expects %d argument(s), got %d", target.Text, len(params), len(callArgs))
	}

	evaluated := make([]value.Value, len(callArgs))
	for i, a := range callArgs {
		v, err := m.valueOf(a, false)
		if err != nil {
			return err
		}
		evaluated[i] = v
	}

	m.Frames.Push(env.Coordinate{File: m.File, LineIndex: m.PC + 1})
	for i, p := range params {
		if p.Kind != decomposer.ItemLabel {
			return kerr.New(kerr.TypeMismatch, m.currentLineNumber(), "FUNCTION parameter must be a name")
		}
		m.Frames.Set(p.Text, evaluated[i])
	}
	m.PC = pc
	return nil
}

func (m *Machine) doReturn(args []decomposer.Item) error {
	if len(args) > 1 {
		return m.arityError("RETURN [expr]")
	}
	var result value.Value
	haveResult := false
	if len(args) == 1 {
		v, err := m.valueOf(args[0], false)
		if err != nil {
			return err
		}
		result, haveResult = v, true
	}

	ret, ok := m.Frames.PopReturn()
	if !ok {
		return kerr.New(kerr.RootReturn, m.currentLineNumber(), "RETURN from the root frame")
	}
	if haveResult {
		m.Frames.Set(SaveSlot, result)
	}
	m.PC = ret.LineIndex
	return nil
}

func (m *Machine) doSum(args []decomposer.Item) error {
	if len(args) != 3 {
		return m.arityError("SUM a op b")
	}
	if args[1].Kind != decomposer.ItemLabel {
		return kerr.New(kerr.TypeMismatch, m.currentLineNumber(), "SUM operator must be an operator symbol")
	}
	a, err := m.valueOf(args[0], false)
	if err != nil {
		return err
	}
	b, err := m.valueOf(args[2], false)
	if err != nil {
		return err
	}
	result, err := m.sum(args[1].Text, a, b)
	if err != nil {
		return err
	}
	m.Frames.Set(SaveSlot, result)
	m.PC++
	return nil
}

func (m *Machine) doSay(args []decomposer.Item) error {
	if len(args) != 1 {
		return m.arityError("SAY expr")
	}
	v, err := m.valueOf(args[0], false)
	if err != nil {
		return err
	}
	if v.Kind == value.KindTable {
		return kerr.New(kerr.SayTable, m.currentLineNumber(), "cannot SAY a table")
	}
	fmt.Fprint(m.Out, v.Display())
	m.PC++
	return nil
}

func (m *Machine) doAsk(args []decomposer.Item) error {
	if len(args) != 1 {
		return m.arityError("ASK prompt")
	}
	prompt, err := m.valueOf(args[0], false)
	if err != nil {
		return err
	}
	if prompt.Kind == value.KindTable {
		return kerr.New(kerr.SayTable, m.currentLineNumber(), "cannot use a table as an ASK prompt")
	}
	fmt.Fprint(m.Out, prompt.Display())
	if f, ok := m.Out.(interface{ Flush() error }); ok {
		_ = f.Flush()
	}
	line, err := m.In.ReadString('\n')
	if err != nil && line == "" {
		line = ""
	}
	line = strings.TrimRight(line, "\r\n")
	m.Frames.Set(SaveSlot, value.String(line))
	m.PC++
	return nil
}

func (m *Machine) doSet(args []decomposer.Item) error {
	if len(args) != 2 {
		return m.arityError("SET name expr")
	}
	if args[0].Kind != decomposer.ItemLabel {
		return kerr.New(kerr.TypeMismatch, m.currentLineNumber(), "SET target must be a name")
	}
	v, err := m.valueOf(args[1], false)
	if err != nil {
		return err
	}
	m.Frames.Set(args[0].Text, v)
	m.PC++
	return nil
}

func (m *Machine) doTable(args []decomposer.Item) error {
	if len(args) < 1 {
		return m.arityError("TABLE name dims...")
	}
	if args[0].Kind != decomposer.ItemLabel {
		return kerr.New(kerr.TypeMismatch, m.currentLineNumber(), "TABLE target must be a name")
	}
	dims := make([]int, len(args)-1)
	for i, a := range args[1:] {
		n, err := m.intOf(a, true)
		if err != nil {
			return err
		}
		dims[i] = n
	}
	tbl, due := m.Heap.Create(dims)
	m.Frames.Set(args[0].Text, tbl)
	m.maybeCollect(due)
	m.PC++
	return nil
}

func (m *Machine) tableOperand(item decomposer.Item) (value.Value, error) {
	v, err := m.valueOf(item, false)
	if err != nil {
		return value.Value{}, err
	}
	if v.Kind != value.KindTable {
		return value.Value{}, kerr.Newf(kerr.TypeMismatch, m.currentLineNumber(), "%q is not a table", item.Text)
	}
	return v, nil
}

func (m *Machine) doGet(args []decomposer.Item) error {
	if len(args) < 1 {
		return m.arityError("GET name indices...")
	}
	tbl, err := m.tableOperand(args[0])
	if err != nil {
		return err
	}
	indices, err := m.intSlice(args[1:], true)
	if err != nil {
		return err
	}
	v, err := m.Heap.Get(tbl, indices)
	if err != nil {
		if value.IsUninitCell(err) {
			return kerr.New(kerr.UninitCell, m.currentLineNumber(), "read of uninitialized cell")
		}
		return kerr.New(kerr.OutOfBounds, m.currentLineNumber(), err.Error())
	}
	m.Frames.Set(SaveSlot, v)
	m.PC++
	return nil
}

func (m *Machine) doPut(args []decomposer.Item) error {
	if len(args) < 2 {
		return m.arityError("PUT name indices... expr")
	}
	tbl, err := m.tableOperand(args[0])
	if err != nil {
		return err
	}
	indexItems := args[1 : len(args)-1]
	valueItem := args[len(args)-1]

	dims, err := m.Heap.Dimensions(tbl)
	if err != nil {
		return kerr.New(kerr.OutOfBounds, m.currentLineNumber(), err.Error())
	}
	if len(indexItems) != len(dims) {
		return kerr.Newf(kerr.WrongArity, m.currentLineNumber(), "PUT expects %d index(es), got %d", len(dims), len(indexItems))
	}

	indices, err := m.intSlice(indexItems, true)
	if err != nil {
		return err
	}
	v, err := m.valueOf(valueItem, false)
	if err != nil {
		return err
	}
	if err := m.Heap.Put(tbl, indices, v); err != nil {
		return kerr.New(kerr.OutOfBounds, m.currentLineNumber(), err.Error())
	}
	m.PC++
	return nil
}

func (m *Machine) doSlice(args []decomposer.Item) error {
	if len(args) < 1 {
		return m.arityError("SLICE name offsets...")
	}
	tbl, err := m.tableOperand(args[0])
	if err != nil {
		return err
	}
	offsets, err := m.intSlice(args[1:], true)
	if err != nil {
		return err
	}
	for _, o := range offsets {
		if o < 0 {
			return kerr.New(kerr.TypeMismatch, m.currentLineNumber(), "slice offsets must be non-negative")
		}
	}
	sliced, err := m.Heap.Slice(tbl, offsets)
	if err != nil {
		return kerr.New(kerr.SliceOutOfRange, m.currentLineNumber(), err.Error())
	}
	m.Frames.Set(SaveSlot, sliced)
	m.PC++
	return nil
}

func (m *Machine) intSlice(items []decomposer.Item, pure bool) ([]int, error) {
	out := make([]int, len(items))
	for i, it := range items {
		n, err := m.intOf(it, pure)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

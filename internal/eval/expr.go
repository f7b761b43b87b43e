package eval

import (
	"kodit/internal/decomposer"
	"kodit/internal/kerr"
	"kodit/internal/value"
)

// valueOf turns a LineItem into a runtime Value (spec.md §4.4,
// line_item_as_value). When pure is true, Table literals are rejected
// with TypeMismatch instead of being materialized — the restriction
// spec.md's open question resolves in favor of honoring, used for GET,
// PUT and SLICE index positions and for TABLE's dimension list and
// SLICE's offset list, none of which may allocate.
func (m *Machine) valueOf(item decomposer.Item, pure bool) (value.Value, error) {
	switch item.Kind {
	case decomposer.ItemNumber:
		return value.Number(item.Num), nil

	case decomposer.ItemString:
		return value.String(item.Text), nil

	case decomposer.ItemLabel:
		v, ok := m.Frames.Get(item.Text)
		if !ok {
			return value.Value{}, kerr.Newf(kerr.Unbound, m.currentLineNumber(), "unbound variable %q", item.Text)
		}
		return v, nil

	case decomposer.ItemTable:
		if pure {
			return value.Value{}, kerr.New(kerr.TypeMismatch, m.currentLineNumber(), "table literal not permitted here")
		}
		return m.materializeTable(item)

	default:
		return value.Value{}, kerr.Newf(kerr.TypeMismatch, m.currentLineNumber(), "%s is not a valid expression", item.Kind)
	}
}

// materializeTable allocates a heap table for a Table literal and
// writes its data items into cells in row-major order. The table isn't
// bound to any frame yet at this point, so a GC cycle here would find it
// unreachable and reclaim it out from under the caller; collection is
// deferred (pendingGC) until the enclosing command finishes and has had
// a chance to bind the result, matching doTable's create-then-bind-then-
// collect ordering.
func (m *Machine) materializeTable(item decomposer.Item) (value.Value, error) {
	cells := make([]value.Value, len(item.Data))
	for i, d := range item.Data {
		v, err := m.valueOf(d, false)
		if err != nil {
			return value.Value{}, err
		}
		cells[i] = v
	}
	tbl, due := m.Heap.Create(item.Dimensions)
	if err := m.Heap.WriteRaw(tbl, cells); err != nil {
		return value.Value{}, kerr.New(kerr.DimensionMismatch, m.currentLineNumber(), err.Error())
	}
	if due {
		m.pendingGC = true
	}
	return tbl, nil
}

// numericOf evaluates item and requires it to be a Number.
func (m *Machine) numericOf(item decomposer.Item, pure bool) (float64, error) {
	v, err := m.valueOf(item, pure)
	if err != nil {
		return 0, err
	}
	if v.Kind != value.KindNumber {
		return 0, kerr.Newf(kerr.TypeMismatch, m.currentLineNumber(), "expected a number, got %s", v.Kind)
	}
	return v.Num, nil
}

// intOf evaluates item, requires a Number, and rounds it to an int —
// used for table dimensions, indices and slice offsets.
func (m *Machine) intOf(item decomposer.Item, pure bool) (int, error) {
	n, err := m.numericOf(item, pure)
	if err != nil {
		return 0, err
	}
	return roundToInt(n), nil
}

func roundToInt(n float64) int {
	if n >= 0 {
		return int(n + 0.5)
	}
	return -int(-n + 0.5)
}

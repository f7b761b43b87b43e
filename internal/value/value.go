// Package value implements the tagged runtime Value type and the
// out-of-band table heap that backs kodit's only compound value: the
// multi-dimensional mutable table.
//
// Tables are never owned by the Values that reference them. A Value of
// kind Table carries only a Handle and a per-dimension offset vector;
// the cells live in a Manager-owned heap keyed by Handle. This breaks
// reference cycles at the type level (a cell can point right back at its
// own table) and lets mark-sweep collection reclaim storage without
// walking a tree of owners, the same arena-with-stable-ids shape the
// teacher lineage uses for its memory segments.
package value

import (
	"fmt"
	"strconv"
)

// Kind tags the active field of a Value.
type Kind int

const (
	KindUninitialized Kind = iota
	KindNumber
	KindString
	KindTable
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindTable:
		return "table"
	default:
		return "uninitialized"
	}
}

// Handle is an opaque, stable identifier for a heap table entry.
type Handle uint64

// NoHandle is the sentinel used by values that do not reference a table.
const NoHandle Handle = ^Handle(0)

// Value is the tagged union every expression in kodit evaluates to.
type Value struct {
	Kind   Kind
	Num    float64
	Str    string
	Handle Handle
	Offset []int
}

// Number constructs a numeric Value.
func Number(n float64) Value { return Value{Kind: KindNumber, Num: n} }

// String constructs a string Value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Table constructs a table Value from a handle and offset vector.
func Table(h Handle, offset []int) Value {
	return Value{Kind: KindTable, Handle: h, Offset: offset}
}

// Uninitialized is the sentinel value distinguishable from every live
// value, used for fresh table cells.
var Uninitialized = Value{Kind: KindUninitialized, Handle: NoHandle}

// IsUninitialized reports whether v is the Uninitialized sentinel.
func (v Value) IsUninitialized() bool { return v.Kind == KindUninitialized }

// Truthy implements the language's truthiness rule: false iff the value
// is the number 0.0; everything else, including the empty string and
// any table, is true.
func (v Value) Truthy() bool {
	return !(v.Kind == KindNumber && v.Num == 0.0)
}

// Display renders a value's canonical decimal/text form for SAY and for
// string concatenation. A table renders as the placeholder
// "<table #N>"; callers that must reject tables (SAY) check Kind
// themselves to raise the distinct SayTable fatal error instead.
func (v Value) Display() string {
	switch v.Kind {
	case KindNumber:
		return formatNumber(v.Num)
	case KindString:
		return v.Str
	case KindTable:
		return fmt.Sprintf("<table #%d>", v.Handle)
	default:
		return "<uninitialized>"
	}
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}

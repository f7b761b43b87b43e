package fmtlint

import (
	"strconv"
	"strings"

	"kodit/internal/decomposer"
)

// Columns names command and operand columns, in the style of the
// teacher's assembly formatter. Format accepts a Columns value but does
// not consult it: items are always separated by single spaces.
type Columns struct {
	CommandColumn int
	OperandColumn int
}

// DefaultColumns returns both columns at zero: the command starts flush
// left and each argument follows after a single space.
func DefaultColumns() Columns {
	return Columns{CommandColumn: 0, OperandColumn: 0}
}

// Format re-renders a canonicalized program as kodit source text, one
// physical line per logical Line. Labels get their own line; every other
// command is rendered command-then-arguments, space separated.
func Format(lines []decomposer.Line, cols Columns) string {
	var sb strings.Builder
	for _, ln := range lines {
		sb.WriteString(formatLine(ln))
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatLine(ln decomposer.Line) string {
	if len(ln.Items) == 0 {
		return ""
	}
	cmd := ln.Items[0]
	if cmd.Kind != decomposer.ItemCommand {
		return ""
	}
	if cmd.Op == decomposer.CmdNoop && len(ln.Items) == 1 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(cmd.Op.String())
	for _, it := range ln.Items[1:] {
		sb.WriteString(" ")
		sb.WriteString(renderItem(it))
	}
	return sb.String()
}

func renderItem(it decomposer.Item) string {
	switch it.Kind {
	case decomposer.ItemLabel:
		return it.Text
	case decomposer.ItemNumber:
		return strconv.FormatFloat(it.Num, 'g', -1, 64)
	case decomposer.ItemString:
		return quoteString(it.Text)
	case decomposer.ItemArray:
		return renderArray(it.Items)
	case decomposer.ItemTable:
		return renderArray(dimsToItems(it.Dimensions)) + " " + renderArray(it.Data)
	default:
		return it.Text
	}
}

func renderArray(items []decomposer.Item) string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, it := range items {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(renderItem(it))
	}
	sb.WriteString("]")
	return sb.String()
}

func dimsToItems(dims []int) []decomposer.Item {
	items := make([]decomposer.Item, len(dims))
	for i, d := range dims {
		items[i] = decomposer.Item{Kind: decomposer.ItemNumber, Num: float64(d)}
	}
	return items
}

var escapeReplacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
	"\r", `\r`,
)

func quoteString(s string) string {
	return `"` + escapeReplacer.Replace(s) + `"`
}

package decomposer

import (
	"strings"
	"testing"
)

func decomposeString(t *testing.T, src string) []Line {
	t.Helper()
	lines, err := All(strings.NewReader(src))
	if err != nil {
		t.Fatalf("decompose failed: %v", err)
	}
	return lines
}

func TestSimpleCommandLine(t *testing.T) {
	lines := decomposeString(t, `set x 2`)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	ln := lines[0]
	if ln.Items[0].Kind != ItemCommand || ln.Items[0].Op != CmdSet {
		t.Fatalf("expected SET command, got %+v", ln.Items[0])
	}
	if ln.Items[1].Kind != ItemLabel || ln.Items[1].Text != "x" {
		t.Fatalf("expected label x, got %+v", ln.Items[1])
	}
	if ln.Items[2].Kind != ItemNumber || ln.Items[2].Num != 2 {
		t.Fatalf("expected number 2, got %+v", ln.Items[2])
	}
}

func TestUnknownCommandBecomesNoop(t *testing.T) {
	lines := decomposeString(t, `frobnicate 1 2`)
	if lines[0].Items[0].Op != CmdNoop {
		t.Errorf("expected unknown command to become NOOP, got %v", lines[0].Items[0].Op)
	}
}

func TestOperatorGlyphsAreLabels(t *testing.T) {
	lines := decomposeString(t, `sum x + y`)
	op := lines[0].Items[2]
	if op.Kind != ItemLabel || op.Text != "+" {
		t.Errorf("expected Label(+), got %+v", op)
	}
}

func TestStringEscapes(t *testing.T) {
	lines := decomposeString(t, `say "Hello, World!\n"`)
	s := lines[0].Items[1]
	if s.Kind != ItemString || s.Text != "Hello, World!\n" {
		t.Errorf("expected decoded escape, got %+v", s)
	}
}

func TestLineComment(t *testing.T) {
	lines := decomposeString(t, "set x 1 // trailing comment")
	if len(lines[0].Items) != 3 {
		t.Errorf("expected comment to be dropped, got %+v", lines[0].Items)
	}
}

func TestMultiLineBracketContinuation(t *testing.T) {
	src := "table t [2\n2] [1 2 3 4]"
	lines := decomposeString(t, src)
	if len(lines) != 1 {
		t.Fatalf("expected one logical line, got %d", len(lines))
	}
	if lines[0].LineNumber != 1 {
		t.Errorf("expected logical line number 1 (where it started), got %d", lines[0].LineNumber)
	}
}

func TestArrayPairBecomesTable(t *testing.T) {
	lines := decomposeString(t, `table t [2 2] [1 2 3 4]`)
	tbl := lines[0].Items[2]
	if tbl.Kind != ItemTable {
		t.Fatalf("expected a Table item, got %+v", tbl)
	}
	if len(tbl.Dimensions) != 2 || tbl.Dimensions[0] != 2 || tbl.Dimensions[1] != 2 {
		t.Errorf("unexpected dimensions: %v", tbl.Dimensions)
	}
	if len(tbl.Data) != 4 {
		t.Errorf("expected 4 data items, got %d", len(tbl.Data))
	}
}

func TestArrayOfNumbersWithoutFollowingArrayFails(t *testing.T) {
	_, err := All(strings.NewReader(`say [1 2]`))
	if err == nil {
		t.Error("expected BadTableLiteral error")
	}
}

func TestOrdinaryArrayIsNotATable(t *testing.T) {
	lines := decomposeString(t, `say [a b]`)
	arr := lines[0].Items[1]
	if arr.Kind != ItemArray {
		t.Errorf("expected a plain Array (non-numeric contents), got %+v", arr)
	}
}

func TestUnclosedStringFails(t *testing.T) {
	_, err := All(strings.NewReader(`say "unterminated`))
	if err == nil {
		t.Error("expected UnclosedString error")
	}
}

func TestBlankLineBecomesNoop(t *testing.T) {
	lines := decomposeString(t, "\n")
	if lines[0].Items[0].Op != CmdNoop {
		t.Errorf("expected NOOP for blank line, got %+v", lines[0])
	}
}

package lexspec

import (
	"strings"
	"testing"

	"kodit/internal/decomposer"
)

func mustDecompose(t *testing.T, src string) decomposer.Line {
	t.Helper()
	lines, err := decomposer.All(strings.NewReader(src))
	if err != nil {
		t.Fatalf("decompose failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	return lines[0]
}

func TestDefaultSpecPassesThroughCanonicalSyntax(t *testing.T) {
	reg := NewRegistry(Default())
	ln := mustDecompose(t, "sum x + y")
	canon, err := reg.Canonicalize(ln)
	if err != nil {
		t.Fatalf("canonicalize failed: %v", err)
	}
	if len(canon.Items) != 4 {
		t.Fatalf("expected command + 3 args, got %d items", len(canon.Items))
	}
}

func TestCustomPatternReordersGlueWords(t *testing.T) {
	// "sum x plus y" -> canonical "sum x y": the pattern consumes the
	// glue word "plus" as a symbol and captures x and y at positions 1
	// and 2; nothing is inserted in place of the dropped word.
	spec := &Specification{
		Name: "natural",
		Matchings: []Matching{
			{
				Command: decomposer.CmdSum,
				Pattern: []Matcher{
					{Kind: MatchArgument, Index: 1},
					{Kind: MatchSymbol, Symbol: "plus"},
					{Kind: MatchArgument, Index: 2},
				},
			},
		},
	}
	reg := NewRegistry(spec, Default())
	ln := mustDecompose(t, "sum x plus y")
	canon, err := reg.Canonicalize(ln)
	if err != nil {
		t.Fatalf("canonicalize failed: %v", err)
	}
	if len(canon.Items) != 3 {
		t.Fatalf("expected command + 2 args, got %d: %+v", len(canon.Items), canon.Items)
	}
	if canon.Items[1].Text != "x" || canon.Items[2].Text != "y" {
		t.Errorf("unexpected captured args: %+v", canon.Items[1:])
	}
}

func TestNoMatchFails(t *testing.T) {
	spec := &Specification{Name: "strict", Matchings: []Matching{
		{Command: decomposer.CmdSay, Pattern: []Matcher{{Kind: MatchSymbol, Symbol: "only-this-exact-word"}}},
	}}
	reg := NewRegistry(spec)
	ln := mustDecompose(t, `say "hi"`)
	if _, err := reg.Canonicalize(ln); err == nil {
		t.Error("expected LexicalNoMatch")
	}
}

func TestLoadDocument(t *testing.T) {
	yamlDoc := []byte(`
name: natural-english
version: 1
commands:
  sum:
    format: [1, "plus", 2]
  say:
    format: ["..."]
`)
	spec, err := parseDocument(yamlDoc)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if spec.Name != "natural-english" || spec.Version != 1 {
		t.Errorf("unexpected header: %+v", spec)
	}
	if len(spec.Matchings) != 2 {
		t.Fatalf("expected 2 matchings, got %d", len(spec.Matchings))
	}
}

func TestLoadDocumentRejectsUnknownCommand(t *testing.T) {
	_, err := parseDocument([]byte("name: x\nversion: 1\ncommands:\n  frobnicate:\n    format: [\"...\"]\n"))
	if err == nil {
		t.Error("expected BadSpecification for unknown command")
	}
}

func TestLoadDocumentRejectsNoopTarget(t *testing.T) {
	_, err := parseDocument([]byte("name: x\nversion: 1\ncommands:\n  noop:\n    format: [\"...\"]\n"))
	if err == nil {
		t.Error("expected BadSpecification for NOOP target")
	}
}

func TestLoadDocumentRejectsEmpty(t *testing.T) {
	_, err := parseDocument([]byte(""))
	if err == nil {
		t.Error("expected BadSpecification for empty document")
	}
}

package lexspec

import (
	"kodit/internal/decomposer"
	"kodit/internal/kerr"
)

// Registry holds an ordered list of specifications, each tried in turn
// until one successfully canonicalizes a Line.
type Registry struct {
	specs []*Specification
}

// NewRegistry builds a registry that tries specs in the given order.
func NewRegistry(specs ...*Specification) *Registry {
	return &Registry{specs: specs}
}

// Canonicalize rewrites a decomposed Line into canonical (Command,
// args...) form. NOOP lines (blank source lines, or lines whose first
// token the decomposer could not resolve to a known command) bypass the
// specifications and are reduced to the bare NOOP command; any
// arguments they carried are dropped.
func (r *Registry) Canonicalize(ln decomposer.Line) (decomposer.Line, error) {
	if len(ln.Items) == 0 {
		return decomposer.Line{}, kerr.New(kerr.InternalInvariant, ln.LineNumber, "empty line reached the lexing specification registry")
	}
	cmd := ln.Items[0].Op
	if cmd == decomposer.CmdNoop {
		return decomposer.Line{LineNumber: ln.LineNumber, Items: []decomposer.Item{ln.Items[0]}}, nil
	}

	args := ln.Items[1:]
	for _, spec := range r.specs {
		for _, m := range spec.Matchings {
			if m.Command != cmd {
				continue
			}
			if captures, ok := matchPattern(m.Pattern, args); ok {
				items := append([]decomposer.Item{{Kind: decomposer.ItemCommand, Op: cmd}}, sortedArgs(captures)...)
				return decomposer.Line{LineNumber: ln.LineNumber, Items: items}, nil
			}
		}
	}
	return decomposer.Line{}, kerr.New(kerr.LexicalNoMatch, ln.LineNumber, "no lexing specification matched this line")
}

// CanonicalizeAll returns a canonicalized copy of a whole program,
// stopping at the first failure (position information is preserved in
// the error). The input slice is left unchanged.
func (r *Registry) CanonicalizeAll(lines []decomposer.Line) ([]decomposer.Line, error) {
	out := make([]decomposer.Line, len(lines))
	for i, ln := range lines {
		canon, err := r.Canonicalize(ln)
		if err != nil {
			return nil, err
		}
		out[i] = canon
	}
	return out, nil
}

// restPattern is the built-in default specification's pattern for every
// command: capture all remaining items positionally, in source order.
// It is what makes kodit's own canonical syntax (spec.md's worked
// examples) require no specification file at all.
var restPattern = []Matcher{{Kind: MatchRest}}

// Default builds the built-in specification the CLI places after the
// optional --lexspec document, matching each known command against its
// arguments verbatim. The CLI accepts a single --lexspec document; the
// flag is not repeatable.
func Default() *Specification {
	spec := &Specification{Name: "default", Version: 1}
	for name := range allCommandNames() {
		cmd, _ := decomposer.CommandByName(name)
		spec.Matchings = append(spec.Matchings, Matching{Command: cmd, Pattern: restPattern})
	}
	return spec
}

func allCommandNames() map[string]struct{} {
	names := map[string]struct{}{
		"label": {}, "function": {}, "call": {}, "return": {}, "goto": {},
		"if": {}, "for": {}, "continue": {}, "sum": {}, "say": {}, "ask": {},
		"set": {}, "table": {}, "get": {}, "put": {}, "slice": {},
	}
	return names
}

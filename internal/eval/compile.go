package eval

import (
	"io"

	"kodit/internal/decomposer"
	"kodit/internal/lexspec"
)

// Compile decomposes r into Lines and canonicalizes every one through
// reg, producing the program a Machine can run. This is the glue
// between the three hard-core subsystems named in spec.md §1.
func Compile(r io.Reader, reg *lexspec.Registry) ([]decomposer.Line, error) {
	raw, err := decomposer.All(r)
	if err != nil {
		return nil, err
	}
	return reg.CanonicalizeAll(raw)
}

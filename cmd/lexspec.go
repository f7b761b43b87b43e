package cmd

import "kodit/internal/lexspec"

// resolveRegistry builds the lexing-specification registry a run/fmt/lint
// invocation should use: the user-supplied YAML document layered in front
// of (never replacing) the built-in fallback, so unmatched commands still
// canonicalize via their default English syntax.
func resolveRegistry() (*lexspec.Registry, error) {
	if lexSpec == "" {
		return lexspec.NewRegistry(lexspec.Default()), nil
	}
	custom, err := lexspec.LoadFile(lexSpec)
	if err != nil {
		return nil, err
	}
	return lexspec.NewRegistry(custom, lexspec.Default()), nil
}

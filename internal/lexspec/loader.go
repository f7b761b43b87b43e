package lexspec

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"kodit/internal/decomposer"
	"kodit/internal/kerr"
)

// document mirrors the external YAML shape described in spec.md §4.2
// and §6: name, version, and a commands map of command_name -> format.
type document struct {
	Name     string                    `yaml:"name"`
	Version  int                       `yaml:"version"`
	Commands map[string]commandFormat  `yaml:"commands"`
}

type commandFormat struct {
	Format []any `yaml:"format"`
}

// LoadFile reads a lexing-specification YAML document from path and
// compiles it into a Specification.
func LoadFile(path string) (*Specification, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, kerr.LoadError(path, err)
	}
	spec, err := parseDocument(data)
	if err != nil {
		return nil, kerr.LoadError(path, err)
	}
	return spec, nil
}

func parseDocument(data []byte) (*Specification, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if doc.Name == "" && doc.Version == 0 && len(doc.Commands) == 0 {
		return nil, kerr.New(kerr.BadSpecification, 0, "empty lexing specification document")
	}

	spec := &Specification{Name: doc.Name, Version: doc.Version}
	for name, cf := range doc.Commands {
		cmd, ok := decomposer.CommandByName(name)
		if !ok {
			return nil, kerr.Newf(kerr.BadSpecification, 0, "unknown command %q in lexing specification", name)
		}
		if cmd == decomposer.CmdNoop {
			return nil, kerr.New(kerr.BadSpecification, 0, "NOOP cannot be targeted by a lexing specification")
		}

		pattern, err := compilePattern(cf.Format)
		if err != nil {
			return nil, fmt.Errorf("command %q: %w", name, err)
		}
		spec.Matchings = append(spec.Matchings, Matching{Command: cmd, Pattern: pattern})
	}
	return spec, nil
}

func compilePattern(format []any) ([]Matcher, error) {
	pattern := make([]Matcher, 0, len(format))
	for _, elem := range format {
		switch v := elem.(type) {
		case int:
			pattern = append(pattern, Matcher{Kind: MatchArgument, Index: v})
		case float64: // a number written with a fraction (e.g. 1.0); truncated to an index
			pattern = append(pattern, Matcher{Kind: MatchArgument, Index: int(v)})
		case string:
			if v == "..." {
				pattern = append(pattern, Matcher{Kind: MatchRest})
			} else {
				pattern = append(pattern, Matcher{Kind: MatchSymbol, Symbol: v})
			}
		default:
			return nil, fmt.Errorf("format element %v has unsupported type %T", elem, elem)
		}
	}
	return pattern, nil
}

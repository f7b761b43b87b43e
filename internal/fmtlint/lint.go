// Package fmtlint implements kodit's `fmt` and `lint` subcommands:
// canonical re-rendering of a decomposed program and static checks over
// its label graph.
package fmtlint

import (
	"fmt"
	"sort"

	"kodit/internal/decomposer"
	"kodit/internal/env"
)

// Level is a finding's severity.
type Level int

const (
	LintError   Level = iota // undefined label
	LintWarning              // unused label, unreachable code
)

func (l Level) String() string {
	switch l {
	case LintError:
		return "error"
	case LintWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Finding is a single lint result.
type Finding struct {
	Level   Level
	Line    int
	Message string
	Code    string
}

func (f *Finding) String() string {
	return fmt.Sprintf("line %d: %s: %s [%s]", f.Line, f.Level, f.Message, f.Code)
}

var jumpTargetPositions = map[decomposer.Command][]int{
	decomposer.CmdGoto:     {0},
	decomposer.CmdCall:     {0},
	decomposer.CmdContinue: {0},
	decomposer.CmdIf:       {1, 2},
	decomposer.CmdFor:      {1},
}

// Lint analyzes a canonicalized program for undefined labels, unused
// labels, and unreachable code following an unconditional jump or
// RETURN.
func Lint(lines []decomposer.Line, labels env.LabelTable) []Finding {
	var findings []Finding

	referenced := make(map[string]bool)
	for _, ln := range lines {
		if len(ln.Items) == 0 || ln.Items[0].Kind != decomposer.ItemCommand {
			continue
		}
		cmd := ln.Items[0].Op
		args := ln.Items[1:]
		for _, pos := range jumpTargetPositions[cmd] {
			if pos >= len(args) {
				continue
			}
			target := args[pos]
			if target.Kind != decomposer.ItemLabel && target.Kind != decomposer.ItemString {
				continue
			}
			if target.Text == "next" {
				continue
			}
			referenced[target.Text] = true
			if _, ok := labels[target.Text]; !ok {
				findings = append(findings, Finding{
					Level:   LintError,
					Line:    ln.LineNumber,
					Message: fmt.Sprintf("undefined label %q", target.Text),
					Code:    "UNDEF_LABEL",
				})
			}
		}
	}

	definedAt := make(map[string]int)
	for name, coord := range labels {
		definedAt[name] = coord.LineIndex
	}
	names := make([]string, 0, len(definedAt))
	for name := range definedAt {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !referenced[name] {
			findings = append(findings, Finding{
				Level:   LintWarning,
				Line:    lines[definedAt[name]].LineNumber,
				Message: fmt.Sprintf("label %q is never referenced", name),
				Code:    "UNUSED_LABEL",
			})
		}
	}

	labelsAtIndex := make(map[int]bool)
	for _, coord := range labels {
		labelsAtIndex[coord.LineIndex] = true
	}
	for i := 0; i < len(lines)-1; i++ {
		if len(lines[i].Items) == 0 {
			continue
		}
		cmd := lines[i].Items[0].Op
		if cmd != decomposer.CmdGoto && cmd != decomposer.CmdReturn {
			continue
		}
		if labelsAtIndex[i+1] {
			continue
		}
		findings = append(findings, Finding{
			Level:   LintWarning,
			Line:    lines[i+1].LineNumber,
			Message: "unreachable code after unconditional jump",
			Code:    "UNREACHABLE_CODE",
		})
	}

	sort.SliceStable(findings, func(i, j int) bool { return findings[i].Line < findings[j].Line })
	return findings
}

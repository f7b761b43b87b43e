package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/alecthomas/repr"
	"github.com/spf13/cobra"

	"kodit/internal/decomposer"
	"kodit/internal/env"
	"kodit/internal/fmtlint"
	"kodit/internal/source"
)

var lintDumpAST bool

var lintCmd = &cobra.Command{
	Use:   "lint <file.kdt>",
	Short: "check a kodit program for undefined labels, unused labels, and unreachable code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prog, err := source.Load(args[0])
		if err != nil {
			return err
		}
		raw, err := decomposer.All(bytes.NewReader(prog.Text))
		if err != nil {
			return err
		}
		reg, err := resolveRegistry()
		if err != nil {
			return err
		}
		lines, err := reg.CanonicalizeAll(raw)
		if err != nil {
			return err
		}

		if lintDumpAST {
			for _, ln := range lines {
				fmt.Fprintln(cmd.OutOrStdout(), repr.String(ln, repr.Indent("  ")))
			}
		}

		labels := collectLabels(lines)
		findings := fmtlint.Lint(lines, labels)
		for _, f := range findings {
			fmt.Fprintln(cmd.OutOrStdout(), f.String())
		}
		for _, f := range findings {
			if f.Level == fmtlint.LintError {
				os.Exit(1)
			}
		}
		return nil
	},
}

func init() {
	lintCmd.Flags().BoolVar(&lintDumpAST, "dump-ast", false, "print the canonicalized line/item structure before linting")
}

func collectLabels(lines []decomposer.Line) env.LabelTable {
	labels := make(env.LabelTable)
	for idx, ln := range lines {
		if len(ln.Items) < 2 {
			continue
		}
		switch ln.Items[0].Op {
		case decomposer.CmdLabel, decomposer.CmdFunction, decomposer.CmdFor:
			labels[ln.Items[1].Text] = env.Coordinate{LineIndex: idx}
		}
	}
	return labels
}

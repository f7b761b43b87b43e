package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kodit/internal/diag"
	"kodit/internal/eval"
	"kodit/internal/source"
)

var (
	maxCycles uint64
)

var runCmd = &cobra.Command{
	Use:   "run <file.kdt>",
	Short: "decompose, canonicalize and execute a kodit program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if verbose {
			cfg.Execution.Verbose = true
		}

		prog, err := source.Load(args[0])
		if err != nil {
			return err
		}

		reg, err := resolveRegistry()
		if err != nil {
			return err
		}

		log := diag.New(os.Stderr, cfg.Execution.Verbose)

		lines, err := eval.Compile(bytes.NewReader(prog.Text), reg)
		if err != nil {
			return err
		}

		cycles := cfg.Execution.MaxCycles
		if maxCycles != 0 {
			cycles = maxCycles
		}

		m, err := eval.New(prog.Path, lines,
			eval.WithIO(os.Stdout, bufio.NewReader(os.Stdin)),
			eval.WithGCThreshold(cfg.Execution.GCThreshold),
			eval.WithMaxCycles(cycles),
			eval.WithLogger(log),
		)
		if err != nil {
			return err
		}

		if err := m.Run(); err != nil {
			diag.Fatal(log, prog.Path, 0, err)
			return fmt.Errorf("%s: %w", prog.Path, err)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().Uint64Var(&maxCycles, "max-cycles", 0, "abort after this many dispatched lines (0 = use config default)")
}

package cmd

import (
	"bytes"
	"strings"

	"github.com/spf13/cobra"

	"kodit/internal/debugger"
	"kodit/internal/debugger/tui"
	"kodit/internal/eval"
	"kodit/internal/source"
)

var debugCmd = &cobra.Command{
	Use:   "debug <file.kdt>",
	Short: "step through a kodit program in a terminal debugger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		prog, err := source.Load(args[0])
		if err != nil {
			return err
		}
		reg, err := resolveRegistry()
		if err != nil {
			return err
		}
		lines, err := eval.Compile(bytes.NewReader(prog.Text), reg)
		if err != nil {
			return err
		}

		m, err := eval.New(prog.Path, lines, eval.WithGCThreshold(cfg.Execution.GCThreshold))
		if err != nil {
			return err
		}

		d := debugger.New(m)
		view := tui.New(d, strings.Split(string(prog.Text), "\n"))
		return view.Run()
	},
}

package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kodit/internal/decomposer"
	"kodit/internal/fmtlint"
	"kodit/internal/source"
)

var writeInPlace bool

var fmtCmd = &cobra.Command{
	Use:   "fmt <file.kdt>",
	Short: "re-render a kodit program in canonical layout",
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

		formatted := fmtlint.Format(lines, fmtlint.DefaultColumns())
		if writeInPlace {
			return os.WriteFile(prog.Path, []byte(formatted), 0644)
		}
		fmt.Fprint(cmd.OutOrStdout(), formatted)
		return nil
	},
}

func init() {
	fmtCmd.Flags().BoolVarP(&writeInPlace, "write", "w", false, "overwrite the source file instead of printing to stdout")
}

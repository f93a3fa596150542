package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sqljob-generator/internal/validate"
)

func newValidateCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "validate <file.sql>",
		Short: "Check a SQL file for structural defects",
		Long:  `validate reports undeclared aliases and duplicate joins, and closes unbalanced CASE/END and parentheses. With --write the repairs are saved back to the file.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			res := validate.Check(string(data))
			out := cmd.OutOrStdout()

			for _, w := range res.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}

			for _, c := range res.Changes {
				fmt.Fprintf(out, "fixed: %s\n", c)
			}

			if write && len(res.Changes) > 0 {
				if err := os.WriteFile(args[0], []byte(res.SQL), 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", args[0], err)
				}
			}

			fmt.Fprintf(out, "%d issue(s)\n", len(res.Warnings)+len(res.Changes))

			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Save repairs back to the file")

	return cmd
}

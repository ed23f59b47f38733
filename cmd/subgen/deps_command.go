package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"subgen/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check external tools and directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg)
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, result := range results {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			if !preflight.AllPassed(results) {
				return fmt.Errorf("one or more checks failed")
			}
			return nil
		},
	}
	return cmd
}

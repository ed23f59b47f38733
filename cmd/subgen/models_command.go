package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"subgen/internal/transcribe"
)

func newModelsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "models",
		Short:       "List known Whisper model selectors",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0)
			for _, info := range transcribe.KnownModels() {
				rows = append(rows, []string{info.Name, info.Description})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Model", "Description"},
				rows,
			))
			return nil
		},
	}
	return cmd
}

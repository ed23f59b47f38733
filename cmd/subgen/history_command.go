package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"subgen/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent pipeline runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), limitFlag)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					record.FinishedAt.Local().Format(time.DateTime),
					record.State,
					orDash(record.FailedStage),
					orDash(record.Language),
					strconv.Itoa(record.SegmentCount),
					record.VideoPath,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Finished", "State", "Failed stage", "Lang", "Segments", "Video"},
				rows, 5,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}

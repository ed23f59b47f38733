package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "extract <video>",
		Short: "Extract the primary audio track for transcription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, closeStore, err := ctx.newPipeline(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			audio, err := p.ExtractAudio(runCtx, args[0], outputFlag)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Extracted %s (%s, %d Hz, %d channel(s), %s)\n",
				audio.Path, audio.Format, audio.SampleRate, audio.Channels, formatDuration(audio.Duration))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Audio output path")
	return cmd
}

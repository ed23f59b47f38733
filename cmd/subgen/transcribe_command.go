package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"subgen/internal/fileutil"
	"subgen/internal/language"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "transcribe <audio>",
		Short: "Transcribe an audio file to subtitle text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			p, closeStore, err := ctx.newPipeline(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			result, err := p.Transcribe(runCtx, args[0], cfg.Transcription.Language)
			if err != nil {
				return err
			}
			text, err := p.FormatSubtitles(result)
			if err != nil {
				return err
			}

			if outputFlag == "" {
				fmt.Fprint(cmd.OutOrStdout(), text)
				return nil
			}
			if err := fileutil.WriteFileAtomic(outputFlag, []byte(text), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d segments (%s) to %s\n",
				len(result.Segments), language.DisplayName(result.Language), outputFlag)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Subtitle output path (default: stdout)")
	return cmd
}

package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"subgen/internal/language"
	"subgen/internal/pipeline"
	"subgen/internal/preflight"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var muxFlag bool
	var keepAudioFlag bool
	var outputFlag string
	var videoOutputFlag string
	var skipPreflightFlag bool

	cmd := &cobra.Command{
		Use:   "run <video>",
		Short: "Run the full pipeline: extract, transcribe, and write subtitles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if !skipPreflightFlag {
				results := preflight.RunAll(runCtx, cfg)
				if !preflight.AllPassed(results) {
					colorize := shouldColorize(cmd.OutOrStdout())
					for _, result := range results {
						kind := statusOK
						if !result.Passed {
							kind = statusError
						}
						fmt.Fprintln(cmd.OutOrStdout(), renderStatusLine(result.Name, kind, result.Detail, colorize))
					}
					return fmt.Errorf("preflight checks failed")
				}
			}

			p, closeStore, err := ctx.newPipeline(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			outcome, err := p.Run(runCtx, args[0], pipeline.Options{
				Language:     cfg.Transcription.Language,
				Mux:          muxFlag,
				KeepAudio:    keepAudioFlag,
				SubtitlePath: outputFlag,
				VideoPath:    videoOutputFlag,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s complete in %s\n", outcome.RunID, outcome.Elapsed.Round(timeRound))
			fmt.Fprintf(out, "  Subtitles: %s (%d segments, %s)\n",
				outcome.SubtitlePath, outcome.SegmentCount, language.DisplayName(outcome.Language))
			if outcome.VideoPath != "" {
				fmt.Fprintf(out, "  Video:     %s\n", outcome.VideoPath)
			}
			if outcome.AudioPath != "" {
				fmt.Fprintf(out, "  Audio:     %s\n", outcome.AudioPath)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&muxFlag, "mux", false, "Embed the subtitles back into the video")
	cmd.Flags().BoolVar(&keepAudioFlag, "keep-audio", false, "Retain the extracted audio intermediate")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Subtitle output path")
	cmd.Flags().StringVar(&videoOutputFlag, "video-output", "", "Muxed video output path")
	cmd.Flags().BoolVar(&skipPreflightFlag, "skip-preflight", false, "Skip readiness checks before the run")

	return cmd
}

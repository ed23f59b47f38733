package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newMuxCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string
	var languageFlag string

	cmd := &cobra.Command{
		Use:   "mux <video> <subtitles>",
		Short: "Embed a subtitle file into a video container",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, closeStore, err := ctx.newPipeline(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			muxed, err := p.Mux(runCtx, args[0], args[1], outputFlag, languageFlag)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Muxed %s (%d subtitle stream(s))\n",
				muxed.Path, muxed.SubtitleStreamCount())
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Muxed video output path")
	cmd.Flags().StringVar(&languageFlag, "subtitle-language", "", "Language tag for the new subtitle stream")
	return cmd
}

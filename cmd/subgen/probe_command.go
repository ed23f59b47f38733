package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"subgen/internal/language"
	"subgen/internal/media"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe <video>",
		Short: "Inspect a video container and its streams",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, closeStore, err := ctx.newPipeline(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			video, err := p.Probe(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", video.Path)
			fmt.Fprintf(out, "  Container: %s\n", video.Container)
			fmt.Fprintf(out, "  Duration:  %s\n", formatDuration(video.Duration))
			fmt.Fprintf(out, "  Size:      %.1f MiB\n", float64(video.SizeBytes)/(1<<20))
			fmt.Fprintf(out, "  Audio:     %s\n\n", yesNo(video.HasAudio()))

			rows := make([][]string, 0, len(video.Streams))
			for _, stream := range video.Streams {
				lang := "-"
				if stream.Language != "" {
					lang = language.DisplayName(stream.Language)
				}
				rows = append(rows, []string{
					strconv.Itoa(stream.Index),
					stream.Type,
					stream.Codec,
					streamDetail(stream),
					lang,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Type", "Codec", "Detail", "Language"},
				rows, 1,
			))
			return nil
		},
	}
	return cmd
}

func streamDetail(stream media.StreamInfo) string {
	switch stream.Type {
	case "video":
		if stream.Width > 0 {
			return fmt.Sprintf("%dx%d", stream.Width, stream.Height)
		}
	case "audio":
		if stream.Channels > 0 {
			return fmt.Sprintf("%d ch", stream.Channels)
		}
	}
	return "-"
}

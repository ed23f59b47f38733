package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"subgen/internal/fileutil"
	"subgen/internal/srt"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:         "convert <subtitles.srt>",
		Short:       "Convert a subtitle file to WebVTT",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read subtitles: %w", err)
			}
			segments, err := srt.Parse(string(data))
			if err != nil {
				return err
			}
			text, err := srt.ToWebVTT(segments)
			if err != nil {
				return err
			}

			output := outputFlag
			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".vtt"
			}
			if err := fileutil.WriteFileAtomic(output, []byte(text), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d cues to %s\n", len(segments), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "WebVTT output path")
	return cmd
}

package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var modelFlag string
	var languageFlag string

	ctx := newCommandContext(&configFlag, &modelFlag, &languageFlag)

	rootCmd := &cobra.Command{
		Use:           "subgen",
		Short:         "Generate and embed subtitles from video speech",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Whisper model selector (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&languageFlag, "language", "l", "", "ISO 639-1 language hint (overrides config)")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newExtractCommand(ctx))
	rootCmd.AddCommand(newTranscribeCommand(ctx))
	rootCmd.AddCommand(newMuxCommand(ctx))
	rootCmd.AddCommand(newProbeCommand(ctx))
	rootCmd.AddCommand(newConvertCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newDepsCommand(ctx))
	rootCmd.AddCommand(newModelsCommand())
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

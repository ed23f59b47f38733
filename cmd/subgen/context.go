package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"subgen/internal/config"
	"subgen/internal/history"
	"subgen/internal/logging"
	"subgen/internal/pipeline"
)

type commandContext struct {
	configFlag   *string
	modelFlag    *string
	languageFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, modelFlag, languageFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		modelFlag:    modelFlag,
		languageFlag: languageFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolvedPath, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.modelFlag != nil && strings.TrimSpace(*c.modelFlag) != "" {
			cfg.Transcription.Model = strings.TrimSpace(*c.modelFlag)
		}
		if c.languageFlag != nil && strings.TrimSpace(*c.languageFlag) != "" {
			cfg.Transcription.Language = strings.TrimSpace(*c.languageFlag)
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolvedPath
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// newPipeline wires the full pipeline with the real process boundary and the
// configured WhisperX backend. The history store is optional; a failure to
// open it is reported but does not block the run.
func (c *commandContext) newPipeline(cmd *cobra.Command) (*pipeline.Pipeline, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}

	store, err := history.Open(cfg)
	if err != nil {
		cmd.PrintErrf("warning: run history unavailable: %v\n", err)
		store = nil
	}
	closeStore := func() {
		if store != nil {
			_ = store.Close()
		}
	}

	model := pipeline.DefaultModel(cfg, nil, logger)
	return pipeline.New(cfg, nil, model, store, logger), closeStore, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAudio()
	c.normalizeTranscription()
	c.normalizeSubtitles()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
			return fmt.Errorf("paths.output_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeAudio() {
	c.Audio.Format = strings.ToLower(strings.TrimSpace(c.Audio.Format))
	if c.Audio.Format == "" {
		c.Audio.Format = defaultAudioFormat
	}
	c.Audio.Bitrate = strings.TrimSpace(c.Audio.Bitrate)
	if c.Audio.Bitrate == "" {
		c.Audio.Bitrate = defaultAudioBitrate
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = defaultAudioSampleRate
	}
	if c.Audio.Channels <= 0 {
		c.Audio.Channels = defaultAudioChannels
	}
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Model = strings.ToLower(strings.TrimSpace(c.Transcription.Model))
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultModel
	}
	c.Transcription.Device = strings.ToLower(strings.TrimSpace(c.Transcription.Device))
	if c.Transcription.Device == "" {
		c.Transcription.Device = defaultDevice
	}
	c.Transcription.Language = strings.ToLower(strings.TrimSpace(c.Transcription.Language))
	c.Transcription.FallbackLanguage = strings.ToLower(strings.TrimSpace(c.Transcription.FallbackLanguage))
	if c.Transcription.FallbackLanguage == "" {
		c.Transcription.FallbackLanguage = defaultFallbackLanguage
	}
	if c.Transcription.ChunkSeconds <= 0 {
		c.Transcription.ChunkSeconds = defaultChunkSeconds
	}
	if c.Transcription.MinSegmentMillis <= 0 {
		c.Transcription.MinSegmentMillis = defaultMinSegmentMillis
	}
	if c.Transcription.MaxMergeGapMillis <= 0 {
		c.Transcription.MaxMergeGapMillis = defaultMaxMergeGapMillis
	}
}

func (c *Config) normalizeSubtitles() {
	c.Subtitles.Codec = strings.ToLower(strings.TrimSpace(c.Subtitles.Codec))
	if c.Subtitles.Codec == "" {
		c.Subtitles.Codec = defaultSubtitleCodec
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

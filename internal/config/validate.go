package config

import (
	"errors"
	"fmt"
)

var knownModels = map[string]bool{
	"tiny":   true,
	"base":   true,
	"small":  true,
	"medium": true,
	"large":  true,
}

var knownAudioFormats = map[string]bool{
	"wav": true,
	"mp3": true,
}

var knownSubtitleCodecs = map[string]bool{
	"mov_text": true,
	"srt":      true,
	"ass":      true,
	"webvtt":   true,
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateSubtitles(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.StagingDir == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateTools() error {
	for name, value := range map[string]int{
		"tools.probe_timeout":      c.Tools.ProbeTimeout,
		"tools.extract_timeout":    c.Tools.ExtractTimeout,
		"tools.transcribe_timeout": c.Tools.TranscribeTimeout,
		"tools.mux_timeout":        c.Tools.MuxTimeout,
	} {
		if value <= 0 {
			return fmt.Errorf("%s must be a positive number of seconds", name)
		}
	}
	return nil
}

func (c *Config) validateAudio() error {
	if !knownAudioFormats[c.Audio.Format] {
		return fmt.Errorf("audio.format %q is not supported (wav, mp3)", c.Audio.Format)
	}
	if c.Audio.SampleRate < 8000 {
		return fmt.Errorf("audio.sample_rate %d is below the supported minimum of 8000", c.Audio.SampleRate)
	}
	if c.Audio.Channels > 2 {
		return fmt.Errorf("audio.channels %d exceeds the supported maximum of 2", c.Audio.Channels)
	}
	return nil
}

func (c *Config) validateTranscription() error {
	if !knownModels[c.Transcription.Model] {
		return fmt.Errorf("transcription.model %q is not recognized (tiny, base, small, medium, large)", c.Transcription.Model)
	}
	if c.Transcription.Device != "cpu" && c.Transcription.Device != "cuda" {
		return fmt.Errorf("transcription.device %q is not supported (cpu, cuda)", c.Transcription.Device)
	}
	if c.Transcription.FallbackLanguage == "" {
		return errors.New("transcription.fallback_language must be set")
	}
	if c.Transcription.MaxMergeGapMillis > c.Transcription.MinSegmentMillis*10 {
		return errors.New("transcription.max_merge_gap_millis is implausibly large relative to min_segment_millis")
	}
	return nil
}

func (c *Config) validateSubtitles() error {
	if !knownSubtitleCodecs[c.Subtitles.Codec] {
		return fmt.Errorf("subtitles.codec %q is not supported (mov_text, srt, ass, webvtt)", c.Subtitles.Codec)
	}
	return nil
}

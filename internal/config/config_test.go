package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subgen/internal/config"
)

func TestLoadDefaultsWhenNoConfigFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantStaging := filepath.Join(tempHome, ".local", "share", "subgen", "staging")
	if cfg.Paths.StagingDir != wantStaging {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, wantStaging)
	}
	if cfg.Transcription.Model != "base" {
		t.Fatalf("unexpected default model: %q", cfg.Transcription.Model)
	}
	if cfg.Transcription.FallbackLanguage != "en" {
		t.Fatalf("unexpected fallback language: %q", cfg.Transcription.FallbackLanguage)
	}
	if cfg.Audio.SampleRate != 16000 || cfg.Audio.Channels != 1 {
		t.Fatalf("unexpected audio defaults: %+v", cfg.Audio)
	}
	if cfg.Subtitles.Codec != "mov_text" {
		t.Fatalf("unexpected subtitle codec: %q", cfg.Subtitles.Codec)
	}
	if cfg.HistoryDBPath() != filepath.Join(cfg.Paths.LogDir, "history.db") {
		t.Fatalf("unexpected history db path: %q", cfg.HistoryDBPath())
	}
}

func TestLoadReadsTOMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`staging_dir = "` + filepath.Join(dir, "staging") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		"",
		"[transcription]",
		`model = "SMALL"`,
		`language = "ES"`,
		"",
		"[subtitles]",
		`codec = "srt"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Transcription.Model != "small" {
		t.Fatalf("expected model normalized to small, got %q", cfg.Transcription.Model)
	}
	if cfg.Transcription.Language != "es" {
		t.Fatalf("expected language normalized to es, got %q", cfg.Transcription.Language)
	}
	if cfg.Subtitles.Codec != "srt" {
		t.Fatalf("unexpected codec: %q", cfg.Subtitles.Codec)
	}
	// Sections absent from the file keep defaults.
	if cfg.Tools.TranscribeTimeout != 7200 {
		t.Fatalf("unexpected transcribe timeout: %d", cfg.Tools.TranscribeTimeout)
	}
}

func TestValidateRejectsUnknownModel(t *testing.T) {
	cfg := config.Default()
	cfg.Transcription.Model = "enormous"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unknown model")
	}
}

func TestValidateRejectsUnknownSubtitleCodec(t *testing.T) {
	cfg := config.Default()
	cfg.Subtitles.Codec = "pgs"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unsupported codec")
	}
}

func TestValidateRejectsNonPositiveTimeouts(t *testing.T) {
	cfg := config.Default()
	cfg.Tools.MuxTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for zero timeout")
	}
}

func TestSampleConfigIsValidTOML(t *testing.T) {
	sample := config.SampleConfig()
	if !strings.Contains(sample, "[transcription]") {
		t.Fatal("sample config missing transcription section")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.toml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
}

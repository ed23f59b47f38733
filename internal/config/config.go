package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// StagingDir hosts per-run temporary workspaces.
	StagingDir string `toml:"staging_dir"`
	// OutputDir is the default destination for subtitle and video outputs.
	OutputDir string `toml:"output_dir"`
	// LogDir holds log files and the run history database.
	LogDir string `toml:"log_dir"`
}

// Tools contains external binary names and invocation bounds.
type Tools struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	UVXBinary     string `toml:"uvx_binary"`
	// ProbeTimeout bounds ffprobe invocations, in seconds.
	ProbeTimeout int `toml:"probe_timeout"`
	// ExtractTimeout bounds audio extraction, in seconds.
	ExtractTimeout int `toml:"extract_timeout"`
	// TranscribeTimeout bounds a single model inference call, in seconds.
	TranscribeTimeout int `toml:"transcribe_timeout"`
	// MuxTimeout bounds subtitle muxing, in seconds.
	MuxTimeout int `toml:"mux_timeout"`
}

// Audio contains settings for the extracted audio intermediate.
type Audio struct {
	// Format selects the intermediate encoding ("wav" or "mp3").
	Format string `toml:"format"`
	// Bitrate applies to lossy formats (e.g. "192k").
	Bitrate string `toml:"bitrate"`
	// SampleRate in Hz. Speech models expect 16000.
	SampleRate int `toml:"sample_rate"`
	// Channels is the output channel count. Speech models expect mono.
	Channels int `toml:"channels"`
}

// Transcription contains speech-to-text settings.
type Transcription struct {
	// Model is the Whisper model selector (tiny, base, small, medium, large).
	Model string `toml:"model"`
	// Device selects where inference runs ("cpu" or "cuda").
	Device string `toml:"device"`
	// Language is an optional ISO 639-1 hint. Empty enables auto-detection.
	Language string `toml:"language"`
	// FallbackLanguage is used when no hint is given and detection fails.
	FallbackLanguage string `toml:"fallback_language"`
	// ChunkSeconds splits long audio into bounded inference chunks.
	ChunkSeconds int `toml:"chunk_seconds"`
	// MinSegmentMillis is the shortest standalone cue; shorter fragments are
	// merged into a neighbor when the gap allows.
	MinSegmentMillis int `toml:"min_segment_millis"`
	// MaxMergeGapMillis is the largest silence bridged when coalescing.
	MaxMergeGapMillis int `toml:"max_merge_gap_millis"`
}

// Subtitles contains serialization and muxing settings.
type Subtitles struct {
	// Codec is the subtitle stream codec for muxing (mov_text, srt, ass, webvtt).
	Codec string `toml:"codec"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for subgen.
//
// Configuration sections by subsystem:
//   - Paths: staging, output, and log directories
//   - Tools: external binary names and timeouts
//   - Audio: extracted audio intermediate settings
//   - Transcription: model selection and segment shaping
//   - Subtitles: subtitle codec for muxing
//   - Logging: log format and level
//
// The core pipeline receives a Config by reference and never reads the
// environment or config files itself; Load is for the CLI collaborator.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Tools         Tools         `toml:"tools"`
	Audio         Audio         `toml:"audio"`
	Transcription Transcription `toml:"transcription"`
	Subtitles     Subtitles     `toml:"subtitles"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/subgen/config.toml")
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized. When no file exists at the
// resolved location the defaults are returned with exists=false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("subgen.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a pipeline run relies on.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		if err := os.MkdirAll(c.Paths.OutputDir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", c.Paths.OutputDir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name.
func (c *Config) FFmpegBinary() string {
	if strings.TrimSpace(c.Tools.FFmpegBinary) == "" {
		return "ffmpeg"
	}
	return c.Tools.FFmpegBinary
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	if strings.TrimSpace(c.Tools.FFprobeBinary) == "" {
		return "ffprobe"
	}
	return c.Tools.FFprobeBinary
}

// UVXBinary returns the uvx executable name used to launch WhisperX.
func (c *Config) UVXBinary() string {
	if strings.TrimSpace(c.Tools.UVXBinary) == "" {
		return "uvx"
	}
	return c.Tools.UVXBinary
}

// ProbeTimeout bounds a single ffprobe invocation.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Tools.ProbeTimeout) * time.Second
}

// ExtractTimeout bounds a single audio extraction.
func (c *Config) ExtractTimeout() time.Duration {
	return time.Duration(c.Tools.ExtractTimeout) * time.Second
}

// TranscribeTimeout bounds a single model inference call.
func (c *Config) TranscribeTimeout() time.Duration {
	return time.Duration(c.Tools.TranscribeTimeout) * time.Second
}

// MuxTimeout bounds a single mux invocation.
func (c *Config) MuxTimeout() time.Duration {
	return time.Duration(c.Tools.MuxTimeout) * time.Second
}

// HistoryDBPath returns the run history database location under the log dir.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.Paths.LogDir, "history.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"subgen/internal/config"
	"subgen/internal/extcmd"
	"subgen/internal/logging"
	"subgen/internal/media"
	"subgen/internal/services"
)

const stageName = "extract"

// Extractor pulls a decodable audio track out of a video container into a
// standalone audio file shaped for speech models.
type Extractor struct {
	run      extcmd.Runner
	binary   string
	timeout  time.Duration
	settings config.Audio
	logger   *slog.Logger
}

// New builds an Extractor. The runner abstraction keeps ffmpeg behind the
// single external-process boundary and lets tests substitute a fake.
func New(run extcmd.Runner, binary string, timeout time.Duration, settings config.Audio, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Extractor{run: run, binary: binary, timeout: timeout, settings: settings, logger: logger}
}

// Extract writes the first audio stream of video to destination and returns
// the resulting AudioAsset. Exactly one new file is written; any failure
// deletes partial output before the error is surfaced.
func (e *Extractor) Extract(ctx context.Context, video media.VideoAsset, destination string) (media.AudioAsset, error) {
	if _, err := os.Stat(video.Path); err != nil {
		return media.AudioAsset{}, services.Wrap(services.ErrInput, stageName, "extract audio",
			fmt.Sprintf("video not found: %s", video.Path), err)
	}
	audioIndex := video.FirstAudioStreamIndex()
	if audioIndex < 0 {
		return media.AudioAsset{}, services.Wrap(services.ErrInput, stageName, "extract audio",
			fmt.Sprintf("%s has no audio stream", video.Path), nil)
	}

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", video.Path,
		"-map", fmt.Sprintf("0:%d", audioIndex),
		"-vn",
		"-sn",
		"-dn",
		"-ac", fmt.Sprintf("%d", e.settings.Channels),
		"-ar", fmt.Sprintf("%d", e.settings.SampleRate),
	}
	args = append(args, codecArgs(e.settings)...)
	args = append(args, destination)

	start := time.Now()
	e.logger.Debug("extracting audio",
		logging.String("source", video.Path),
		logging.Int("audio_index", audioIndex),
		logging.String("destination", destination),
	)

	if err := e.invoke(ctx, args, destination, "extract audio"); err != nil {
		return media.AudioAsset{}, err
	}

	asset := media.AudioAsset{
		Path:       destination,
		Format:     e.settings.Format,
		Bitrate:    e.settings.Bitrate,
		SampleRate: e.settings.SampleRate,
		Channels:   e.settings.Channels,
		Duration:   video.Duration,
		Source:     video.Path,
	}
	if info, err := os.Stat(destination); err == nil {
		e.logger.Debug("audio extracted",
			logging.String("destination", destination),
			logging.Int("size_bytes", int(info.Size())),
			logging.Duration("elapsed", time.Since(start)),
		)
	}
	return asset, nil
}

// Slice writes the [start, start+duration) window of audio to destination.
// The transcription engine uses it to bound inference input on long media.
func (e *Extractor) Slice(ctx context.Context, audio media.AudioAsset, start, duration time.Duration, destination string) (media.AudioAsset, error) {
	if _, err := os.Stat(audio.Path); err != nil {
		return media.AudioAsset{}, services.Wrap(services.ErrInput, stageName, "slice audio",
			fmt.Sprintf("audio not found: %s", audio.Path), err)
	}

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", fmt.Sprintf("%.3f", start.Seconds()),
		"-t", fmt.Sprintf("%.3f", duration.Seconds()),
		"-i", audio.Path,
		"-vn",
		"-sn",
		"-dn",
		"-ac", fmt.Sprintf("%d", audio.Channels),
		"-ar", fmt.Sprintf("%d", audio.SampleRate),
	}
	args = append(args, codecArgs(config.Audio{Format: audio.Format, Bitrate: audio.Bitrate})...)
	args = append(args, destination)

	if err := e.invoke(ctx, args, destination, "slice audio"); err != nil {
		return media.AudioAsset{}, err
	}

	slice := audio
	slice.Path = destination
	slice.Duration = duration
	if remaining := audio.Duration - start; remaining > 0 && remaining < duration {
		slice.Duration = remaining
	}
	return slice, nil
}

func (e *Extractor) invoke(ctx context.Context, args []string, destination, operation string) error {
	_, err := e.run(ctx, extcmd.Spec{
		Binary:  e.binary,
		Args:    args,
		Timeout: e.timeout,
	})
	if err != nil {
		removePartial(destination)
		return services.WrapStage(stageName, operation, "ffmpeg audio extraction failed", err)
	}
	if _, statErr := os.Stat(destination); statErr != nil {
		return services.Wrap(services.ErrIO, stageName, operation,
			fmt.Sprintf("ffmpeg produced no output at %s", destination), statErr)
	}
	return nil
}

// codecArgs maps the intermediate format to explicit encoder flags. Speech
// models consume PCM; lossy formats exist for retained intermediates.
func codecArgs(settings config.Audio) []string {
	switch settings.Format {
	case "mp3":
		return []string{"-c:a", "libmp3lame", "-b:a", settings.Bitrate}
	default:
		return []string{"-c:a", "pcm_s16le"}
	}
}

func removePartial(path string) {
	_ = os.Remove(path)
}

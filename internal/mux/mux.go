package mux

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"subgen/internal/extcmd"
	"subgen/internal/language"
	"subgen/internal/logging"
	"subgen/internal/media"
	"subgen/internal/services"
)

const stageName = "mux"

// codecContainers maps each subtitle codec to the containers that can carry
// it. ffmpeg accepts other pairings in places but players do not.
var codecContainers = map[string][]string{
	"mov_text": {"mp4", "mov", "m4v"},
	"srt":      {"mkv"},
	"subrip":   {"mkv"},
	"ass":      {"mkv"},
	"webvtt":   {"webm", "mkv"},
}

// Muxer embeds a subtitle file into a video container with ffmpeg stream
// copy. Video and audio payloads are never re-encoded.
type Muxer struct {
	run     extcmd.Runner
	binary  string
	timeout time.Duration
	codec   string
	logger  *slog.Logger
}

// New builds a Muxer writing subtitle streams in the given codec.
func New(run extcmd.Runner, binary string, timeout time.Duration, codec string, logger *slog.Logger) *Muxer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Muxer{run: run, binary: binary, timeout: timeout, codec: codec, logger: logger}
}

// CompatibleContainer reports whether codec can be carried by container.
func CompatibleContainer(codec, container string) bool {
	for _, name := range codecContainers[codec] {
		if name == container {
			return true
		}
	}
	return false
}

// Mux writes a copy of video carrying one additional subtitle stream to
// outputPath. The output lands at a temporary path first and is renamed into
// place only on success, so a failure never leaves a half-written file at
// outputPath. lang tags the new stream's language metadata.
func (m *Muxer) Mux(ctx context.Context, video media.VideoAsset, subtitlePath, outputPath, lang string) (media.VideoAsset, error) {
	if _, err := os.Stat(video.Path); err != nil {
		return media.VideoAsset{}, services.Wrap(services.ErrInput, stageName, "mux",
			fmt.Sprintf("video not found: %s", video.Path), err)
	}
	if _, err := os.Stat(subtitlePath); err != nil {
		return media.VideoAsset{}, services.Wrap(services.ErrInput, stageName, "mux",
			fmt.Sprintf("subtitle file not found: %s", subtitlePath), err)
	}

	container := containerOf(outputPath, video.Container)
	if !CompatibleContainer(m.codec, container) {
		return media.VideoAsset{}, services.Wrap(services.ErrInput, stageName, "mux",
			fmt.Sprintf("subtitle codec %q is not supported in %q containers", m.codec, container), nil)
	}

	// Same directory as the final output so the rename is atomic.
	dir := filepath.Dir(outputPath)
	base := filepath.Base(outputPath)
	tmpPath := filepath.Join(dir, ".mux-"+base)

	args := m.buildArgs(video, subtitlePath, tmpPath, lang)

	m.logger.Debug("muxing subtitle stream",
		logging.String("video", video.Path),
		logging.String("subtitles", subtitlePath),
		logging.String("codec", m.codec),
		logging.String("container", container),
	)

	if _, err := m.run(ctx, extcmd.Spec{Binary: m.binary, Args: args, Timeout: m.timeout}); err != nil {
		_ = os.Remove(tmpPath)
		return media.VideoAsset{}, services.WrapStage(stageName, "mux", "ffmpeg mux failed", err)
	}
	if _, err := os.Stat(tmpPath); err != nil {
		return media.VideoAsset{}, services.Wrap(services.ErrIO, stageName, "mux",
			"ffmpeg produced no output", err)
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		_ = os.Remove(tmpPath)
		return media.VideoAsset{}, services.Wrap(services.ErrIO, stageName, "mux",
			fmt.Sprintf("finalize output at %s", outputPath), err)
	}

	m.logger.Info("subtitle stream muxed",
		logging.String(logging.FieldEventType, "mux_complete"),
		logging.String("output", outputPath),
		logging.String("language", lang),
	)

	muxed := video
	muxed.Path = outputPath
	muxed.Container = container
	muxed.Streams = append(append([]media.StreamInfo(nil), video.Streams...), media.StreamInfo{
		Index:    len(video.Streams),
		Type:     "subtitle",
		Codec:    m.codec,
		Language: language.ToISO3(lang),
	})
	return muxed, nil
}

func (m *Muxer) buildArgs(video media.VideoAsset, subtitlePath, tmpPath, lang string) []string {
	subtitleIndex := video.SubtitleStreamCount()
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", video.Path,
		"-i", subtitlePath,
		"-map", "0",
		"-map", "1:0",
		"-c:v", "copy",
		"-c:a", "copy",
		"-c:s", m.codec,
	}
	if iso3 := language.ToISO3(lang); lang != "" && iso3 != "und" {
		args = append(args, fmt.Sprintf("-metadata:s:s:%d", subtitleIndex), "language="+iso3)
	}
	return append(args, tmpPath)
}

// containerOf derives the target container from the output extension,
// falling back to the probed source container.
func containerOf(outputPath, sourceContainer string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(outputPath)), ".")
	if ext != "" {
		return ext
	}
	return sourceContainer
}

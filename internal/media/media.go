package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"subgen/internal/extcmd"
	"subgen/internal/media/ffprobe"
	"subgen/internal/services"
)

// StreamInfo summarizes one stream in a probed container.
type StreamInfo struct {
	Index    int
	Type     string
	Codec    string
	Language string
	Width    int
	Height   int
	Channels int
}

// VideoAsset describes a probed video container. Immutable once probed; a
// pipeline run probes its input exactly once.
type VideoAsset struct {
	Path      string
	Container string
	Duration  time.Duration
	SizeBytes int64
	Streams   []StreamInfo
}

// AudioAsset describes an extracted audio intermediate. The pipeline run that
// created it owns the file and deletes it on cleanup unless the caller asked
// for retention.
type AudioAsset struct {
	Path       string
	Format     string
	Bitrate    string
	SampleRate int
	Channels   int
	Duration   time.Duration
	// Source is the video the audio was extracted from.
	Source string
}

// HasAudio reports whether the container carries at least one audio stream.
func (v VideoAsset) HasAudio() bool {
	for _, s := range v.Streams {
		if s.Type == "audio" {
			return true
		}
	}
	return false
}

// FirstAudioStreamIndex returns the container index of the first audio
// stream, or -1 when none exists.
func (v VideoAsset) FirstAudioStreamIndex() int {
	for _, s := range v.Streams {
		if s.Type == "audio" {
			return s.Index
		}
	}
	return -1
}

// AudioLanguage returns the language tag of the first audio stream, if any.
func (v VideoAsset) AudioLanguage() string {
	for _, s := range v.Streams {
		if s.Type == "audio" {
			return s.Language
		}
	}
	return ""
}

// SubtitleStreamCount returns the number of subtitle streams already present.
func (v VideoAsset) SubtitleStreamCount() int {
	count := 0
	for _, s := range v.Streams {
		if s.Type == "subtitle" {
			count++
		}
	}
	return count
}

// Probe inspects a video container and builds the immutable VideoAsset the
// rest of the pipeline works from. Missing files fail before any external
// process is spawned.
func Probe(ctx context.Context, run extcmd.Runner, ffprobeBinary, path string, timeout time.Duration) (VideoAsset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return VideoAsset{}, services.Wrap(services.ErrInput, "", "probe",
			fmt.Sprintf("video not found: %s", path), err)
	}
	if info.IsDir() {
		return VideoAsset{}, services.Wrap(services.ErrInput, "", "probe",
			fmt.Sprintf("%s is a directory", path), nil)
	}

	result, err := ffprobe.Inspect(ctx, run, ffprobeBinary, path, timeout)
	if err != nil {
		return VideoAsset{}, services.WrapStage("", "probe", "inspect container", err)
	}

	asset := VideoAsset{
		Path:      path,
		Container: containerName(result.Format.FormatName, path),
		Duration:  result.Duration(),
		SizeBytes: result.SizeBytes(),
	}
	for _, stream := range result.Streams {
		asset.Streams = append(asset.Streams, StreamInfo{
			Index:    stream.Index,
			Type:     strings.ToLower(stream.CodecType),
			Codec:    stream.CodecName,
			Language: stream.Language(),
			Width:    stream.Width,
			Height:   stream.Height,
			Channels: stream.Channels,
		})
	}
	return asset, nil
}

// containerName reduces ffprobe's comma-separated demuxer list to a single
// name, preferring the file extension when it appears in the list.
func containerName(formatName, path string) string {
	names := strings.Split(strings.TrimSpace(formatName), ",")
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, name := range names {
		if strings.TrimSpace(name) == ext {
			return ext
		}
	}
	if len(names) > 0 && strings.TrimSpace(names[0]) != "" {
		return strings.TrimSpace(names[0])
	}
	return ext
}

package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"subgen/internal/extcmd"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index      int               `json:"index"`
	CodecName  string            `json:"codec_name"`
	CodecType  string            `json:"codec_type"`
	Duration   string            `json:"duration"`
	BitRate    string            `json:"bit_rate"`
	Width      int               `json:"width"`
	Height     int               `json:"height"`
	SampleRate string            `json:"sample_rate"`
	Channels   int               `json:"channels"`
	Tags       map[string]string `json:"tags"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path through the supplied
// runner and decodes the JSON response. A nil runner uses the real boundary.
func Inspect(ctx context.Context, run extcmd.Runner, binary, path string, timeout time.Duration) (Result, error) {
	if run == nil {
		run = extcmd.Run
	}
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	res, err := run(ctx, extcmd.Spec{
		Binary:  binary,
		Args:    []string{"-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path},
		Timeout: timeout,
	})
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
	}

	var result Result
	if err := json.Unmarshal([]byte(res.Stdout), &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// VideoStreams returns the video streams in container order.
func (r Result) VideoStreams() []Stream {
	return r.streamsOfType("video")
}

// AudioStreams returns the audio streams in container order.
func (r Result) AudioStreams() []Stream {
	return r.streamsOfType("audio")
}

// SubtitleStreams returns the subtitle streams in container order.
func (r Result) SubtitleStreams() []Stream {
	return r.streamsOfType("subtitle")
}

func (r Result) streamsOfType(codecType string) []Stream {
	var matched []Stream
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, codecType) {
			matched = append(matched, stream)
		}
	}
	return matched
}

// FirstAudioStream returns the first audio stream and whether one exists.
func (r Result) FirstAudioStream() (Stream, bool) {
	audio := r.AudioStreams()
	if len(audio) == 0 {
		return Stream{}, false
	}
	return audio[0], true
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

// Duration returns the container duration, or 0 when unavailable.
func (r Result) Duration() time.Duration {
	seconds := r.DurationSeconds()
	if math.IsNaN(seconds) || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

// SizeBytes returns the reported container size in bytes, or 0 when unavailable.
func (r Result) SizeBytes() int64 {
	size := parseFloat(r.Format.Size)
	if math.IsNaN(size) || size < 0 {
		return 0
	}
	return int64(size)
}

// BitRate returns the container bitrate in bits per second, or 0 when unavailable.
func (r Result) BitRate() int64 {
	rate := parseFloat(r.Format.BitRate)
	if math.IsNaN(rate) || rate < 0 {
		return 0
	}
	return int64(rate)
}

// Language returns the stream's language tag, if any.
func (s Stream) Language() string {
	if len(s.Tags) == 0 {
		return ""
	}
	for _, key := range []string{"language", "LANGUAGE", "Language", "lang", "LANG"} {
		if value, ok := s.Tags[key]; ok {
			value = strings.TrimSpace(value)
			if value != "" {
				return strings.ToLower(value)
			}
		}
	}
	return ""
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}

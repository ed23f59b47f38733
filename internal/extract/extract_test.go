package extract_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"subgen/internal/config"
	"subgen/internal/extcmd"
	"subgen/internal/extract"
	"subgen/internal/media"
	"subgen/internal/services"
)

func testSettings() config.Audio {
	return config.Audio{Format: "wav", Bitrate: "192k", SampleRate: 16000, Channels: 1}
}

func seedVideo(t *testing.T) media.VideoAsset {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(path, []byte("fake"), 0o644); err != nil {
		t.Fatalf("seed video: %v", err)
	}
	return media.VideoAsset{
		Path:      path,
		Container: "mp4",
		Duration:  90 * time.Second,
		Streams: []media.StreamInfo{
			{Index: 0, Type: "video", Codec: "h264"},
			{Index: 1, Type: "audio", Codec: "aac", Channels: 2},
		},
	}
}

func TestExtractBuildsAudioAsset(t *testing.T) {
	video := seedVideo(t)
	destination := filepath.Join(t.TempDir(), "audio.wav")

	var gotSpec extcmd.Spec
	runner := func(ctx context.Context, spec extcmd.Spec) (extcmd.Result, error) {
		gotSpec = spec
		if err := os.WriteFile(destination, []byte("pcm"), 0o644); err != nil {
			t.Fatalf("write output: %v", err)
		}
		return extcmd.Result{}, nil
	}

	e := extract.New(runner, "ffmpeg", time.Minute, testSettings(), nil)
	asset, err := e.Extract(context.Background(), video, destination)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if asset.Path != destination || asset.Format != "wav" || asset.SampleRate != 16000 || asset.Channels != 1 {
		t.Fatalf("unexpected asset: %+v", asset)
	}
	if asset.Duration != video.Duration {
		t.Fatalf("asset duration %v, want %v", asset.Duration, video.Duration)
	}
	if asset.Source != video.Path {
		t.Fatalf("asset source %q, want %q", asset.Source, video.Path)
	}

	if gotSpec.Binary != "ffmpeg" {
		t.Fatalf("unexpected binary %q", gotSpec.Binary)
	}
	for _, want := range []string{"-map", "0:1", "-vn", "-ac", "-ar", "pcm_s16le"} {
		if !slices.Contains(gotSpec.Args, want) {
			t.Fatalf("args missing %q: %v", want, gotSpec.Args)
		}
	}
	if gotSpec.Args[len(gotSpec.Args)-1] != destination {
		t.Fatalf("destination must be the final argument: %v", gotSpec.Args)
	}
}

func TestExtractMissingInputFailsBeforeSpawning(t *testing.T) {
	called := false
	runner := func(ctx context.Context, spec extcmd.Spec) (extcmd.Result, error) {
		called = true
		return extcmd.Result{}, nil
	}

	e := extract.New(runner, "ffmpeg", time.Minute, testSettings(), nil)
	video := media.VideoAsset{Path: "/does/not/exist.mp4", Streams: []media.StreamInfo{{Index: 0, Type: "audio"}}}
	_, err := e.Extract(context.Background(), video, filepath.Join(t.TempDir(), "audio.wav"))
	if !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected input error, got %v", err)
	}
	if called {
		t.Fatal("runner must not be invoked for a missing input")
	}
}

func TestExtractNoAudioStream(t *testing.T) {
	video := seedVideo(t)
	video.Streams = video.Streams[:1]

	runner := func(ctx context.Context, spec extcmd.Spec) (extcmd.Result, error) {
		t.Fatal("runner must not be invoked without an audio stream")
		return extcmd.Result{}, nil
	}

	e := extract.New(runner, "ffmpeg", time.Minute, testSettings(), nil)
	_, err := e.Extract(context.Background(), video, filepath.Join(t.TempDir(), "audio.wav"))
	if !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected input error, got %v", err)
	}
}

func TestExtractDeletesPartialOutputOnFailure(t *testing.T) {
	video := seedVideo(t)
	destination := filepath.Join(t.TempDir(), "audio.wav")

	runner := func(ctx context.Context, spec extcmd.Spec) (extcmd.Result, error) {
		if err := os.WriteFile(destination, []byte("partial"), 0o644); err != nil {
			t.Fatalf("write partial: %v", err)
		}
		return extcmd.Result{}, services.Wrap(services.ErrExternalTool, "", "ffmpeg", "boom", nil)
	}

	e := extract.New(runner, "ffmpeg", time.Minute, testSettings(), nil)
	_, err := e.Extract(context.Background(), video, destination)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if _, statErr := os.Stat(destination); !os.IsNotExist(statErr) {
		t.Fatalf("partial output must be deleted, stat: %v", statErr)
	}
}

func TestExtractMissingOutputIsIOError(t *testing.T) {
	video := seedVideo(t)
	runner := func(ctx context.Context, spec extcmd.Spec) (extcmd.Result, error) {
		return extcmd.Result{}, nil
	}

	e := extract.New(runner, "ffmpeg", time.Minute, testSettings(), nil)
	_, err := e.Extract(context.Background(), video, filepath.Join(t.TempDir(), "audio.wav"))
	if !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected io error, got %v", err)
	}
}

func TestSliceBoundsWindow(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "audio.wav")
	if err := os.WriteFile(source, []byte("pcm"), 0o644); err != nil {
		t.Fatalf("seed audio: %v", err)
	}
	destination := filepath.Join(dir, "chunk.wav")

	var gotSpec extcmd.Spec
	runner := func(ctx context.Context, spec extcmd.Spec) (extcmd.Result, error) {
		gotSpec = spec
		if err := os.WriteFile(destination, []byte("pcm"), 0o644); err != nil {
			t.Fatalf("write chunk: %v", err)
		}
		return extcmd.Result{}, nil
	}

	audio := media.AudioAsset{Path: source, Format: "wav", SampleRate: 16000, Channels: 1, Duration: 70 * time.Second}
	e := extract.New(runner, "ffmpeg", time.Minute, testSettings(), nil)
	chunk, err := e.Slice(context.Background(), audio, 60*time.Second, 60*time.Second, destination)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}

	if !slices.Contains(gotSpec.Args, "-ss") || !slices.Contains(gotSpec.Args, "60.000") {
		t.Fatalf("args missing seek window: %v", gotSpec.Args)
	}
	if chunk.Path != destination {
		t.Fatalf("unexpected chunk path %q", chunk.Path)
	}
	if chunk.Duration != 10*time.Second {
		t.Fatalf("final chunk duration %v, want trailing remainder", chunk.Duration)
	}
}

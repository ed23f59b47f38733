package media_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"subgen/internal/extcmd"
	"subgen/internal/media"
	"subgen/internal/services"
)

const probeJSON = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1280, "height": 720},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "channels": 2, "tags": {"language": "eng"}}
  ],
  "format": {"filename": "clip.mp4", "nb_streams": 2, "duration": "42.5", "size": "2048", "format_name": "mov,mp4,m4a,3gp,3g2,mj2"}
}`

func TestProbeBuildsVideoAsset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(path, []byte("fake"), 0o644); err != nil {
		t.Fatalf("seed video: %v", err)
	}

	runner := func(ctx context.Context, spec extcmd.Spec) (extcmd.Result, error) {
		return extcmd.Result{Stdout: probeJSON}, nil
	}

	asset, err := media.Probe(context.Background(), runner, "ffprobe", path, time.Minute)
	if err != nil {
		t.Fatalf("Probe returned error: %v", err)
	}
	if asset.Container != "mp4" {
		t.Fatalf("unexpected container: %q", asset.Container)
	}
	if asset.Duration != time.Duration(42.5*float64(time.Second)) {
		t.Fatalf("unexpected duration: %v", asset.Duration)
	}
	if !asset.HasAudio() {
		t.Fatal("expected audio stream")
	}
	if asset.FirstAudioStreamIndex() != 1 {
		t.Fatalf("unexpected audio index: %d", asset.FirstAudioStreamIndex())
	}
	if asset.AudioLanguage() != "eng" {
		t.Fatalf("unexpected audio language: %q", asset.AudioLanguage())
	}
	if asset.SubtitleStreamCount() != 0 {
		t.Fatalf("unexpected subtitle count: %d", asset.SubtitleStreamCount())
	}
}

func TestProbeMissingFileFailsBeforeSpawning(t *testing.T) {
	called := false
	runner := func(ctx context.Context, spec extcmd.Spec) (extcmd.Result, error) {
		called = true
		return extcmd.Result{}, nil
	}

	_, err := media.Probe(context.Background(), runner, "ffprobe", "/does/not/exist.mp4", time.Minute)
	if !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected input error, got %v", err)
	}
	if called {
		t.Fatal("runner must not be invoked for a missing input")
	}
}

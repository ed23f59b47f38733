package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"subgen/internal/config"
	"subgen/internal/extcmd"
	"subgen/internal/history"
	"subgen/internal/media"
	"subgen/internal/pipeline"
	"subgen/internal/services"
	"subgen/internal/transcribe"
)

const probeJSON = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1280, "height": 720},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "channels": 2, "tags": {"language": "eng"}}
  ],
  "format": {"filename": "clip.mp4", "nb_streams": 2, "duration": "30.0", "size": "2048", "format_name": "mov,mp4,m4a,3gp,3g2,mj2"}
}`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

func seedVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		t.Fatalf("seed video: %v", err)
	}
	return path
}

// fakeRunner dispatches on the invoked tool: ffprobe answers with a fixed
// container inventory, ffmpeg writes its final (output) argument.
func fakeRunner(t *testing.T) extcmd.Runner {
	t.Helper()
	return func(ctx context.Context, spec extcmd.Spec) (extcmd.Result, error) {
		switch spec.Binary {
		case "ffprobe":
			return extcmd.Result{Stdout: probeJSON}, nil
		case "ffmpeg":
			out := spec.Args[len(spec.Args)-1]
			if err := os.WriteFile(out, []byte("media"), 0o644); err != nil {
				t.Fatalf("write ffmpeg output: %v", err)
			}
			return extcmd.Result{}, nil
		default:
			t.Fatalf("unexpected binary %q", spec.Binary)
			return extcmd.Result{}, nil
		}
	}
}

func stubModel() *transcribe.Stub {
	return &transcribe.Stub{
		Script: []transcribe.RawSegment{
			{Start: 0, End: 1200 * time.Millisecond, Text: "hello"},
			{Start: 1200 * time.Millisecond, End: 2500 * time.Millisecond, Text: "world"},
		},
		Language: "en",
	}
}

func assertStagingEmpty(t *testing.T, cfg *config.Config) {
	t.Helper()
	entries, err := os.ReadDir(cfg.Paths.StagingDir)
	if err != nil {
		t.Fatalf("read staging: %v", err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		t.Fatalf("staging not cleaned up: %v", names)
	}
}

func TestRunProducesSubtitleFile(t *testing.T) {
	cfg := testConfig(t)
	videoPath := seedVideo(t)
	p := pipeline.New(cfg, fakeRunner(t), stubModel(), nil, nil)

	outcome, err := p.Run(context.Background(), videoPath, pipeline.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if outcome.State != pipeline.StateDone {
		t.Fatalf("unexpected state %q", outcome.State)
	}
	if outcome.VideoPath != "" {
		t.Fatalf("muxing was not requested, got video output %q", outcome.VideoPath)
	}
	if outcome.Language != "en" || outcome.SegmentCount != 2 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}

	want := "1\n00:00:00,000 --> 00:00:01,200\nhello\n\n2\n00:00:01,200 --> 00:00:02,500\nworld\n\n"
	data, err := os.ReadFile(outcome.SubtitlePath)
	if err != nil {
		t.Fatalf("read subtitles: %v", err)
	}
	if string(data) != want {
		t.Fatalf("subtitle content:\n%q\nwant:\n%q", data, want)
	}
	if filepath.Dir(outcome.SubtitlePath) != cfg.Paths.OutputDir {
		t.Fatalf("subtitles not in output dir: %s", outcome.SubtitlePath)
	}

	assertStagingEmpty(t, cfg)
}

func TestRunWithMux(t *testing.T) {
	cfg := testConfig(t)
	videoPath := seedVideo(t)

	var muxArgs []string
	runner := func(ctx context.Context, spec extcmd.Spec) (extcmd.Result, error) {
		switch spec.Binary {
		case "ffprobe":
			return extcmd.Result{Stdout: probeJSON}, nil
		case "ffmpeg":
			if slices.Contains(spec.Args, "-c:s") {
				muxArgs = spec.Args
			}
			out := spec.Args[len(spec.Args)-1]
			if err := os.WriteFile(out, []byte("media"), 0o644); err != nil {
				t.Fatalf("write output: %v", err)
			}
			return extcmd.Result{}, nil
		}
		return extcmd.Result{}, nil
	}

	p := pipeline.New(cfg, runner, stubModel(), nil, nil)
	outcome, err := p.Run(context.Background(), videoPath, pipeline.Options{Mux: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if outcome.State != pipeline.StateDone {
		t.Fatalf("unexpected state %q", outcome.State)
	}
	if outcome.VideoPath == "" {
		t.Fatal("expected muxed video output")
	}
	if _, err := os.Stat(outcome.VideoPath); err != nil {
		t.Fatalf("muxed output missing: %v", err)
	}
	if muxArgs == nil || !slices.Contains(muxArgs, "mov_text") {
		t.Fatalf("mux invocation missing subtitle codec: %v", muxArgs)
	}
	assertStagingEmpty(t, cfg)
}

func TestRunKeepAudioRetainsIntermediate(t *testing.T) {
	cfg := testConfig(t)
	videoPath := seedVideo(t)
	p := pipeline.New(cfg, fakeRunner(t), stubModel(), nil, nil)

	outcome, err := p.Run(context.Background(), videoPath, pipeline.Options{KeepAudio: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if outcome.AudioPath == "" {
		t.Fatal("expected retained audio path")
	}
	if _, err := os.Stat(outcome.AudioPath); err != nil {
		t.Fatalf("retained audio missing: %v", err)
	}
	if filepath.Ext(outcome.AudioPath) != ".wav" {
		t.Fatalf("unexpected audio extension: %s", outcome.AudioPath)
	}
	assertStagingEmpty(t, cfg)
}

func TestRunExtractionFailureIsTerminal(t *testing.T) {
	cfg := testConfig(t)
	videoPath := seedVideo(t)

	runner := func(ctx context.Context, spec extcmd.Spec) (extcmd.Result, error) {
		if spec.Binary == "ffprobe" {
			return extcmd.Result{Stdout: probeJSON}, nil
		}
		return extcmd.Result{}, services.Wrap(services.ErrExternalTool, "", "ffmpeg", "no such codec", nil)
	}

	p := pipeline.New(cfg, runner, stubModel(), nil, nil)
	outcome, err := p.Run(context.Background(), videoPath, pipeline.Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	if outcome.State != pipeline.StateFailed {
		t.Fatalf("unexpected state %q", outcome.State)
	}
	if outcome.FailedStage != string(pipeline.StateExtracting) {
		t.Fatalf("unexpected failed stage %q", outcome.FailedStage)
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("error lost its marker: %v", err)
	}
	if !strings.Contains(err.Error(), string(pipeline.StateExtracting)) {
		t.Fatalf("error must name the failing stage: %v", err)
	}
	if outcome.SubtitlePath != "" {
		t.Fatalf("no subtitle output expected, got %q", outcome.SubtitlePath)
	}
	assertStagingEmpty(t, cfg)
}

type cancellingModel struct {
	cancel context.CancelFunc
}

func (m *cancellingModel) Name() string                         { return "cancelling" }
func (m *cancellingModel) Initialize(ctx context.Context) error { return nil }

func (m *cancellingModel) Infer(ctx context.Context, audio media.AudioAsset, language string) (transcribe.Inference, error) {
	m.cancel()
	<-ctx.Done()
	return transcribe.Inference{}, services.Wrap(services.ErrTimeout, "transcribe", "infer", "cancelled", ctx.Err())
}

func TestRunCancelledMidTranscribingLeavesNothingBehind(t *testing.T) {
	cfg := testConfig(t)
	videoPath := seedVideo(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := pipeline.New(cfg, fakeRunner(t), &cancellingModel{cancel: cancel}, nil, nil)
	outcome, err := p.Run(ctx, videoPath, pipeline.Options{})
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if outcome.State != pipeline.StateFailed {
		t.Fatalf("unexpected state %q", outcome.State)
	}
	if outcome.FailedStage != string(pipeline.StateTranscribing) {
		t.Fatalf("unexpected failed stage %q", outcome.FailedStage)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("cancellation must stay observable: %v", err)
	}

	assertStagingEmpty(t, cfg)

	entries, readErr := os.ReadDir(cfg.Paths.OutputDir)
	if readErr != nil {
		t.Fatalf("read output dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("cancelled run must not publish outputs: %v", entries)
	}
}

func TestRunRecordsHistory(t *testing.T) {
	cfg := testConfig(t)
	videoPath := seedVideo(t)

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer store.Close()

	p := pipeline.New(cfg, fakeRunner(t), stubModel(), store, nil)
	outcome, err := p.Run(context.Background(), videoPath, pipeline.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	record, err := store.GetByRunID(context.Background(), outcome.RunID)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if record == nil {
		t.Fatal("run not recorded")
	}
	if record.State != string(pipeline.StateDone) || record.SegmentCount != 2 {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.SubtitlePath != outcome.SubtitlePath {
		t.Fatalf("record subtitle path %q, want %q", record.SubtitlePath, outcome.SubtitlePath)
	}
}

func TestStandaloneEntryPoints(t *testing.T) {
	cfg := testConfig(t)
	videoPath := seedVideo(t)
	p := pipeline.New(cfg, fakeRunner(t), stubModel(), nil, nil)
	ctx := context.Background()

	audio, err := p.ExtractAudio(ctx, videoPath, "")
	if err != nil {
		t.Fatalf("ExtractAudio: %v", err)
	}
	if _, err := os.Stat(audio.Path); err != nil {
		t.Fatalf("extracted audio missing: %v", err)
	}

	result, err := p.Transcribe(ctx, audio.Path, "")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(result.Segments) != 2 {
		t.Fatalf("unexpected segments: %+v", result.Segments)
	}

	text, err := p.FormatSubtitles(result)
	if err != nil {
		t.Fatalf("FormatSubtitles: %v", err)
	}
	subtitlePath := filepath.Join(cfg.Paths.OutputDir, "clip.srt")
	if err := os.WriteFile(subtitlePath, []byte(text), 0o644); err != nil {
		t.Fatalf("write subtitles: %v", err)
	}

	muxed, err := p.Mux(ctx, videoPath, subtitlePath, "", "")
	if err != nil {
		t.Fatalf("Mux: %v", err)
	}
	if _, err := os.Stat(muxed.Path); err != nil {
		t.Fatalf("muxed output missing: %v", err)
	}
	assertStagingEmpty(t, cfg)
}

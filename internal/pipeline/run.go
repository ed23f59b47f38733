package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"subgen/internal/fileutil"
	"subgen/internal/history"
	"subgen/internal/logging"
	"subgen/internal/media"
	"subgen/internal/services"
	"subgen/internal/srt"
	"subgen/internal/transcribe"
)

// Run executes the full state machine for one video: probe, extract,
// transcribe, format, and optionally mux. Every temporary artifact lives in
// a per-run workspace that is removed on all exits; only the subtitle file,
// the muxed video, and (when requested) the audio intermediate survive.
// Stages never retry here; the only retry policy lives inside the
// transcription engine.
func (p *Pipeline) Run(ctx context.Context, videoPath string, opts Options) (Outcome, error) {
	runID := uuid.NewString()
	started := time.Now()
	ctx = services.WithRunID(ctx, runID)
	logger := p.logger.With(logging.String(logging.FieldRunID, runID))

	outcome := Outcome{RunID: runID, State: StateIdle}

	workspace := filepath.Join(p.cfg.Paths.StagingDir, "run-"+runID)
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		outcome.State = StateFailed
		outcome.FailedStage = string(StateIdle)
		outcome.Elapsed = time.Since(started)
		return outcome, services.Wrap(services.ErrIO, "pipeline", "create workspace", workspace, err)
	}

	var audio media.AudioAsset
	fail := func(state State, err error) (Outcome, error) {
		outcome.State = StateFailed
		outcome.FailedStage = string(state)
		wrapped := services.WrapStage(string(state), "run failed", "", err)
		logger.Error("run failed",
			logging.String(logging.FieldEventType, "run_failed"),
			logging.String(logging.FieldStage, string(state)),
			logging.String("error_kind", services.Kind(err)),
			logging.Error(err),
		)
		p.finish(ctx, &outcome, workspace, videoPath, opts, audio, started, wrapped)
		return outcome, wrapped
	}

	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_started"),
		logging.String("video", videoPath),
		logging.Bool("mux", opts.Mux),
	)

	// ExtractingAudio
	outcome.State = StateExtracting
	stageCtx := services.WithStage(ctx, string(StateExtracting))
	video, err := media.Probe(stageCtx, p.runner, p.cfg.FFprobeBinary(), videoPath, p.cfg.ProbeTimeout())
	if err != nil {
		return fail(StateExtracting, err)
	}
	audioDest := filepath.Join(workspace, "audio."+audioExt(p.cfg.Audio.Format))
	audio, err = p.extractor.Extract(stageCtx, video, audioDest)
	if err != nil {
		return fail(StateExtracting, err)
	}

	// Transcribing
	outcome.State = StateTranscribing
	stageCtx = services.WithStage(ctx, string(StateTranscribing))
	result, err := p.engine.Transcribe(stageCtx, audio, opts.Language, workspace)
	if err != nil {
		return fail(StateTranscribing, err)
	}
	outcome.Language = result.Language
	outcome.SegmentCount = len(result.Segments)

	// Formatting
	outcome.State = StateFormatting
	text, err := srt.Format(result.Segments)
	if err != nil {
		return fail(StateFormatting, err)
	}
	subtitlePath := p.subtitleDestination(videoPath, opts)
	if err := fileutil.WriteFileAtomic(subtitlePath, []byte(text), 0o644); err != nil {
		return fail(StateFormatting, services.Wrap(services.ErrIO, string(StateFormatting),
			"write subtitles", subtitlePath, err))
	}
	outcome.SubtitlePath = subtitlePath

	// Muxing, only on request
	if opts.Mux {
		outcome.State = StateMuxing
		stageCtx = services.WithStage(ctx, string(StateMuxing))
		videoDest := p.videoDestination(videoPath, opts)
		muxed, err := p.muxer.Mux(stageCtx, video, subtitlePath, videoDest, result.Language)
		if err != nil {
			return fail(StateMuxing, err)
		}
		outcome.VideoPath = muxed.Path
	}

	outcome.State = StateDone
	p.finish(ctx, &outcome, workspace, videoPath, opts, audio, started, nil)
	logger.Info("run complete",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String("subtitles", outcome.SubtitlePath),
		logging.Int("segments", outcome.SegmentCount),
		logging.Duration("elapsed", outcome.Elapsed),
	)
	return outcome, nil
}

// finish releases the workspace, retains the audio intermediate when asked,
// and records the run in history. It runs on every exit path.
func (p *Pipeline) finish(ctx context.Context, outcome *Outcome, workspace, videoPath string, opts Options, audio media.AudioAsset, started time.Time, runErr error) {
	if opts.KeepAudio && audio.Path != "" {
		if kept, err := p.retainAudio(videoPath, opts, audio); err == nil {
			outcome.AudioPath = kept
		} else {
			p.logger.Warn("failed to retain audio intermediate",
				logging.String("audio", audio.Path),
				logging.Error(err),
			)
		}
	}
	if err := os.RemoveAll(workspace); err != nil {
		p.logger.Warn("failed to remove workspace",
			logging.String("workspace", workspace),
			logging.Error(err),
		)
	}
	outcome.Elapsed = time.Since(started)

	if p.store == nil {
		return
	}
	record := history.Record{
		RunID:        outcome.RunID,
		VideoPath:    videoPath,
		SubtitlePath: outcome.SubtitlePath,
		VideoOutput:  outcome.VideoPath,
		Language:     outcome.Language,
		Model:        p.cfg.Transcription.Model,
		State:        string(outcome.State),
		FailedStage:  outcome.FailedStage,
		SegmentCount: outcome.SegmentCount,
		StartedAt:    started,
		FinishedAt:   time.Now(),
	}
	if runErr != nil {
		record.ErrorMessage = runErr.Error()
	}
	if _, err := p.store.Add(context.WithoutCancel(ctx), record); err != nil {
		p.logger.Warn("failed to record run history", logging.Error(err))
	}
}

// retainAudio moves the extracted audio next to the subtitle output. A
// cross-device rename falls back to a copy.
func (p *Pipeline) retainAudio(videoPath string, opts Options, audio media.AudioAsset) (string, error) {
	if _, err := os.Stat(audio.Path); err != nil {
		return "", err
	}
	dest := filepath.Join(filepath.Dir(p.subtitleDestination(videoPath, opts)),
		baseName(videoPath)+"."+audioExt(audio.Format))
	if err := os.Rename(audio.Path, dest); err != nil {
		if copyErr := fileutil.CopyFile(audio.Path, dest); copyErr != nil {
			return "", copyErr
		}
	}
	return dest, nil
}

// ExtractAudio is the standalone extraction entry point. destination may be
// empty to derive a path next to the configured output directory.
func (p *Pipeline) ExtractAudio(ctx context.Context, videoPath, destination string) (media.AudioAsset, error) {
	video, err := media.Probe(ctx, p.runner, p.cfg.FFprobeBinary(), videoPath, p.cfg.ProbeTimeout())
	if err != nil {
		return media.AudioAsset{}, err
	}
	if destination == "" {
		destination = filepath.Join(p.outputDir(videoPath), baseName(videoPath)+"."+audioExt(p.cfg.Audio.Format))
	}
	return p.extractor.Extract(ctx, video, destination)
}

// Transcribe is the standalone transcription entry point over an existing
// audio file. Chunk intermediates live in a temporary directory under
// staging and are always removed.
func (p *Pipeline) Transcribe(ctx context.Context, audioPath, language string) (transcribe.Result, error) {
	probed, err := media.Probe(ctx, p.runner, p.cfg.FFprobeBinary(), audioPath, p.cfg.ProbeTimeout())
	if err != nil {
		return transcribe.Result{}, err
	}
	audio := media.AudioAsset{
		Path:       audioPath,
		Format:     strings.TrimPrefix(filepath.Ext(audioPath), "."),
		SampleRate: p.cfg.Audio.SampleRate,
		Channels:   p.cfg.Audio.Channels,
		Duration:   probed.Duration,
	}

	if err := os.MkdirAll(p.cfg.Paths.StagingDir, 0o755); err != nil {
		return transcribe.Result{}, services.Wrap(services.ErrIO, "transcribe", "create staging directory",
			p.cfg.Paths.StagingDir, err)
	}
	workDir, err := os.MkdirTemp(p.cfg.Paths.StagingDir, "transcribe-")
	if err != nil {
		return transcribe.Result{}, services.Wrap(services.ErrIO, "transcribe", "create work directory", "", err)
	}
	defer os.RemoveAll(workDir)

	return p.engine.Transcribe(ctx, audio, language, workDir)
}

// FormatSubtitles serializes a transcription result to subtitle text.
func (p *Pipeline) FormatSubtitles(result transcribe.Result) (string, error) {
	return srt.Format(result.Segments)
}

// Mux is the standalone muxing entry point over an existing subtitle file.
func (p *Pipeline) Mux(ctx context.Context, videoPath, subtitlePath, outputPath, language string) (media.VideoAsset, error) {
	video, err := media.Probe(ctx, p.runner, p.cfg.FFprobeBinary(), videoPath, p.cfg.ProbeTimeout())
	if err != nil {
		return media.VideoAsset{}, err
	}
	if outputPath == "" {
		outputPath = p.videoDestination(videoPath, Options{})
	}
	if language == "" {
		language = video.AudioLanguage()
	}
	return p.muxer.Mux(ctx, video, subtitlePath, outputPath, language)
}

// Probe exposes container inspection to CLI collaborators.
func (p *Pipeline) Probe(ctx context.Context, videoPath string) (media.VideoAsset, error) {
	return media.Probe(ctx, p.runner, p.cfg.FFprobeBinary(), videoPath, p.cfg.ProbeTimeout())
}

func (p *Pipeline) subtitleDestination(videoPath string, opts Options) string {
	if opts.SubtitlePath != "" {
		return opts.SubtitlePath
	}
	return filepath.Join(p.outputDir(videoPath), baseName(videoPath)+".srt")
}

func (p *Pipeline) videoDestination(videoPath string, opts Options) string {
	if opts.VideoPath != "" {
		return opts.VideoPath
	}
	return filepath.Join(p.outputDir(videoPath),
		fmt.Sprintf("%s.subtitled%s", baseName(videoPath), filepath.Ext(videoPath)))
}

// outputDir resolves the destination directory: the configured output dir,
// or the video's own directory when none is set.
func (p *Pipeline) outputDir(videoPath string) string {
	if strings.TrimSpace(p.cfg.Paths.OutputDir) != "" {
		return p.cfg.Paths.OutputDir
	}
	return filepath.Dir(videoPath)
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func audioExt(format string) string {
	switch format {
	case "mp3":
		return "mp3"
	default:
		return "wav"
	}
}

package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"subgen/internal/config"
	"subgen/internal/language"
	"subgen/internal/logging"
	"subgen/internal/media"
	"subgen/internal/services"
)

const stageName = "transcribe"

// Slicer produces a bounded audio window for chunked inference. The extract
// package's Extractor satisfies it.
type Slicer interface {
	Slice(ctx context.Context, audio media.AudioAsset, start, duration time.Duration, destination string) (media.AudioAsset, error)
}

// Engine drives a Model over an audio asset: chunks long audio, retries a
// failed chunk once, resolves the result language, and shapes raw fragments
// into valid cue segments.
type Engine struct {
	model    Model
	slicer   Slicer
	settings config.Transcription
	logger   *slog.Logger
}

// NewEngine builds an Engine around the given model. slicer may be nil when
// chunking is disabled (ChunkSeconds <= 0).
func NewEngine(model Model, slicer Slicer, settings config.Transcription, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{model: model, slicer: slicer, settings: settings, logger: logger}
}

// Transcribe runs the full inference pass over audio. languageHint overrides
// the configured language; either is normalized to ISO 639-1 before reaching
// the model, and an unrecognizable hint is dropped in favor of detection.
// When no hint survives and detection is inconclusive the configured fallback
// applies. workDir hosts chunk intermediates and must outlive the call.
func (e *Engine) Transcribe(ctx context.Context, audio media.AudioAsset, languageHint, workDir string) (Result, error) {
	if err := e.model.Initialize(ctx); err != nil {
		return Result{}, services.Wrap(services.ErrModel, stageName, "initialize model",
			fmt.Sprintf("model %s failed to initialize", e.model.Name()), err)
	}

	hint := strings.TrimSpace(languageHint)
	if hint == "" {
		hint = e.settings.Language
	}
	if hint != "" {
		normalized := language.Normalize(hint)
		if normalized == "" {
			e.logger.Warn("ignoring unrecognized language hint", logging.String("hint", hint))
		}
		hint = normalized
	}

	var raw []RawSegment
	detected := ""

	chunk := time.Duration(e.settings.ChunkSeconds) * time.Second
	if chunk > 0 && e.slicer != nil && audio.Duration > chunk {
		chunks := int((audio.Duration + chunk - 1) / chunk)
		e.logger.Debug("chunking audio for inference",
			logging.Int("chunks", chunks),
			logging.Duration("chunk_size", chunk),
			logging.Duration("audio_duration", audio.Duration),
		)
		for i := 0; i < chunks; i++ {
			offset := time.Duration(i) * chunk
			dest := filepath.Join(workDir, fmt.Sprintf("chunk-%03d%s", i, filepath.Ext(audio.Path)))
			slice, err := e.slicer.Slice(ctx, audio, offset, chunk, dest)
			if err != nil {
				return Result{}, services.WrapStage(stageName, "slice chunk",
					fmt.Sprintf("chunk %d/%d", i+1, chunks), err)
			}
			inference, err := e.inferWithRetry(ctx, slice, hint)
			os.Remove(slice.Path)
			if err != nil {
				return Result{}, services.Wrap(services.ErrModel, stageName, "infer chunk",
					fmt.Sprintf("chunk %d/%d failed", i+1, chunks), err)
			}
			if detected == "" {
				detected = inference.Language
			}
			for _, seg := range inference.Segments {
				raw = append(raw, RawSegment{Start: seg.Start + offset, End: seg.End + offset, Text: seg.Text})
			}
		}
	} else {
		inference, err := e.inferWithRetry(ctx, audio, hint)
		if err != nil {
			return Result{}, services.Wrap(services.ErrModel, stageName, "infer",
				"inference failed", err)
		}
		detected = inference.Language
		raw = inference.Segments
	}

	resolved := hint
	if resolved == "" {
		resolved = detected
	}
	if resolved == "" {
		resolved = e.settings.FallbackLanguage
		e.logger.Debug("language detection inconclusive, using fallback",
			logging.String("language", resolved))
	}

	segments := Shape(raw, ShapeOptions{
		MinSegment:    time.Duration(e.settings.MinSegmentMillis) * time.Millisecond,
		MaxMergeGap:   time.Duration(e.settings.MaxMergeGapMillis) * time.Millisecond,
		AudioDuration: audio.Duration,
	})

	return Result{Segments: segments, Language: resolved, Audio: audio}, nil
}

// inferWithRetry retries a failed inference once. Cancellation is never
// retried; the second failure is the caller's problem.
func (e *Engine) inferWithRetry(ctx context.Context, audio media.AudioAsset, language string) (Inference, error) {
	inference, err := e.model.Infer(ctx, audio, language)
	if err == nil {
		return inference, nil
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Inference{}, err
	}
	e.logger.Warn("inference failed, retrying once",
		logging.String("audio", audio.Path),
		logging.Error(err),
	)
	return e.model.Infer(ctx, audio, language)
}

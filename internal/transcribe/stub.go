package transcribe

import (
	"context"

	"subgen/internal/media"
	"subgen/internal/services"
)

// Stub is a deterministic in-memory Model. It backs tests and the offline
// dry-run path, returning a fixed segment script regardless of audio content.
type Stub struct {
	Script   []RawSegment
	Language string
	// InitErr makes Initialize fail fatally.
	InitErr error
	// FailFirst makes the first n Infer calls fail before succeeding, to
	// exercise the engine's retry policy.
	FailFirst int

	InferCalls int
}

func (s *Stub) Name() string { return "stub" }

func (s *Stub) Initialize(ctx context.Context) error {
	if s.InitErr != nil {
		return services.Wrap(services.ErrModel, "transcribe", "initialize model", "stub init failed", s.InitErr)
	}
	return nil
}

func (s *Stub) Infer(ctx context.Context, audio media.AudioAsset, language string) (Inference, error) {
	s.InferCalls++
	if s.InferCalls <= s.FailFirst {
		return Inference{}, services.Wrap(services.ErrModel, "transcribe", "infer", "stub inference failed", nil)
	}
	lang := language
	if lang == "" {
		lang = s.Language
	}
	segments := make([]RawSegment, len(s.Script))
	copy(segments, s.Script)
	return Inference{Segments: segments, Language: lang}, nil
}

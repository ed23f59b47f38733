package transcribe

import (
	"context"
	"time"

	"subgen/internal/media"
	"subgen/internal/srt"
)

// RawSegment is one time-coded text fragment as reported by a model, before
// any invariant shaping.
type RawSegment struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Inference is the output of a single model call over one audio input.
type Inference struct {
	Segments []RawSegment
	// Language is the model's detected language, when the backend reports one.
	Language string
}

// Model is the pluggable speech-to-text capability. Initialize may be slow
// and fails fatally; Infer is the per-audio fast path. Implementations must
// be safe for sequential reuse across calls.
type Model interface {
	Name() string
	Initialize(ctx context.Context) error
	Infer(ctx context.Context, audio media.AudioAsset, language string) (Inference, error)
}

// Result is a completed transcription: shaped cue segments, the declared or
// detected language, and the audio they were produced from.
type Result struct {
	Segments []srt.Segment
	Language string
	Audio    media.AudioAsset
}

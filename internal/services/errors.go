package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for the pipeline error taxonomy. Components wrap failures
// with the most specific marker; callers classify with errors.Is.
var (
	// ErrInput marks a missing or invalid source asset.
	ErrInput = errors.New("input error")
	// ErrExternalTool marks a non-zero exit from a decoder/encoder/muxer.
	// The wrapped error carries the captured stderr.
	ErrExternalTool = errors.New("external tool error")
	// ErrModel marks transcription engine initialization or inference failure.
	ErrModel = errors.New("model error")
	// ErrFormat marks a serialization or parsing invariant violation.
	ErrFormat = errors.New("format error")
	// ErrTimeout marks an external process exceeding its bound.
	ErrTimeout = errors.New("timeout")
	// ErrIO marks a filesystem write or cleanup failure.
	ErrIO = errors.New("io error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// WrapStage adds stage context to an error that already carries a taxonomy
// marker (e.g. one produced by the extcmd boundary) without re-tagging it.
func WrapStage(stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if err == nil {
		return fmt.Errorf("%s", detail)
	}
	return fmt.Errorf("%s: %w", detail, err)
}

// Kind returns a short taxonomy label for a wrapped error, or "unknown".
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInput):
		return "input"
	case errors.Is(err, ErrExternalTool):
		return "external_tool"
	case errors.Is(err, ErrModel):
		return "model"
	case errors.Is(err, ErrFormat):
		return "format"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrIO):
		return "io"
	default:
		return "unknown"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

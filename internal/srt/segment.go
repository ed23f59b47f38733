package srt

import (
	"fmt"
	"strings"
	"time"

	"subgen/internal/services"
)

// Segment is one timed caption cue. Text may contain newlines for multi-line
// cues; every other control character is invalid.
type Segment struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// ValidateSequence checks the cue-sequence invariants: indices contiguous
// from 1, non-negative start times, start before end, chronological order
// with no overlap, and serializable text. Violations are format errors.
func ValidateSequence(segments []Segment) error {
	for i, seg := range segments {
		if seg.Index != i+1 {
			return formatErr(i+1, fmt.Sprintf("index %d is not contiguous (want %d)", seg.Index, i+1))
		}
		if seg.Start < 0 {
			return formatErr(seg.Index, fmt.Sprintf("negative start time %s", seg.Start))
		}
		if seg.Start >= seg.End {
			return formatErr(seg.Index, fmt.Sprintf("start %s is not before end %s", seg.Start, seg.End))
		}
		if i > 0 && segments[i-1].End > seg.Start {
			return formatErr(seg.Index, fmt.Sprintf("overlaps previous cue ending at %s", segments[i-1].End))
		}
		if err := validateText(seg.Index, seg.Text); err != nil {
			return err
		}
	}
	return nil
}

func validateText(index int, text string) error {
	if strings.TrimSpace(text) == "" {
		return formatErr(index, "empty cue text")
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			return formatErr(index, "cue text contains a blank line")
		}
		// A cue arrow inside text is indistinguishable from a timing line to
		// standard parsers.
		if strings.Contains(line, "-->") {
			return formatErr(index, "cue text contains a timing arrow")
		}
	}
	for _, r := range text {
		if r == '\n' {
			continue
		}
		if r < 0x20 || r == 0x7f {
			return formatErr(index, fmt.Sprintf("cue text contains control character %q", r))
		}
	}
	return nil
}

func formatErr(block int, message string) error {
	return services.Wrap(services.ErrFormat, "", "srt",
		fmt.Sprintf("block %d: %s", block, message), nil)
}

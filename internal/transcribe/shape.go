package transcribe

import (
	"sort"
	"strings"
	"time"

	"subgen/internal/srt"
)

// ShapeOptions control how raw model fragments are coalesced into cues.
type ShapeOptions struct {
	// MinSegment is the shortest standalone cue. Shorter fragments are merged
	// into their predecessor when the gap allows.
	MinSegment time.Duration
	// MaxMergeGap is the largest silence bridged when coalescing.
	MaxMergeGap time.Duration
	// AudioDuration, when positive, clips reported end times that overshoot
	// the audio.
	AudioDuration time.Duration
}

// Shape turns raw model output into a cue sequence satisfying the ordering
// invariants: chronological, non-overlapping, contiguously indexed from 1,
// with serializable text. The merge thresholds are policy; the invariants
// hold for any threshold choice.
func Shape(raw []RawSegment, opts ShapeOptions) []srt.Segment {
	cleaned := make([]RawSegment, 0, len(raw))
	for _, seg := range raw {
		text := sanitizeText(seg.Text)
		if text == "" {
			continue
		}
		if seg.Start < 0 {
			seg.Start = 0
		}
		if opts.AudioDuration > 0 && seg.End > opts.AudioDuration {
			seg.End = opts.AudioDuration
		}
		if seg.Start >= seg.End {
			continue
		}
		cleaned = append(cleaned, RawSegment{Start: seg.Start, End: seg.End, Text: text})
	}

	sort.SliceStable(cleaned, func(i, j int) bool { return cleaned[i].Start < cleaned[j].Start })

	merged := make([]RawSegment, 0, len(cleaned))
	for _, seg := range cleaned {
		if len(merged) > 0 {
			prev := &merged[len(merged)-1]
			if seg.Start < prev.End {
				if prev.End < seg.End {
					// Clip the overlap away; the remainder still carries the
					// fragment's own timing.
					seg.Start = prev.End
				} else {
					// Fully contained in the previous fragment.
					prev.Text = prev.Text + " " + seg.Text
					continue
				}
			}
			gap := seg.Start - prev.End
			short := seg.End-seg.Start < opts.MinSegment || prev.End-prev.Start < opts.MinSegment
			if short && gap <= opts.MaxMergeGap {
				prev.Text = prev.Text + " " + seg.Text
				prev.End = seg.End
				continue
			}
		}
		merged = append(merged, seg)
	}

	segments := make([]srt.Segment, 0, len(merged))
	for i, seg := range merged {
		segments = append(segments, srt.Segment{
			Index: i + 1,
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}
	return segments
}

// sanitizeText strips control characters the cue format cannot carry,
// rewrites timing arrows appearing in text, and collapses surrounding
// whitespace, so shaped output always serializes.
func sanitizeText(text string) string {
	var sb strings.Builder
	for _, r := range text {
		switch {
		case r == '\n':
			sb.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			sb.WriteRune(' ')
		default:
			sb.WriteRune(r)
		}
	}
	lines := strings.Split(sb.String(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		line = strings.ReplaceAll(line, "-->", "->")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

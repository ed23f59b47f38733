package transcribe

import (
	"testing"
	"time"

	"subgen/internal/srt"
)

func defaultShapeOptions() ShapeOptions {
	return ShapeOptions{
		MinSegment:  500 * time.Millisecond,
		MaxMergeGap: 300 * time.Millisecond,
	}
}

func TestShapeProducesValidSequence(t *testing.T) {
	raw := []RawSegment{
		{Start: 1200 * time.Millisecond, End: 2500 * time.Millisecond, Text: "world"},
		{Start: 0, End: 1200 * time.Millisecond, Text: "hello"},
	}
	segments := Shape(raw, defaultShapeOptions())
	if err := srt.ValidateSequence(segments); err != nil {
		t.Fatalf("shaped sequence invalid: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].Text != "hello" || segments[1].Text != "world" {
		t.Fatalf("unexpected order: %+v", segments)
	}
	if segments[0].Index != 1 || segments[1].Index != 2 {
		t.Fatalf("indices not renumbered: %+v", segments)
	}
}

func TestShapeMergesShortFragments(t *testing.T) {
	raw := []RawSegment{
		{Start: 0, End: 2 * time.Second, Text: "a full sentence"},
		{Start: 2100 * time.Millisecond, End: 2300 * time.Millisecond, Text: "uh"},
		{Start: 5 * time.Second, End: 7 * time.Second, Text: "another sentence"},
	}
	segments := Shape(raw, defaultShapeOptions())
	if len(segments) != 2 {
		t.Fatalf("expected short fragment to merge, got %+v", segments)
	}
	if segments[0].Text != "a full sentence uh" {
		t.Fatalf("unexpected merged text: %q", segments[0].Text)
	}
	if segments[0].End != 2300*time.Millisecond {
		t.Fatalf("merge must extend end time, got %v", segments[0].End)
	}
}

func TestShapeKeepsShortFragmentAcrossWideGap(t *testing.T) {
	raw := []RawSegment{
		{Start: 0, End: 2 * time.Second, Text: "a full sentence"},
		{Start: 4 * time.Second, End: 4200 * time.Millisecond, Text: "yes"},
	}
	segments := Shape(raw, defaultShapeOptions())
	if len(segments) != 2 {
		t.Fatalf("wide gap must not merge, got %+v", segments)
	}
}

func TestShapeClipsOverlap(t *testing.T) {
	raw := []RawSegment{
		{Start: 0, End: 2 * time.Second, Text: "first"},
		{Start: 1500 * time.Millisecond, End: 4 * time.Second, Text: "second"},
	}
	segments := Shape(raw, defaultShapeOptions())
	if err := srt.ValidateSequence(segments); err != nil {
		t.Fatalf("shaped sequence invalid: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %+v", segments)
	}
	if segments[1].Start != 2*time.Second {
		t.Fatalf("overlap not clipped: %+v", segments[1])
	}
}

func TestShapeMergesContainedFragment(t *testing.T) {
	raw := []RawSegment{
		{Start: 0, End: 3 * time.Second, Text: "outer"},
		{Start: time.Second, End: 2 * time.Second, Text: "inner"},
	}
	segments := Shape(raw, defaultShapeOptions())
	if len(segments) != 1 {
		t.Fatalf("contained fragment must merge, got %+v", segments)
	}
	if segments[0].Text != "outer inner" {
		t.Fatalf("unexpected text: %q", segments[0].Text)
	}
}

func TestShapeClipsToAudioDuration(t *testing.T) {
	opts := defaultShapeOptions()
	opts.AudioDuration = 10 * time.Second
	raw := []RawSegment{
		{Start: 8 * time.Second, End: 12 * time.Second, Text: "tail"},
		{Start: 11 * time.Second, End: 12 * time.Second, Text: "ghost"},
	}
	segments := Shape(raw, opts)
	if len(segments) != 1 {
		t.Fatalf("segment past audio end must be dropped, got %+v", segments)
	}
	if segments[0].End != 10*time.Second {
		t.Fatalf("end not clipped to audio duration: %v", segments[0].End)
	}
}

func TestShapeSanitizesText(t *testing.T) {
	raw := []RawSegment{
		{Start: 0, End: time.Second, Text: "  hello\tthere \r"},
		{Start: 2 * time.Second, End: 3 * time.Second, Text: "   "},
		{Start: 4 * time.Second, End: 5 * time.Second, Text: "keep\n\nme"},
	}
	segments := Shape(raw, defaultShapeOptions())
	if len(segments) != 2 {
		t.Fatalf("blank fragment must be dropped, got %+v", segments)
	}
	if segments[0].Text != "hello there" {
		t.Fatalf("control characters not collapsed: %q", segments[0].Text)
	}
	if segments[1].Text != "keep\nme" {
		t.Fatalf("blank interior line not removed: %q", segments[1].Text)
	}
}

func TestShapeEmptyInput(t *testing.T) {
	if segments := Shape(nil, defaultShapeOptions()); len(segments) != 0 {
		t.Fatalf("expected no segments, got %+v", segments)
	}
}

func TestShapeRewritesTimingArrowInText(t *testing.T) {
	raw := []RawSegment{{Start: 0, End: time.Second, Text: "go --> stop"}}
	segments := Shape(raw, defaultShapeOptions())
	if len(segments) != 1 {
		t.Fatalf("unexpected segments: %+v", segments)
	}
	if segments[0].Text != "go -> stop" {
		t.Fatalf("arrow not rewritten: %q", segments[0].Text)
	}
	if _, err := srt.Format(segments); err != nil {
		t.Fatalf("shaped output must serialize: %v", err)
	}
}

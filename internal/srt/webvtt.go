package srt

import "strings"

// ToWebVTT serializes a validated cue sequence as WebVTT. The cue structure
// is the same as SRT except for the file header and the period millisecond
// separator; index lines are dropped since WebVTT cue identifiers are
// optional.
func ToWebVTT(segments []Segment) (string, error) {
	if err := ValidateSequence(segments); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("WEBVTT\n\n")
	for _, seg := range segments {
		sb.WriteString(strings.ReplaceAll(FormatTimestamp(seg.Start), ",", "."))
		sb.WriteString(" --> ")
		sb.WriteString(strings.ReplaceAll(FormatTimestamp(seg.End), ",", "."))
		sb.WriteByte('\n')
		sb.WriteString(seg.Text)
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

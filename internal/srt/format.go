package srt

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Format serializes a validated cue sequence to SRT text. Each block is an
// index line, a timing line, one or more text lines, and a blank separator.
// Sequences violating the ordering/non-overlap invariants are rejected
// instead of producing invalid output.
func Format(segments []Segment) (string, error) {
	if err := ValidateSequence(segments); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, seg := range segments {
		sb.WriteString(strconv.Itoa(seg.Index))
		sb.WriteByte('\n')
		sb.WriteString(FormatTimestamp(seg.Start))
		sb.WriteString(" --> ")
		sb.WriteString(FormatTimestamp(seg.End))
		sb.WriteByte('\n')
		sb.WriteString(seg.Text)
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

// Parse reads SRT text back into a cue sequence, enforcing the same
// invariants Format guarantees. Malformed indices, timestamps, or block
// structure are reported with the offending block number.
func Parse(text string) ([]Segment, error) {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	trimmed := strings.TrimRight(normalized, "\n")
	if strings.TrimSpace(trimmed) == "" {
		return nil, nil
	}

	blocks := strings.Split(trimmed, "\n\n")
	segments := make([]Segment, 0, len(blocks))
	for i, block := range blocks {
		blockNum := i + 1
		lines := strings.Split(block, "\n")
		if len(lines) < 3 {
			return nil, formatErr(blockNum, "incomplete block (need index, timing, and text lines)")
		}

		index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
		if err != nil {
			return nil, formatErr(blockNum, fmt.Sprintf("non-numeric index %q", lines[0]))
		}
		if index != blockNum {
			return nil, formatErr(blockNum, fmt.Sprintf("index %d out of sequence (want %d)", index, blockNum))
		}

		start, end, err := parseTimingLine(lines[1])
		if err != nil {
			return nil, formatErr(blockNum, err.Error())
		}

		segments = append(segments, Segment{
			Index: index,
			Start: start,
			End:   end,
			Text:  strings.Join(lines[2:], "\n"),
		})
	}

	if err := ValidateSequence(segments); err != nil {
		return nil, err
	}
	return segments, nil
}

func parseTimingLine(line string) (start, end time.Duration, err error) {
	parts := strings.Split(line, " --> ")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed timing line %q", line)
	}
	if start, err = ParseTimestamp(parts[0]); err != nil {
		return 0, 0, err
	}
	if end, err = ParseTimestamp(parts[1]); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

package srt

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// timestampRe matches the fixed-width SRT timestamp HH:MM:SS,mmm. Hours may
// widen past two digits for very long media.
var timestampRe = regexp.MustCompile(`^(\d{2,}):([0-5]\d):([0-5]\d),(\d{3})$`)

// FormatTimestamp renders a duration as zero-padded HH:MM:SS,mmm. Precision
// beyond the millisecond is truncated, never rounded.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	millis := d.Milliseconds()
	hours := millis / 3_600_000
	millis -= hours * 3_600_000
	minutes := millis / 60_000
	millis -= minutes * 60_000
	seconds := millis / 1_000
	millis -= seconds * 1_000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

// ParseTimestamp parses a strict HH:MM:SS,mmm timestamp.
func ParseTimestamp(value string) (time.Duration, error) {
	match := timestampRe.FindStringSubmatch(value)
	if match == nil {
		return 0, fmt.Errorf("malformed timestamp %q", value)
	}
	hours, _ := strconv.Atoi(match[1])
	minutes, _ := strconv.Atoi(match[2])
	seconds, _ := strconv.Atoi(match[3])
	millis, _ := strconv.Atoi(match[4])

	total := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond
	return total, nil
}

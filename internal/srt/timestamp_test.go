package srt

import (
	"testing"
	"time"
)

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"zero", 0, "00:00:00,000"},
		{"millis", 1200 * time.Millisecond, "00:00:01,200"},
		{"truncates sub-millisecond", 1200*time.Millisecond + 999*time.Microsecond, "00:00:01,200"},
		{"hour boundary", time.Hour + 2*time.Minute + 3*time.Second + 4*time.Millisecond, "01:02:03,004"},
		{"beyond two hour digits", 100*time.Hour + time.Second, "100:00:01,000"},
		{"negative clamps to zero", -time.Second, "00:00:00,000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatTimestamp(tc.d); got != tc.want {
				t.Fatalf("FormatTimestamp(%v) = %q, want %q", tc.d, got, tc.want)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp("01:02:03,004")
	if err != nil {
		t.Fatalf("ParseTimestamp: %v", err)
	}
	want := time.Hour + 2*time.Minute + 3*time.Second + 4*time.Millisecond
	if got != want {
		t.Fatalf("ParseTimestamp = %v, want %v", got, want)
	}
}

func TestParseTimestampRejectsMalformed(t *testing.T) {
	for _, value := range []string{
		"",
		"1:02:03,004",
		"01:62:03,004",
		"01:02:63,004",
		"01:02:03.004",
		"01:02:03,04",
		"01:02:03,0045",
		" 01:02:03,004",
	} {
		if _, err := ParseTimestamp(value); err == nil {
			t.Errorf("ParseTimestamp(%q) accepted malformed input", value)
		}
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	for _, d := range []time.Duration{
		0,
		500 * time.Millisecond,
		time.Minute + 30*time.Second,
		2*time.Hour + 59*time.Minute + 59*time.Second + 999*time.Millisecond,
	} {
		back, err := ParseTimestamp(FormatTimestamp(d))
		if err != nil {
			t.Fatalf("round trip %v: %v", d, err)
		}
		if back != d {
			t.Fatalf("round trip %v produced %v", d, back)
		}
	}
}

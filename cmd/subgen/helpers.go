package main

import "time"

// timeRound trims elapsed durations for display.
const timeRound = 100 * time.Millisecond

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "unknown"
	}
	return d.Round(time.Second).String()
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

// Package srt serializes timed caption cues to SubRip text and parses them
// back. Format and Parse are pure inverses over valid sequences; both enforce
// the cue invariants (contiguous indices, chronological non-overlapping
// timings, serializable text) and report violations as format errors with the
// offending block number.
package srt

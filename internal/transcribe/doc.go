// Package transcribe turns an audio asset into time-coded text. The Model
// interface isolates the speech-to-text backend behind a two-phase
// Initialize/Infer lifecycle; the Engine owns chunking, per-chunk retry,
// language resolution, and shaping raw fragments into valid cue sequences.
package transcribe

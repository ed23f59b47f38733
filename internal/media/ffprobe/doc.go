// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video/subtitle stream properties
//   - Format: container-level metadata (duration, size, bitrate)
//
// Primary entry point:
//   - Inspect: executes ffprobe through the extcmd boundary and returns a
//     parsed Result
//
// Helper methods on Result give convenient access to per-type stream lists,
// duration parsing, and bitrate extraction.
package ffprobe

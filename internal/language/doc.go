// Package language provides unified language code normalization and mapping.
//
// All language-related conversions (ISO 639-1, ISO 639-2, BCP-47 hints,
// display names) are consolidated here to avoid duplication across the
// transcription and muxing packages.
package language

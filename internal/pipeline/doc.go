// Package pipeline sequences audio extraction, transcription, subtitle
// formatting, and optional muxing into a per-run state machine. A run owns
// an isolated staging workspace and guarantees its removal on every exit;
// failures are terminal, stage-tagged, and recorded in history.
package pipeline

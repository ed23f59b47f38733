// Package config loads, normalizes, and validates subgen configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the pipeline and CLI need: staging/output directories, external tool names
// and timeouts, audio extraction settings, and transcription model selection.
//
// The pipeline core receives a validated *Config and never touches the
// environment or the filesystem for configuration itself; Load exists for
// the CLI collaborator.
package config

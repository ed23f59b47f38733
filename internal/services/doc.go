// Package services defines shared utilities consumed by the pipeline stages
// and external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and stage names for logging.
//   - Structured error markers plus the Wrap helper so every component
//     surfaces failures in the same taxonomy (input, external tool, model,
//     format, timeout, io).
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services

// Package logging builds slog loggers for the pipeline and provides the
// standardized attribute helpers and context plumbing used across stages.
//
// Construction goes through New or NewFromConfig. Stage code augments loggers
// with run and stage fields via WithContext so every record from one run can
// be correlated.
package logging

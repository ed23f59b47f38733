// Package preflight provides readiness checks for the filesystem paths and
// external binaries a transcription run depends on.
//
// These checks run in two contexts:
//   - The pipeline calls RunAll before starting a run. If any check fails,
//     the run is rejected up front instead of failing mid-transcription.
//   - The CLI "subgen deps" command uses the individual check functions to
//     display tool and path health.
package preflight

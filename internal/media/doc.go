// Package media defines the probed asset types the pipeline passes between
// stages: VideoAsset (immutable container inventory) and AudioAsset (the
// extracted intermediate a run owns and cleans up).
package media

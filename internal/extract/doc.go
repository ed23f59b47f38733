// Package extract shells out to ffmpeg to pull a mono, model-rate audio
// intermediate from a video container, and to slice bounded windows from it
// for chunked inference.
package extract

// Package deps verifies the external binaries subgen shells out to
// (ffmpeg, ffprobe, uvx) are resolvable before any work starts.
package deps

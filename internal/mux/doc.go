// Package mux embeds a generated subtitle stream into a video container
// using ffmpeg stream copy, writing through a temporary path so the final
// output only ever appears complete.
package mux

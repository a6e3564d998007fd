// Package renderer orchestrates frame rendering: it owns the tracer pool and
// the shared frame buffer, splits each frame into row blocks and gathers the
// per-tracer statistics.
package renderer

import "image"

type Renderer interface {
	// Render frame.
	Render() error

	// Get the rendered frame contents.
	Frame() *image.RGBA

	// Shutdown renderer and any attached tracer.
	Close()

	// Get render statistics.
	Stats() FrameStats
}

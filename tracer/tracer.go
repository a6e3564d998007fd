// Package tracer defines the contracts between the frame renderer and the
// block tracers plus the block scheduling strategies.
package tracer

import "time"

// The type of data attached to a tracer update.
type UpdateType uint8

const (
	// Attach a compiled scene. The payload is a *scene.Scene.
	SceneData UpdateType = iota

	// Update the viewpoint. The payload is a *scene.Camera.
	CameraData
)

// Tracer capability flags.
type Flag uint8

const (
	// The tracer runs in-process.
	Local Flag = 1 << iota
)

// A unit of work that is processed by a tracer: a contiguous block of frame
// rows.
type BlockRequest struct {
	// Block start row and height.
	BlockY uint32
	BlockH uint32

	// The maximum number of composited layers per traced ray.
	MaxBounces uint32

	// Number of sequential rendered frames from current camera position.
	FrameCount uint32

	// A channel to signal on block completion with the number of completed rows.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Tracer statistics.
type Stats struct {
	// The rendered block height.
	BlockH uint32

	// The time for rendering this block.
	RenderTime time.Duration
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Get tracer capability flags.
	Flags() Flag

	// Get the tracer's computation speed estimate compared to a baseline
	// (single core) implementation.
	Speed() uint32

	// Initialize the tracer and attach it to a frame buffer. The buffer
	// stores RGBA8 pixels and is shared between tracers; each tracer only
	// writes the rows assigned to it.
	Init(frameW, frameH uint32, frameBuffer []uint8) error

	// Shutdown and cleanup tracer.
	Close()

	// Enqueue a block request.
	Enqueue(BlockRequest)

	// Apply a scene or camera update before the next enqueued block.
	Update(UpdateType, interface{})

	// Retrieve last frame statistics.
	Stats() *Stats
}

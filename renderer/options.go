package renderer

import "github.com/lumen-render/lumen/types"

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// The maximum number of composited plane layers per traced ray.
	MaxBounces uint32

	// Color composited behind the light-field layers.
	Background types.Vec4
}

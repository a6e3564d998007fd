// Package scene defines the optimized light-field scene model produced by the
// compiler and consumed by the tracers: plane tables, camera records, the
// texture pool and the viewer camera.
package scene

import (
	"github.com/lumen-render/lumen/types"
)

// A camera index slot that carries no camera.
const UnusedCameraSlot = -1

// A planar quadrilateral holding one depth layer of the light field. Corner
// order is top-left, top-right, bottom-left, bottom-right; the normal points
// towards the captured viewer side.
type Plane struct {
	TopLeft     types.Vec3
	TopRight    types.Vec3
	BottomLeft  types.Vec3
	BottomRight types.Vec3

	Normal types.Vec3

	// depth of this layer along the capture direction, in meters
	Depth float32

	// the depth slice this plane was built from
	LayerIndex int32

	// [FirstRecord, LastRecord) into the scene camera record table
	FirstRecord int32
	LastRecord  int32
}

// Horizontal and vertical basis vectors of the plane, derived from its
// corners. Not normalized.
func (p *Plane) Basis() (types.Vec3, types.Vec3) {
	return p.TopRight.Sub(p.TopLeft), p.BottomLeft.Sub(p.TopLeft)
}

// A rectangular region in plane-local fractional coordinates.
type Rect struct {
	Left   float32
	Right  float32
	Top    float32
	Bottom float32
}

// True if the coordinate falls inside the rectangle. Boundary values count
// as inside.
func (r Rect) Contains(c types.Vec2) bool {
	return c[0] >= r.Left && c[0] <= r.Right && c[1] >= r.Top && c[1] <= r.Bottom
}

// Metadata for one captured camera image projected onto one plane: the image
// handle, the plane-local region the image covers and the camera's projected
// center used for proximity ranking.
type CameraRecord struct {
	ImageIndex int32

	// grid cell of the capturing camera
	GridX int32
	GridY int32

	Bounds Rect
	Center types.Vec2
}

// A precomputed camera selection for one plane: up to 4 record indices with
// an explicit populated count and the blend factor between them. Unused
// slots hold UnusedCameraSlot but are never scanned; Count is authoritative.
//
// Count 1 ignores Bary; Count 2 blends along Bary[0]; Count 4 blends
// bilinearly with Bary as the (horizontal, vertical) factors.
type Selector struct {
	Indices [4]int32
	Count   int32
	Bary    types.Vec2
}

// NewSelector builds a selector from the populated indices, writing the
// unused-slot sentinel into the remaining slots.
func NewSelector(indices []int32, bary types.Vec2) Selector {
	sel := Selector{
		Indices: [4]int32{UnusedCameraSlot, UnusedCameraSlot, UnusedCameraSlot, UnusedCameraSlot},
		Count:   int32(len(indices)),
		Bary:    bary,
	}
	copy(sel.Indices[:], indices)
	return sel
}

// An optimized scene: read-only plane/record/texture tables plus the viewer
// camera. The tables are immutable once compiled; tracers share them without
// synchronization.
type Scene struct {
	Planes   []Plane
	Records  []CameraRecord
	Textures []*Texture

	Camera *Camera

	// capture grid dimensions, needed to bake selectors
	HorizontalCameraCount int32
	VerticalCameraCount   int32

	// capture baseline in meters
	Baseline float32

	SceneName string
}

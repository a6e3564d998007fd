package lightfield

import (
	"github.com/lumen-render/lumen/scene"
	"github.com/lumen-render/lumen/types"
)

// Margin used to pull a projected viewer coordinate just inside the plane
// when it falls beyond an edge.
const edgeMargin float32 = 0.0001

// A camera record paired with its blend weight for one plane hit.
type WeightedCamera struct {
	Record *scene.CameraRecord
	Weight float32
}

// A SelectorStrategy answers which captured cameras approximate the view of
// a plane from the current viewpoint, and how to blend them. Both strategies
// derive the same selection; they differ in when the work happens.
type SelectorStrategy interface {
	// SetViewpoint re-derives per-plane selection state for a new eye position.
	SetViewpoint(eye types.Vec3)

	// Select appends up to 4 weighted camera records for the given plane to
	// out and returns the extended slice.
	Select(planeIndex int32, out []WeightedCamera) []WeightedCamera
}

// The tableSelector bakes one selector per plane whenever the viewpoint
// changes, making every per-hit lookup O(1). This is the primary strategy.
type tableSelector struct {
	sc    *scene.Scene
	table []scene.Selector
}

func NewTableSelector(sc *scene.Scene) SelectorStrategy {
	return &tableSelector{
		sc:    sc,
		table: make([]scene.Selector, len(sc.Planes)),
	}
}

func (ts *tableSelector) SetViewpoint(eye types.Vec3) {
	for index := range ts.sc.Planes {
		ts.table[index] = bakeSelector(ts.sc, &ts.sc.Planes[index], eye)
	}
}

func (ts *tableSelector) Select(planeIndex int32, out []WeightedCamera) []WeightedCamera {
	return expandSelector(ts.sc, ts.table[planeIndex], out)
}

// The searchSelector runs the full selection per hit. It trades the baking
// pass for per-hit cost and only earns its keep when the camera set changes
// faster than the viewpoint.
type searchSelector struct {
	sc  *scene.Scene
	eye types.Vec3
}

func NewSearchSelector(sc *scene.Scene) SelectorStrategy {
	return &searchSelector{sc: sc}
}

func (ss *searchSelector) SetViewpoint(eye types.Vec3) {
	ss.eye = eye
}

func (ss *searchSelector) Select(planeIndex int32, out []WeightedCamera) []WeightedCamera {
	sel := bakeSelector(ss.sc, &ss.sc.Planes[planeIndex], ss.eye)
	return expandSelector(ss.sc, sel, out)
}

// Turn a packed selector into weighted camera records. A full 4-camera
// selection blends bilinearly and its weights sum to 1.
func expandSelector(sc *scene.Scene, sel scene.Selector, out []WeightedCamera) []WeightedCamera {
	switch sel.Count {
	case 1:
		out = append(out, WeightedCamera{Record: &sc.Records[sel.Indices[0]], Weight: 1})
	case 2:
		t := sel.Bary[0]
		out = append(out,
			WeightedCamera{Record: &sc.Records[sel.Indices[0]], Weight: 1 - t},
			WeightedCamera{Record: &sc.Records[sel.Indices[1]], Weight: t},
		)
	case 4:
		tx, ty := sel.Bary[0], sel.Bary[1]
		// slot order is TL, TR, BL, BR
		out = append(out,
			WeightedCamera{Record: &sc.Records[sel.Indices[0]], Weight: (1 - tx) * (1 - ty)},
			WeightedCamera{Record: &sc.Records[sel.Indices[1]], Weight: tx * (1 - ty)},
			WeightedCamera{Record: &sc.Records[sel.Indices[2]], Weight: (1 - tx) * ty},
			WeightedCamera{Record: &sc.Records[sel.Indices[3]], Weight: tx * ty},
		)
	}
	return out
}

// Bake the camera selection for one plane as seen from eye.
//
// The viewer is projected orthogonally onto the plane; the projected
// plane-local coordinate partitions space into 9 regions (above/inside/below
// x left/inside/right, with the plane as the center cell). Corner regions
// pick the single nearest camera, edge regions blend two, and the center
// region blends the four cameras surrounding the viewer.
func bakeSelector(sc *scene.Scene, plane *scene.Plane, eye types.Vec3) scene.Selector {
	point, ok := ProjectViewer(plane, eye)
	if !ok {
		return scene.NewSelector(nil, types.Vec2{})
	}
	pov := Parameterize(plane, point)

	switch {
	case pov[1] < 0:
		switch {
		case pov[0] < 0:
			// above, left side
			return selectorOfOne(findClosestBottomRight(sc, plane, types.XY(edgeMargin, edgeMargin)))
		case pov[0] > 1:
			// above, right side
			return selectorOfOne(findClosestBottomLeft(sc, plane, types.XY(1-edgeMargin, edgeMargin)))
		default:
			// above center
			clamped := types.XY(pov[0], edgeMargin)
			return selectorOfTwoX(
				findClosestBottomLeft(sc, plane, clamped),
				findClosestBottomRight(sc, plane, clamped),
				clamped,
			)
		}
	case pov[1] > 1:
		switch {
		case pov[0] < 0:
			// below, left side
			return selectorOfOne(findClosestTopRight(sc, plane, types.XY(edgeMargin, 1-edgeMargin)))
		case pov[0] > 1:
			// below, right side
			return selectorOfOne(findClosestTopLeft(sc, plane, types.XY(1-edgeMargin, 1-edgeMargin)))
		default:
			// below center
			clamped := types.XY(pov[0], 1-edgeMargin)
			return selectorOfTwoX(
				findClosestTopLeft(sc, plane, clamped),
				findClosestTopRight(sc, plane, clamped),
				clamped,
			)
		}
	default:
		switch {
		case pov[0] < 0:
			// left side
			clamped := types.XY(edgeMargin, pov[1])
			return selectorOfTwoY(
				findClosestTopRight(sc, plane, clamped),
				findClosestBottomRight(sc, plane, clamped),
				clamped,
			)
		case pov[0] > 1:
			// right side
			clamped := types.XY(1-edgeMargin, pov[1])
			return selectorOfTwoY(
				findClosestTopLeft(sc, plane, clamped),
				findClosestBottomLeft(sc, plane, clamped),
				clamped,
			)
		default:
			// the viewer projects inside the plane
			return selectorOfFour(
				findClosestTopLeft(sc, plane, pov),
				findClosestTopRight(sc, plane, pov),
				findClosestBottomLeft(sc, plane, pov),
				findClosestBottomRight(sc, plane, pov),
				pov,
			)
		}
	}
}

// A camera candidate found by a quadrant search.
type candidate struct {
	index  int32
	center types.Vec2
	ok     bool
}

func findClosestTopLeft(sc *scene.Scene, plane *scene.Plane, pov types.Vec2) candidate {
	return findClosest(sc, plane, pov, func(dx, dy float32) bool { return dx <= 0 && dy <= 0 })
}

func findClosestTopRight(sc *scene.Scene, plane *scene.Plane, pov types.Vec2) candidate {
	return findClosest(sc, plane, pov, func(dx, dy float32) bool { return dx >= 0 && dy <= 0 })
}

func findClosestBottomLeft(sc *scene.Scene, plane *scene.Plane, pov types.Vec2) candidate {
	return findClosest(sc, plane, pov, func(dx, dy float32) bool { return dx <= 0 && dy >= 0 })
}

func findClosestBottomRight(sc *scene.Scene, plane *scene.Plane, pov types.Vec2) candidate {
	return findClosest(sc, plane, pov, func(dx, dy float32) bool { return dx >= 0 && dy >= 0 })
}

// Scan the plane's record range for the camera whose projected center is
// closest to pov among those whose offset satisfies the quadrant predicate.
func findClosest(sc *scene.Scene, plane *scene.Plane, pov types.Vec2, fits func(dx, dy float32) bool) candidate {
	best := candidate{index: scene.UnusedCameraSlot}
	minDistance := float32(0)

	for index := plane.FirstRecord; index < plane.LastRecord; index++ {
		record := &sc.Records[index]
		dx := record.Center[0] - pov[0]
		dy := record.Center[1] - pov[1]
		if !fits(dx, dy) {
			continue
		}

		distance := types.XY(dx, dy).Len()
		if !best.ok || distance < minDistance {
			best = candidate{index: index, center: record.Center, ok: true}
			minDistance = distance
		}
	}

	return best
}

func selectorOfOne(first candidate) scene.Selector {
	if !first.ok {
		return scene.NewSelector(nil, types.Vec2{})
	}
	return scene.NewSelector([]int32{first.index}, types.Vec2{})
}

// Blend two cameras side by side. The factor is the viewer's fractional
// position between the two centers along the horizontal axis.
func selectorOfTwoX(left, right candidate, pov types.Vec2) scene.Selector {
	switch {
	case left.ok && right.ok && left.index != right.index:
		t := blendFactor(left.center[0], right.center[0], pov[0])
		return scene.NewSelector([]int32{left.index, right.index}, types.XY(t, 0))
	case left.ok:
		return selectorOfOne(left)
	default:
		return selectorOfOne(right)
	}
}

// Blend two cameras stacked vertically.
func selectorOfTwoY(top, bottom candidate, pov types.Vec2) scene.Selector {
	switch {
	case top.ok && bottom.ok && top.index != bottom.index:
		t := blendFactor(top.center[1], bottom.center[1], pov[1])
		return scene.NewSelector([]int32{top.index, bottom.index}, types.XY(t, 0))
	case top.ok:
		return selectorOfOne(top)
	default:
		return selectorOfOne(bottom)
	}
}

// Blend the four cameras surrounding the viewer bilinearly. When only a
// subset exists the selection degrades to the matching pair, then to the
// single closest camera.
func selectorOfFour(topLeft, topRight, bottomLeft, bottomRight candidate, pov types.Vec2) scene.Selector {
	if topLeft.ok && topRight.ok && bottomLeft.ok && bottomRight.ok &&
		topLeft.index != topRight.index && topLeft.index != bottomLeft.index {
		tx := blendFactor(topLeft.center[0], topRight.center[0], pov[0])
		ty := blendFactor(topLeft.center[1], bottomLeft.center[1], pov[1])
		return scene.NewSelector(
			[]int32{topLeft.index, topRight.index, bottomLeft.index, bottomRight.index},
			types.XY(tx, ty),
		)
	}

	// horizontal pairs
	if topLeft.ok && topRight.ok && topLeft.index != topRight.index {
		return selectorOfTwoX(topLeft, topRight, pov)
	}
	if bottomLeft.ok && bottomRight.ok && bottomLeft.index != bottomRight.index {
		return selectorOfTwoX(bottomLeft, bottomRight, pov)
	}

	// vertical pairs
	if topLeft.ok && bottomLeft.ok && topLeft.index != bottomLeft.index {
		return selectorOfTwoY(topLeft, bottomLeft, pov)
	}
	if topRight.ok && bottomRight.ok && topRight.index != bottomRight.index {
		return selectorOfTwoY(topRight, bottomRight, pov)
	}

	// whatever single candidate remains
	for _, cand := range []candidate{topLeft, topRight, bottomLeft, bottomRight} {
		if cand.ok {
			return selectorOfOne(cand)
		}
	}
	return scene.NewSelector(nil, types.Vec2{})
}

// Fractional position of value between lo and hi, clamped to [0,1].
func blendFactor(lo, hi, value float32) float32 {
	if hi == lo {
		return 0
	}
	t := (value - lo) / (hi - lo)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

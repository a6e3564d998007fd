// Package lightfield implements the light-field reconstruction core: plane
// geometry queries, camera selection, image sampling and the multi-layer
// compositing loop, plus a pure-Go tracer driving them per pixel.
package lightfield

import (
	"github.com/lumen-render/lumen/scene"
	"github.com/lumen-render/lumen/types"
)

const (
	// Signed hit distance reported when a ray hits nothing.
	MissDistance float32 = -1.0

	intersectEpsilon float32 = 1e-7
)

// A ray hit: the signed distance along the ray (negative = miss), the plane
// that was hit and the hit point.
type Hit struct {
	Distance   float32
	PlaneIndex int32
	Point      types.Vec3
}

// True if the hit carries no geometry.
func (h Hit) Miss() bool {
	return h.Distance < 0
}

type triangle struct {
	v0, v1, v2 types.Vec3

	// direct triangle -> plane mapping; both triangles of a quad carry the
	// same index so no parity arithmetic is needed to recover it
	planeIndex int32
}

// Geometry answers closest-hit queries against the scene plane table. Each
// quad is triangulated into two triangles sharing its diagonal.
type Geometry struct {
	planes []scene.Plane
	tris   []triangle
}

func NewGeometry(planes []scene.Plane) *Geometry {
	geo := &Geometry{
		planes: planes,
		tris:   make([]triangle, 0, len(planes)*2),
	}

	for index, plane := range planes {
		geo.tris = append(geo.tris,
			triangle{v0: plane.TopLeft, v1: plane.TopRight, v2: plane.BottomLeft, planeIndex: int32(index)},
			triangle{v0: plane.TopRight, v1: plane.BottomRight, v2: plane.BottomLeft, planeIndex: int32(index)},
		)
	}

	return geo
}

// The plane a triangle belongs to.
func (geo *Geometry) Plane(index int32) *scene.Plane {
	return &geo.planes[index]
}

func (geo *Geometry) PlaneCount() int {
	return len(geo.planes)
}

// Find the closest plane hit by the ray within (tmin, tmax). A miss is
// reported with the negative distance sentinel.
func (geo *Geometry) ClosestHit(origin, direction types.Vec3, tmin, tmax float32) Hit {
	closest := Hit{Distance: MissDistance, PlaneIndex: -1}

	for _, tri := range geo.tris {
		dist, ok := intersectTriangle(origin, direction, tri)
		if !ok || dist <= tmin || dist >= tmax {
			continue
		}
		if closest.Miss() || dist < closest.Distance {
			closest.Distance = dist
			closest.PlaneIndex = tri.planeIndex
		}
	}

	if !closest.Miss() {
		closest.Point = origin.Add(direction.Mul(closest.Distance))
	}
	return closest
}

// Moeller-Trumbore ray/triangle intersection.
func intersectTriangle(origin, direction types.Vec3, tri triangle) (float32, bool) {
	edge1 := tri.v1.Sub(tri.v0)
	edge2 := tri.v2.Sub(tri.v0)

	pvec := direction.Cross(edge2)
	det := edge1.Dot(pvec)
	if det > -intersectEpsilon && det < intersectEpsilon {
		// ray parallel to the triangle
		return 0, false
	}
	invDet := 1.0 / det

	tvec := origin.Sub(tri.v0)
	u := tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return 0, false
	}

	qvec := tvec.Cross(edge1)
	v := direction.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return 0, false
	}

	return edge2.Dot(qvec) * invDet, true
}

// Convert a 3D point on (or near) the plane into plane-local fractional
// coordinates: 0 at the top-left corner, 1 at the opposite edges. The result
// is deliberately not clamped; values outside [0,1] locate points beyond the
// plane's footprint.
//
// The x component tracks the plane's vertical axis and y the horizontal one.
// The camera record bounds, the selector centers and the sampler's texture
// remap all share this transposed convention; changing it in one place
// breaks the others.
func Parameterize(plane *scene.Plane, point types.Vec3) types.Vec2 {
	horizontal, vertical := plane.Basis()

	x := distanceToLine(plane.TopLeft, vertical, point) / horizontal.Len()
	y := distanceToLine(plane.TopLeft, horizontal, point) / vertical.Len()

	return types.XY(x, y)
}

// Signed distance of target from the line through reference along axis.
func distanceToLine(reference, axis, target types.Vec3) float32 {
	return axis.Dot(target.Sub(reference)) / axis.Len()
}

// Project the viewer position orthogonally onto the plane by intersecting
// the line through origin along -normal with the plane. Returns false when
// the viewer already lies in the plane or the projection is degenerate.
func ProjectViewer(plane *scene.Plane, origin types.Vec3) (types.Vec3, bool) {
	direction := plane.Normal.Mul(-1)

	numerator := plane.TopLeft.Sub(origin).Dot(plane.Normal)
	denominator := plane.Normal.Dot(direction)

	if denominator == 0 || numerator == 0 {
		return types.Vec3{}, false
	}

	distance := numerator / denominator
	return origin.Add(direction.Mul(distance)), true
}

// Reconstruct the 3D point addressed by a plane-local coordinate via
// bilinear interpolation of the plane corners. Inverts Parameterize, so the
// horizontal interpolation runs on the y component.
func PointAt(plane *scene.Plane, coord types.Vec2) types.Vec3 {
	top := plane.TopLeft.Lerp(plane.TopRight, coord[1])
	bottom := plane.BottomLeft.Lerp(plane.BottomRight, coord[1])
	return top.Lerp(bottom, coord[0])
}

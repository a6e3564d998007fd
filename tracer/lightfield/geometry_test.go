package lightfield

import (
	"math"
	"testing"

	"github.com/lumen-render/lumen/scene"
	"github.com/lumen-render/lumen/types"
)

// A unit plane at the given depth facing the +z viewer side.
func stackedPlane(z float32) scene.Plane {
	return scene.Plane{
		TopLeft:     types.XYZ(0, 1, z),
		TopRight:    types.XYZ(1, 1, z),
		BottomLeft:  types.XYZ(0, 0, z),
		BottomRight: types.XYZ(1, 0, z),
		Normal:      types.XYZ(0, 0, 1),
	}
}

// A plane lying in the z=0 plane with its corners on the unit square.
func flatPlane() scene.Plane {
	return scene.Plane{
		TopLeft:     types.XYZ(0, 0, 0),
		TopRight:    types.XYZ(1, 0, 0),
		BottomLeft:  types.XYZ(0, 1, 0),
		BottomRight: types.XYZ(1, 1, 0),
		Normal:      types.XYZ(0, 0, -1),
	}
}

func TestParameterize(t *testing.T) {
	plane := flatPlane()

	type spec struct {
		point types.Vec3
		exp   types.Vec2
	}
	specs := []spec{
		{types.XYZ(0.5, 0.5, 0), types.XY(0.5, 0.5)},
		{types.XYZ(0, 0, 0), types.XY(0, 0)},
		{types.XYZ(1, 1, 0), types.XY(1, 1)},
		// coordinates outside the footprint stay unclamped
		{types.XYZ(-0.5, 1.5, 0), types.XY(1.5, -0.5)},
		{types.XYZ(2, 0.25, 0), types.XY(0.25, 2)},
	}

	for index, s := range specs {
		got := Parameterize(&plane, s.point)
		if got.Sub(s.exp).Len() > 1e-5 {
			t.Fatalf("[spec %d] expected coordinate %v; got %v", index, s.exp, got)
		}
	}
}

func TestParameterizeRoundTrip(t *testing.T) {
	tilted := scene.Plane{
		TopLeft:     types.XYZ(0, 0, 0),
		TopRight:    types.XYZ(1, 0, 1),
		BottomLeft:  types.XYZ(-1, 0, 1),
		BottomRight: types.XYZ(0, 0, 2),
		Normal:      types.XYZ(0, -1, 0),
	}

	planes := []scene.Plane{flatPlane(), stackedPlane(-2), tilted}
	coords := []types.Vec2{
		types.XY(0.5, 0.5),
		types.XY(0.25, 0.75),
		types.XY(0.1, 0.9),
		types.XY(0.3, 0.6),
	}

	for planeIndex, plane := range planes {
		for coordIndex, coord := range coords {
			point := PointAt(&plane, coord)
			got := Parameterize(&plane, point)

			if got[0] < 0 || got[0] > 1 || got[1] < 0 || got[1] > 1 {
				t.Fatalf("[plane %d coord %d] expected an interior coordinate; got %v", planeIndex, coordIndex, got)
			}
			if got.Sub(coord).Len() > 1e-5 {
				t.Fatalf("[plane %d coord %d] expected coordinate %v; got %v", planeIndex, coordIndex, coord, got)
			}
			if back := PointAt(&plane, got); back.Sub(point).Len() > 1e-5 {
				t.Fatalf("[plane %d coord %d] expected point %v; got %v", planeIndex, coordIndex, point, back)
			}
		}
	}
}

func TestClosestHit(t *testing.T) {
	geo := NewGeometry([]scene.Plane{stackedPlane(-1), stackedPlane(-2)})

	origin := types.XYZ(0.5, 0.5, 0)
	direction := types.XYZ(0, 0, -1)

	hit := geo.ClosestHit(origin, direction, 0, math.MaxFloat32)
	if hit.Miss() || hit.PlaneIndex != 0 {
		t.Fatalf("expected a hit on plane 0; got %+v", hit)
	}
	if abs32(hit.Distance-1) > 1e-5 {
		t.Fatalf("expected hit distance 1; got %f", hit.Distance)
	}
	if hit.Point.Sub(types.XYZ(0.5, 0.5, -1)).Len() > 1e-5 {
		t.Fatalf("unexpected hit point: %v", hit.Point)
	}

	// advancing past the first layer exposes the second
	next := geo.ClosestHit(origin.Add(direction.Mul(hit.Distance+1e-4)), direction, 0, math.MaxFloat32)
	if next.Miss() || next.PlaneIndex != 1 {
		t.Fatalf("expected a hit on plane 1; got %+v", next)
	}
}

func TestClosestHitCoversBothTriangles(t *testing.T) {
	geo := NewGeometry([]scene.Plane{stackedPlane(-1)})
	direction := types.XYZ(0, 0, -1)

	// one point per triangle of the quad
	for _, origin := range []types.Vec3{types.XYZ(0.1, 0.9, 0), types.XYZ(0.9, 0.1, 0)} {
		hit := geo.ClosestHit(origin, direction, 0, math.MaxFloat32)
		if hit.Miss() || hit.PlaneIndex != 0 {
			t.Fatalf("expected origin %v to hit plane 0; got %+v", origin, hit)
		}
	}
}

func TestClosestHitMiss(t *testing.T) {
	geo := NewGeometry([]scene.Plane{stackedPlane(-1)})

	type spec struct {
		origin    types.Vec3
		direction types.Vec3
	}
	specs := []spec{
		// facing away
		{types.XYZ(0.5, 0.5, 0), types.XYZ(0, 0, 1)},
		// beyond the plane footprint
		{types.XYZ(2, 2, 0), types.XYZ(0, 0, -1)},
		// parallel to the plane
		{types.XYZ(0.5, 0.5, 0), types.XYZ(1, 0, 0)},
	}

	for index, s := range specs {
		hit := geo.ClosestHit(s.origin, s.direction, 0, math.MaxFloat32)
		if !hit.Miss() {
			t.Fatalf("[spec %d] expected a miss; got %+v", index, hit)
		}
		if hit.Distance >= 0 {
			t.Fatalf("[spec %d] expected a negative distance sentinel; got %f", index, hit.Distance)
		}
	}
}

func TestProjectViewer(t *testing.T) {
	plane := stackedPlane(-1)

	point, ok := ProjectViewer(&plane, types.XYZ(0.3, 0.4, 5))
	if !ok {
		t.Fatal("expected the projection to succeed")
	}
	if point.Sub(types.XYZ(0.3, 0.4, -1)).Len() > 1e-5 {
		t.Fatalf("unexpected projected point: %v", point)
	}

	// a viewer already in the plane cannot be projected
	if _, ok = ProjectViewer(&plane, types.XYZ(0.3, 0.4, -1)); ok {
		t.Fatal("expected the in-plane projection to fail")
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

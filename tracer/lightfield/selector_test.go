package lightfield

import (
	"testing"

	"github.com/lumen-render/lumen/scene"
	"github.com/lumen-render/lumen/types"
)

// A single-plane scene whose camera record centers sit at the given
// plane-local positions. Bounds cover the whole plane so only the selection
// logic is exercised.
func selectorScene(centers []types.Vec2) *scene.Scene {
	sc := &scene.Scene{
		Planes: []scene.Plane{stackedPlane(-1)},
	}

	for index, center := range centers {
		sc.Records = append(sc.Records, scene.CameraRecord{
			ImageIndex: int32(index),
			Bounds:     scene.Rect{Left: 0, Right: 1, Top: 0, Bottom: 1},
			Center:     center,
		})
	}
	sc.Planes[0].FirstRecord = 0
	sc.Planes[0].LastRecord = int32(len(centers))

	return sc
}

// The 3x3 grid of camera centers used by most selector tests.
func gridCenters() []types.Vec2 {
	centers := make([]types.Vec2, 0, 9)
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			centers = append(centers, types.XY(0.2+0.3*float32(x), 0.2+0.3*float32(y)))
		}
	}
	return centers
}

// Eye position whose orthogonal projection onto the test plane yields the
// given plane-local coordinate.
func eyeFor(pov types.Vec2) types.Vec3 {
	return types.XYZ(pov[1], 1-pov[0], 0)
}

func selectFor(t *testing.T, sc *scene.Scene, pov types.Vec2) []WeightedCamera {
	t.Helper()
	sel := NewTableSelector(sc)
	sel.SetViewpoint(eyeFor(pov))
	return sel.Select(0, nil)
}

func centerOf(cam WeightedCamera) types.Vec2 {
	return cam.Record.Center
}

func TestSelectorCenterRegion(t *testing.T) {
	cameras := selectFor(t, selectorScene(gridCenters()), types.XY(0.35, 0.35))

	if len(cameras) != 4 {
		t.Fatalf("expected 4 cameras; got %d", len(cameras))
	}

	type spec struct {
		expCenter types.Vec2
		expWeight float32
	}
	specs := []spec{
		{types.XY(0.2, 0.2), 0.25},
		{types.XY(0.5, 0.2), 0.25},
		{types.XY(0.2, 0.5), 0.25},
		{types.XY(0.5, 0.5), 0.25},
	}

	for index, s := range specs {
		if centerOf(cameras[index]) != s.expCenter {
			t.Fatalf("[spec %d] expected camera center %v; got %v", index, s.expCenter, centerOf(cameras[index]))
		}
		if abs32(cameras[index].Weight-s.expWeight) > 1e-5 {
			t.Fatalf("[spec %d] expected weight %f; got %f", index, s.expWeight, cameras[index].Weight)
		}
	}
}

func TestSelectorWeightConservation(t *testing.T) {
	sc := selectorScene(gridCenters())

	// full 4-camera selections must have weights summing to 1 for any
	// viewer position between the cameras
	povs := []types.Vec2{
		{0.35, 0.35},
		{0.26, 0.44},
		{0.21, 0.79},
		{0.41, 0.59},
		{0.62, 0.31},
	}

	for index, pov := range povs {
		cameras := selectFor(t, sc, pov)
		if len(cameras) != 4 {
			t.Fatalf("[spec %d] expected 4 cameras; got %d", index, len(cameras))
		}

		var sum float32
		for _, camera := range cameras {
			sum += camera.Weight
		}
		if abs32(sum-1) > 1e-5 {
			t.Fatalf("[spec %d] expected weights to sum to 1; got %f", index, sum)
		}
	}
}

func TestSelectorCornerRegions(t *testing.T) {
	sc := selectorScene(gridCenters())

	type spec struct {
		pov       types.Vec2
		expCenter types.Vec2
	}
	specs := []spec{
		{types.XY(-0.5, -0.5), types.XY(0.2, 0.2)},
		{types.XY(-0.5, 1.5), types.XY(0.2, 0.8)},
		{types.XY(1.5, -0.5), types.XY(0.8, 0.2)},
		{types.XY(1.5, 1.5), types.XY(0.8, 0.8)},
	}

	for index, s := range specs {
		cameras := selectFor(t, sc, s.pov)
		if len(cameras) != 1 {
			t.Fatalf("[spec %d] expected 1 camera; got %d", index, len(cameras))
		}
		if centerOf(cameras[0]) != s.expCenter {
			t.Fatalf("[spec %d] expected camera center %v; got %v", index, s.expCenter, centerOf(cameras[0]))
		}
		if cameras[0].Weight != 1 {
			t.Fatalf("[spec %d] expected weight 1; got %f", index, cameras[0].Weight)
		}
	}
}

func TestSelectorEdgeRegions(t *testing.T) {
	sc := selectorScene(gridCenters())

	// above center: two cameras from the nearest row, lerped horizontally
	cameras := selectFor(t, sc, types.XY(0.35, -0.5))
	if len(cameras) != 2 {
		t.Fatalf("expected 2 cameras; got %d", len(cameras))
	}
	if centerOf(cameras[0]) != types.XY(0.2, 0.2) || centerOf(cameras[1]) != types.XY(0.5, 0.2) {
		t.Fatalf("unexpected camera pair: %v, %v", centerOf(cameras[0]), centerOf(cameras[1]))
	}
	if abs32(cameras[0].Weight-0.5) > 1e-3 || abs32(cameras[1].Weight-0.5) > 1e-3 {
		t.Fatalf("expected a 0.5/0.5 blend; got %f/%f", cameras[0].Weight, cameras[1].Weight)
	}

	// left of center: two cameras from the nearest column, lerped vertically
	cameras = selectFor(t, sc, types.XY(-0.5, 0.35))
	if len(cameras) != 2 {
		t.Fatalf("expected 2 cameras; got %d", len(cameras))
	}
	if centerOf(cameras[0]) != types.XY(0.2, 0.2) || centerOf(cameras[1]) != types.XY(0.2, 0.5) {
		t.Fatalf("unexpected camera pair: %v, %v", centerOf(cameras[0]), centerOf(cameras[1]))
	}
}

func TestSelectorPartialConstellations(t *testing.T) {
	// a single camera column degrades the center region to a vertical pair
	sc := selectorScene([]types.Vec2{types.XY(0.5, 0.2), types.XY(0.5, 0.8)})
	cameras := selectFor(t, sc, types.XY(0.5, 0.5))
	if len(cameras) != 2 {
		t.Fatalf("expected 2 cameras; got %d", len(cameras))
	}
	if abs32(cameras[0].Weight-0.5) > 1e-3 || abs32(cameras[1].Weight-0.5) > 1e-3 {
		t.Fatalf("expected a 0.5/0.5 blend; got %f/%f", cameras[0].Weight, cameras[1].Weight)
	}

	// a single camera serves every region alone
	sc = selectorScene([]types.Vec2{types.XY(0.5, 0.5)})
	cameras = selectFor(t, sc, types.XY(0.3, 0.3))
	if len(cameras) != 1 || cameras[0].Weight != 1 {
		t.Fatalf("expected a single camera with weight 1; got %+v", cameras)
	}

	// no cameras at all contribute nothing
	sc = selectorScene(nil)
	if cameras = selectFor(t, sc, types.XY(0.5, 0.5)); len(cameras) != 0 {
		t.Fatalf("expected an empty selection; got %+v", cameras)
	}
}

func TestSelectorViewerInPlane(t *testing.T) {
	sc := selectorScene(gridCenters())

	sel := NewTableSelector(sc)
	sel.SetViewpoint(types.XYZ(0.5, 0.5, -1))

	if cameras := sel.Select(0, nil); len(cameras) != 0 {
		t.Fatalf("expected an empty selection for an in-plane viewer; got %+v", cameras)
	}
}

func TestSearchSelectorMatchesTable(t *testing.T) {
	sc := selectorScene(gridCenters())

	table := NewTableSelector(sc)
	search := NewSearchSelector(sc)

	povs := []types.Vec2{
		{0.35, 0.35},
		{-0.5, -0.5},
		{0.35, -0.5},
		{1.5, 0.62},
		{0.9, 0.1},
	}

	for index, pov := range povs {
		eye := eyeFor(pov)
		table.SetViewpoint(eye)
		search.SetViewpoint(eye)

		fromTable := table.Select(0, nil)
		fromSearch := search.Select(0, nil)

		if len(fromTable) != len(fromSearch) {
			t.Fatalf("[spec %d] strategies disagree on camera count: %d vs %d", index, len(fromTable), len(fromSearch))
		}
		for i := range fromTable {
			if fromTable[i].Record != fromSearch[i].Record || abs32(fromTable[i].Weight-fromSearch[i].Weight) > 1e-6 {
				t.Fatalf("[spec %d] strategies disagree on camera %d", index, i)
			}
		}
	}
}

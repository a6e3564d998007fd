package capture

import (
	"testing"

	"github.com/lumen-render/lumen/types"
)

// Grid parameters where the aperture matches the sensor extent so that the
// corner rays run parallel to the main direction.
func parallelParams() *Params {
	return &Params{
		Intrinsics: Intrinsics{
			FocalLengthMM: 100,
			SensorSizeMM:  50,
			FStop:         0.05,
		},
		Extrinsics: Extrinsics{
			HorizontalCameraCount: 3,
			VerticalCameraCount:   3,
			BaselineMM:            1000,
		},
	}
}

func TestCreateFrustumsGridLayout(t *testing.T) {
	params := parallelParams()
	frustums := CreateFrustums(
		types.XYZ(0, 0, 0),
		types.XYZ(0, 0, -1),
		types.XYZ(0, 1, 0),
		types.XYZ(1, 0, 0),
		params,
	)

	if len(frustums) != 9 {
		t.Fatalf("expected 9 frustums; got %d", len(frustums))
	}

	// cameras are laid out column by column
	if x, y := frustums[0].Position(); x != 0 || y != 0 {
		t.Fatalf("expected frustum 0 at (0, 0); got (%d, %d)", x, y)
	}
	if x, y := frustums[5].Position(); x != 1 || y != 2 {
		t.Fatalf("expected frustum 5 at (1, 2); got (%d, %d)", x, y)
	}
}

func TestFrustumCornersAtDepth(t *testing.T) {
	params := parallelParams()
	frustums := CreateFrustums(
		types.XYZ(0, 0, 0),
		types.XYZ(0, 0, -1),
		types.XYZ(0, 1, 0),
		types.XYZ(1, 0, 0),
		params,
	)

	// the center camera sits at the grid center
	center := frustums[4]
	if x, y := center.Position(); x != 1 || y != 1 {
		t.Fatalf("expected the center frustum at (1, 1); got (%d, %d)", x, y)
	}

	tl, bl, tr, br := center.CornersAtDepth(2)
	type spec struct {
		got types.Vec3
		exp types.Vec3
	}
	specs := []spec{
		{tl, types.XYZ(-0.05, 0.05, -2)},
		{bl, types.XYZ(-0.05, -0.05, -2)},
		{tr, types.XYZ(0.05, 0.05, -2)},
		{br, types.XYZ(0.05, -0.05, -2)},
	}
	for index, s := range specs {
		if s.got.Sub(s.exp).Len() > 1e-5 {
			t.Fatalf("[spec %d] expected corner %v; got %v", index, s.exp, s.got)
		}
	}

	width, height := center.ExtentAtDepth(2)
	if width-0.1 > 1e-5 || height-0.1 > 1e-5 {
		t.Fatalf("expected a 0.1x0.1 extent; got %fx%f", width, height)
	}
}

package capture

import (
	"math"
	"strings"
	"testing"

	"github.com/lumen-render/lumen/asset"
	"github.com/lumen-render/lumen/types"
)

const validParams = `
# capture metadata
[meta]
scene = antinous
category = training
version = v2
disp_min = -2.2
disp_max = 2.8
depth_map_scale = 1.0

[intrinsics]
image_resolution_x_px = 512
image_resolution_y_px = 512
focal_length_mm = 100.0
sensor_size_mm = 35.0
fstop = 0.1

[extrinsics]
num_cams_x = 9
num_cams_y = 9
baseline_mm = 53.0
focus_distance_m = 8.0
center_cam_x_m = 0.5
center_cam_y_m = -1.0
center_cam_z_m = 2.0
center_cam_rx_rad = 0.0
center_cam_ry_rad = 0.0
center_cam_rz_rad = 0.0
offset = 0.0
`

func mustParse(t *testing.T, payload string) *Params {
	t.Helper()
	params, err := LoadParams(asset.NewResourceFromStream("params.cfg", strings.NewReader(payload)))
	if err != nil {
		t.Fatal(err)
	}
	return params
}

func TestLoadParams(t *testing.T) {
	params := mustParse(t, validParams)

	if params.Meta.Scene != "antinous" {
		t.Fatalf("expected scene 'antinous'; got %q", params.Meta.Scene)
	}
	if params.Intrinsics.ImageWidth != 512 || params.Intrinsics.ImageHeight != 512 {
		t.Fatalf("unexpected image resolution: %dx%d", params.Intrinsics.ImageWidth, params.Intrinsics.ImageHeight)
	}
	if got := params.Intrinsics.FocalLength(); got != 0.1 {
		t.Fatalf("expected focal length 0.1m; got %f", got)
	}
	if got := params.Extrinsics.Baseline(); got != 0.053 {
		t.Fatalf("expected baseline 0.053m; got %f", got)
	}
	expCenter := types.XYZ(0.5, -1.0, 2.0)
	if params.Extrinsics.CameraCenter != expCenter {
		t.Fatalf("expected camera center %v; got %v", expCenter, params.Extrinsics.CameraCenter)
	}
}

func TestLoadParamsErrors(t *testing.T) {
	type spec struct {
		payload  string
		expError string
	}

	specs := []spec{
		{
			payload:  "scene = orphan\n",
			expError: "outside of a section",
		},
		{
			payload:  "[meta]\nbogus line\n",
			expError: "malformed line",
		},
		{
			payload:  strings.Replace(validParams, "num_cams_x = 9", "num_cams_x = nine", 1),
			expError: "invalid count",
		},
		{
			payload:  strings.Replace(validParams, "baseline_mm = 53.0", "", 1),
			expError: "baseline_mm is missing",
		},
		{
			payload:  strings.Replace(validParams, "num_cams_x = 9", "num_cams_x = 0", 1),
			expError: "at least one camera",
		},
	}

	for index, s := range specs {
		_, err := LoadParams(asset.NewResourceFromStream("params.cfg", strings.NewReader(s.payload)))
		if err == nil || !strings.Contains(err.Error(), s.expError) {
			t.Fatalf("[spec %d] expected error containing %q; got %v", index, s.expError, err)
		}
	}
}

func TestRotationMatrix(t *testing.T) {
	ex := Extrinsics{CameraRotation: types.XYZ(0, 0, math.Pi/2)}

	got := ex.RotationMatrix().MulDir3(types.XYZ(1, 0, 0))
	exp := types.XYZ(0, 1, 0)
	if got.Sub(exp).Len() > 1e-5 {
		t.Fatalf("expected rotated axis %v; got %v", exp, got)
	}
}

func TestSwapAxis(t *testing.T) {
	got := SwapAxis(types.XYZ(1, 2, 3))
	exp := types.XYZ(1, 3, -2)
	if got != exp {
		t.Fatalf("expected %v; got %v", exp, got)
	}
}

package io

import (
	"image"
	"path/filepath"
	"testing"

	"github.com/lumen-render/lumen/scene"
	"github.com/lumen-render/lumen/types"
)

func testScene() *scene.Scene {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range img.Pix {
		img.Pix[i] = byte(i)
	}

	camera := scene.NewCamera(45)
	camera.Position = types.XYZ(1, 2, 3)
	camera.Update()

	return &scene.Scene{
		Planes: []scene.Plane{
			{
				TopLeft:     types.XYZ(0, 1, -2),
				TopRight:    types.XYZ(1, 1, -2),
				BottomLeft:  types.XYZ(0, 0, -2),
				BottomRight: types.XYZ(1, 0, -2),
				Normal:      types.XYZ(0, 0, 1),
				Depth:       2,
				FirstRecord: 0,
				LastRecord:  1,
			},
		},
		Records: []scene.CameraRecord{
			{
				ImageIndex: 0,
				GridX:      1,
				GridY:      2,
				Bounds:     scene.Rect{Left: 0, Right: 0.5, Top: 0, Bottom: 0.5},
				Center:     types.XY(0.25, 0.25),
			},
		},
		Textures: []*scene.Texture{scene.NewTexture(img)},
		Camera:   camera,

		HorizontalCameraCount: 3,
		VerticalCameraCount:   3,
		Baseline:              0.053,
		SceneName:             "round trip",
	}
}

func TestSceneArchiveRoundTrip(t *testing.T) {
	sceneFile := filepath.Join(t.TempDir(), "scene.zip")

	src := testScene()
	if err := WriteScene(src, sceneFile); err != nil {
		t.Fatal(err)
	}

	got, err := ReadScene(sceneFile)
	if err != nil {
		t.Fatal(err)
	}

	if len(got.Planes) != 1 || got.Planes[0] != src.Planes[0] {
		t.Fatalf("plane table did not survive the round trip: %+v", got.Planes)
	}
	if len(got.Records) != 1 || got.Records[0] != src.Records[0] {
		t.Fatalf("record table did not survive the round trip: %+v", got.Records)
	}
	if len(got.Textures) != 1 {
		t.Fatalf("expected 1 texture; got %d", len(got.Textures))
	}
	for i, v := range src.Textures[0].Data {
		if got.Textures[0].Data[i] != v {
			t.Fatalf("texture byte %d did not survive the round trip", i)
		}
	}
	if got.Camera == nil || got.Camera.Position != src.Camera.Position {
		t.Fatalf("camera did not survive the round trip: %+v", got.Camera)
	}
	if got.SceneName != src.SceneName || got.Baseline != src.Baseline {
		t.Fatalf("scene metadata did not survive the round trip")
	}
	if got.HorizontalCameraCount != 3 || got.VerticalCameraCount != 3 {
		t.Fatalf("grid dimensions did not survive the round trip")
	}
}

func TestUnsupportedFormats(t *testing.T) {
	if _, err := ReadScene("scene.obj"); err == nil {
		t.Fatal("expected a format error on read")
	}
	if err := WriteScene(testScene(), "scene.tar"); err == nil {
		t.Fatal("expected a format error on write")
	}
}

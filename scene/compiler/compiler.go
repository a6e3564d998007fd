// Package compiler converts a loaded light-field capture into the optimized
// scene tables consumed by the tracers.
package compiler

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/lumen-render/lumen/asset/capture"
	"github.com/lumen-render/lumen/log"
	"github.com/lumen-render/lumen/scene"
	"github.com/lumen-render/lumen/types"
)

const (
	// Layers whose averaged depth exceeds this are capture artifacts and
	// produce no plane.
	maxLayerDepth float32 = 100000.0

	// Plane axes shorter than this are degenerate and rejected.
	minAxisLength float32 = 1e-6
)

// One texture together with the grid camera and depth slice it came from.
type layerTexture struct {
	textureIndex int32
	gridX, gridY int32
	medianDepth  float32
}

type sceneCompiler struct {
	capture        *capture.Capture
	optimizedScene *scene.Scene
	logger         log.Logger

	// per depth slice, the textures feeding that plane
	layers map[int][]layerTexture
}

// Compile a loaded capture into an optimized light-field scene: one plane per
// populated depth slice, camera records locating every captured image on its
// plane, and the shared texture pool.
func Compile(cap *capture.Capture) (*scene.Scene, error) {
	compiler := &sceneCompiler{
		capture: cap,
		optimizedScene: &scene.Scene{
			HorizontalCameraCount: int32(cap.Params.Extrinsics.HorizontalCameraCount),
			VerticalCameraCount:   int32(cap.Params.Extrinsics.VerticalCameraCount),
			Baseline:              cap.Params.Extrinsics.Baseline(),
			SceneName:             cap.Params.Meta.Scene,
		},
		logger: log.New("scene compiler"),
		layers: make(map[int][]layerTexture),
	}

	start := time.Now()
	compiler.logger.Noticef("compiling scene %q", cap.Params.Meta.Scene)

	var err error
	err = compiler.bakeTextures()
	if err != nil {
		return nil, err
	}

	err = compiler.buildPlanes()
	if err != nil {
		return nil, err
	}

	err = compiler.setupCamera()
	if err != nil {
		return nil, err
	}

	err = compiler.validateTables()
	if err != nil {
		return nil, err
	}

	compiler.logger.Noticef("compiled scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return compiler.optimizedScene, nil
}

// Move every sliced layer image into the scene texture pool and group the
// resulting handles by depth slice.
func (sc *sceneCompiler) bakeTextures() error {
	start := time.Now()
	sc.logger.Noticef("processing %d grid cameras", len(sc.capture.Cameras))

	for _, camera := range sc.capture.Cameras {
		for _, layer := range camera.Layers {
			textureIndex := int32(len(sc.optimizedScene.Textures))
			sc.optimizedScene.Textures = append(sc.optimizedScene.Textures, scene.NewTexture(layer.Image))

			sc.layers[layer.LayerIndex] = append(sc.layers[layer.LayerIndex], layerTexture{
				textureIndex: textureIndex,
				gridX:        int32(camera.X),
				gridY:        int32(camera.Y),
				medianDepth:  layer.Depths[len(layer.Depths)/2],
			})
		}
	}

	sc.logger.Noticef("baked %d textures into %d layers in %d ms",
		len(sc.optimizedScene.Textures), len(sc.layers), time.Since(start).Nanoseconds()/1e6)
	return nil
}

// Build one plane per depth slice. The plane corners are the outer frustum
// corners at the layer's averaged depth; each image's plane-local bounds
// follow from the capture baseline and the frustum extent at that depth.
func (sc *sceneCompiler) buildPlanes() error {
	start := time.Now()

	gridW := int(sc.optimizedScene.HorizontalCameraCount)
	gridH := int(sc.optimizedScene.VerticalCameraCount)

	frustums := make(map[[2]int]*capture.Frustum, len(sc.capture.Frustums))
	for index := range sc.capture.Frustums {
		frustum := &sc.capture.Frustums[index]
		x, y := frustum.Position()
		frustums[[2]int{x, y}] = frustum
	}

	topLeftFrustum := frustums[[2]int{0, 0}]
	bottomLeftFrustum := frustums[[2]int{0, gridH - 1}]
	topRightFrustum := frustums[[2]int{gridW - 1, 0}]
	bottomRightFrustum := frustums[[2]int{gridW - 1, gridH - 1}]

	layerIndices := make([]int, 0, len(sc.layers))
	for layerIndex := range sc.layers {
		layerIndices = append(layerIndices, layerIndex)
	}
	sort.Ints(layerIndices)

	baseline := sc.optimizedScene.Baseline

	for _, layerIndex := range layerIndices {
		textures := sc.layers[layerIndex]

		var totalDepth float32
		for _, tex := range textures {
			totalDepth += tex.medianDepth
		}
		layerDepth := totalDepth / float32(len(textures))
		if layerDepth > maxLayerDepth {
			sc.logger.Warningf("skipping layer %d: depth %f exceeds the capture range", layerIndex, layerDepth)
			continue
		}

		topLeft, _, _, _ := topLeftFrustum.CornersAtDepth(layerDepth)
		_, bottomLeft, _, _ := bottomLeftFrustum.CornersAtDepth(layerDepth)
		_, _, topRight, _ := topRightFrustum.CornersAtDepth(layerDepth)
		_, _, _, bottomRight := bottomRightFrustum.CornersAtDepth(layerDepth)

		horizontal := topRight.Sub(topLeft)
		vertical := bottomLeft.Sub(topLeft)
		totalWidth := horizontal.Len()
		totalHeight := vertical.Len()
		if totalWidth < minAxisLength || totalHeight < minAxisLength {
			return fmt.Errorf("compiler: layer %d produces a degenerate plane basis (%f x %f)", layerIndex, totalWidth, totalHeight)
		}

		// every camera shares one sensor, so each image spans the single
		// frustum extent and images are offset from each other by the baseline
		frustumWidth, frustumHeight := topLeftFrustum.ExtentAtDepth(layerDepth)
		horizontalBaselineRatio := baseline / totalWidth
		verticalBaselineRatio := baseline / totalHeight
		widthRatio := frustumWidth / totalWidth
		heightRatio := frustumHeight / totalHeight

		firstRecord := int32(len(sc.optimizedScene.Records))
		for _, tex := range textures {
			// plane-local x tracks the grid row and y the grid column;
			// the sampler applies the matching swap when remapping to
			// texture space
			left := horizontalBaselineRatio * float32(tex.gridY)
			right := left + widthRatio
			top := verticalBaselineRatio * float32(tex.gridX)
			bottom := top + heightRatio

			sc.optimizedScene.Records = append(sc.optimizedScene.Records, scene.CameraRecord{
				ImageIndex: tex.textureIndex,
				GridX:      tex.gridX,
				GridY:      tex.gridY,
				Bounds:     scene.Rect{Left: left, Right: right, Top: top, Bottom: bottom},
				Center:     types.XY((left+right)/2.0, (top+bottom)/2.0),
			})
		}

		sc.optimizedScene.Planes = append(sc.optimizedScene.Planes, scene.Plane{
			TopLeft:     topLeft,
			TopRight:    topRight,
			BottomLeft:  bottomLeft,
			BottomRight: bottomRight,
			Normal:      vertical.Cross(horizontal).Normalize(),
			Depth:       layerDepth,
			LayerIndex:  int32(layerIndex),
			FirstRecord: firstRecord,
			LastRecord:  int32(len(sc.optimizedScene.Records)),
		})
	}

	sc.logger.Noticef("built %d planes with %d camera records in %d ms",
		len(sc.optimizedScene.Planes), len(sc.optimizedScene.Records), time.Since(start).Nanoseconds()/1e6)
	return nil
}

// Place the initial viewer at the capture rig center looking along the
// capture direction, with the field of view recovered from the intrinsics.
func (sc *sceneCompiler) setupCamera() error {
	intrinsics := &sc.capture.Params.Intrinsics
	fov := float32(2.0 * math.Atan2(float64(intrinsics.SensorSize()), 2.0*float64(intrinsics.FocalLength())) * 180.0 / math.Pi)

	camera := scene.NewCamera(fov)
	camera.Position = sc.capture.Center
	camera.LookAt = sc.capture.Center.Add(sc.capture.Direction)
	camera.Up = sc.capture.Up

	sc.optimizedScene.Camera = camera
	return nil
}

// Reject malformed tables at build time so the samplers never have to.
func (sc *sceneCompiler) validateTables() error {
	textureCount := int32(len(sc.optimizedScene.Textures))
	recordCount := int32(len(sc.optimizedScene.Records))

	for planeIndex, plane := range sc.optimizedScene.Planes {
		if plane.FirstRecord > plane.LastRecord || plane.FirstRecord < 0 || plane.LastRecord > recordCount {
			return fmt.Errorf("compiler: plane %d has a malformed record range [%d, %d)", planeIndex, plane.FirstRecord, plane.LastRecord)
		}

		horizontal, vertical := plane.Basis()
		if horizontal.Len() < minAxisLength || vertical.Len() < minAxisLength {
			return fmt.Errorf("compiler: plane %d has a degenerate basis", planeIndex)
		}

		for recordIndex := plane.FirstRecord; recordIndex < plane.LastRecord; recordIndex++ {
			record := sc.optimizedScene.Records[recordIndex]
			if record.ImageIndex < 0 || record.ImageIndex >= textureCount {
				return fmt.Errorf("compiler: record %d references unknown texture %d", recordIndex, record.ImageIndex)
			}
			if record.Bounds.Left >= record.Bounds.Right || record.Bounds.Top >= record.Bounds.Bottom {
				return fmt.Errorf("compiler: record %d has empty bounds", recordIndex)
			}
		}
	}

	return nil
}

package capture

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/lumen-render/lumen/asset"
	"github.com/lumen-render/lumen/asset/pfm"
	"github.com/lumen-render/lumen/types"
)

// Depth values above this are treated as "no geometry" sentinels written by
// the capture pipeline and excluded from depth statistics.
const depthOutlierCutoff = 10000.0

// The forward/up axes of an unrotated capture camera, in capture space.
var (
	DefaultForward = types.XYZ(0, 1, 0)
	Up             = types.XYZ(0, 0, 1)
)

// One depth slice of one grid camera: the masked RGBA image plus the sorted
// depth values of the covered pixels.
type LayerImage struct {
	LayerIndex int
	Image      *image.RGBA
	Depths     []float32
}

// All depth slices produced from one grid camera.
type CameraImages struct {
	X, Y   int
	Layers []LayerImage
}

// A fully loaded light-field capture, ready for scene compilation.
type Capture struct {
	Params *Params

	// pose of the rig in viewer space
	Center    types.Vec3
	Direction types.Vec3
	Up        types.Vec3
	Right     types.Vec3

	Frustums []Frustum
	Cameras  []CameraImages

	MinDepth float32
	MaxDepth float32
}

// Grid cell for the flat camera index. Cameras are numbered down columns,
// matching the capture tooling's file numbering.
func gridPosition(index, verticalCount int) (int, int) {
	return index / verticalCount, index % verticalCount
}

// Load a capture directory: parameters.cfg, input_CamNNN.png and
// gt_depth_lowres_CamNNN.pfm per grid camera. Depth maps are sliced into
// sliceCount layers; cameras are loaded concurrently.
func Load(dir string, sliceCount int) (*Capture, error) {
	paramsRes, err := asset.NewResource(dir+"/parameters.cfg", nil)
	if err != nil {
		return nil, err
	}
	params, err := LoadParams(paramsRes)
	paramsRes.Close()
	if err != nil {
		return nil, err
	}

	cameraCount := int(params.Extrinsics.HorizontalCameraCount * params.Extrinsics.VerticalCameraCount)

	depthMaps, minDepth, maxDepth, err := loadDepthMaps(dir, cameraCount)
	if err != nil {
		return nil, err
	}
	sliceThickness := (maxDepth - minDepth) / float32(sliceCount)

	// rig pose in viewer space
	rotation := params.Extrinsics.RotationMatrix()
	center := SwapAxis(params.Extrinsics.CameraCenter)
	direction := SwapAxis(rotation.MulDir3(DefaultForward).Normalize())
	up := SwapAxis(rotation.MulDir3(Up).Normalize())
	right := direction.Cross(up).Normalize()

	type result struct {
		camera CameraImages
		err    error
	}
	results := make(chan result, cameraCount)

	for i := 0; i < cameraCount; i++ {
		go func(index int) {
			camera, err := loadCamera(dir, index, params, depthMaps[index], sliceCount, minDepth, sliceThickness)
			results <- result{camera: camera, err: err}
		}(i)
	}

	cameras := make([]CameraImages, 0, cameraCount)
	for i := 0; i < cameraCount; i++ {
		res := <-results
		if res.err != nil {
			return nil, res.err
		}
		cameras = append(cameras, res.camera)
	}

	return &Capture{
		Params: params,

		Center:    center,
		Direction: direction,
		Up:        up,
		Right:     right,

		Frustums: CreateFrustums(center, direction, up, right, params),
		Cameras:  cameras,

		MinDepth: minDepth,
		MaxDepth: maxDepth,
	}, nil
}

func loadDepthMaps(dir string, cameraCount int) ([]*pfm.Image, float32, float32, error) {
	depthMaps := make([]*pfm.Image, cameraCount)
	minDepth := float32(math.MaxFloat32)
	maxDepth := float32(-math.MaxFloat32)

	for i := 0; i < cameraCount; i++ {
		res, err := asset.NewResource(fmt.Sprintf("%s/gt_depth_lowres_Cam%03d.pfm", dir, i), nil)
		if err != nil {
			return nil, 0, 0, err
		}
		depthMap, err := pfm.Decode(res)
		res.Close()
		if err != nil {
			return nil, 0, 0, err
		}

		for _, depth := range depthMap.Data {
			if depth > depthOutlierCutoff {
				continue
			}
			if depth < minDepth {
				minDepth = depth
			}
			if depth > maxDepth {
				maxDepth = depth
			}
		}

		depthMaps[i] = depthMap
	}

	if minDepth > maxDepth {
		return nil, 0, 0, fmt.Errorf("capture: no usable depth samples in %s", dir)
	}

	return depthMaps, minDepth, maxDepth, nil
}

func loadCamera(dir string, index int, params *Params, depthMap *pfm.Image, sliceCount int, minDepth, sliceThickness float32) (CameraImages, error) {
	x, y := gridPosition(index, int(params.Extrinsics.VerticalCameraCount))

	imgRes, err := asset.NewResource(fmt.Sprintf("%s/input_Cam%03d.png", dir, index), nil)
	if err != nil {
		return CameraImages{}, err
	}
	defer imgRes.Close()

	decoded, _, err := image.Decode(imgRes)
	if err != nil {
		return CameraImages{}, fmt.Errorf("capture: could not decode %s: %s", imgRes.Path(), err.Error())
	}

	bounds := decoded.Bounds()
	if uint32(bounds.Dx()) != params.Intrinsics.ImageWidth || uint32(bounds.Dy()) != params.Intrinsics.ImageHeight {
		return CameraImages{}, fmt.Errorf("capture: %s has extent %dx%d; expected %dx%d",
			imgRes.Path(), bounds.Dx(), bounds.Dy(),
			params.Intrinsics.ImageWidth, params.Intrinsics.ImageHeight)
	}

	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, decoded, bounds.Min, draw.Src)

	// depth maps are lower resolution than the camera images
	scaleX := float32(depthMap.Width) / float32(bounds.Dx())
	scaleY := float32(depthMap.Height) / float32(bounds.Dy())

	alphaMaps := SliceDepthMap(depthMap, sliceCount, minDepth, sliceThickness)

	camera := CameraImages{X: x, Y: y}
	for _, alphaMap := range alphaMaps {
		if alphaMap.Empty() {
			continue
		}

		layer := image.NewRGBA(bounds)
		for py := bounds.Min.Y; py < bounds.Max.Y; py++ {
			dy := int(float32(py-bounds.Min.Y) * scaleY)
			for px := bounds.Min.X; px < bounds.Max.X; px++ {
				dx := int(float32(px-bounds.Min.X) * scaleX)
				if alphaMap.Covers(dx, dy) {
					layer.SetRGBA(px, py, rgba.RGBAAt(px, py))
				}
			}
		}

		camera.Layers = append(camera.Layers, LayerImage{
			LayerIndex: alphaMap.LayerIndex,
			Image:      layer,
			Depths:     alphaMap.Depths,
		})
	}

	return camera, nil
}

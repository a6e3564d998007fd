package capture

import (
	"github.com/lumen-render/lumen/types"
)

// A corner ray of a camera frustum: a point on the aperture plane plus a
// normalized direction into the scene.
type cornerRay struct {
	center    types.Vec3
	direction types.Vec3
}

func makeCornerRay(center, helper types.Vec3) cornerRay {
	return cornerRay{
		center:    center,
		direction: center.Sub(helper).Normalize(),
	}
}

// The viewing frustum of one grid camera, described by its four corner rays.
// Corner positions at a given scene depth are recovered by extending each
// ray until it reaches that depth along the camera's main direction.
type Frustum struct {
	// grid cell of the camera
	X, Y int

	MainDirection types.Vec3

	leftTop     cornerRay
	leftBottom  cornerRay
	rightTop    cornerRay
	rightBottom cornerRay
}

// Grid position of the camera owning this frustum.
func (f *Frustum) Position() (int, int) {
	return f.X, f.Y
}

// The four frustum corners at the plane orthogonal to the main direction at
// the given depth. Returned in (TL, BL, TR, BR) order.
func (f *Frustum) CornersAtDepth(depth float32) (types.Vec3, types.Vec3, types.Vec3, types.Vec3) {
	return f.cornerAtDepth(f.leftTop, depth),
		f.cornerAtDepth(f.leftBottom, depth),
		f.cornerAtDepth(f.rightTop, depth),
		f.cornerAtDepth(f.rightBottom, depth)
}

func (f *Frustum) cornerAtDepth(ray cornerRay, depth float32) types.Vec3 {
	// scale the ray so its advance along the main direction equals depth
	along := ray.direction.Dot(f.MainDirection)
	return ray.center.Add(ray.direction.Mul(depth / along))
}

// Width and height of the frustum cross-section at the given depth.
func (f *Frustum) ExtentAtDepth(depth float32) (float32, float32) {
	leftTop, leftBottom, rightTop, _ := f.CornersAtDepth(depth)
	return rightTop.Sub(leftTop).Len(), leftBottom.Sub(leftTop).Len()
}

// Build one frustum per grid camera. direction, up and right must be
// normalized. The grid is centered on center and spaced by the capture
// baseline, matching the rig described by the extrinsics.
func CreateFrustums(center, direction, up, right types.Vec3, params *Params) []Frustum {
	baseline := params.Extrinsics.Baseline()
	width := int(params.Extrinsics.HorizontalCameraCount)
	height := int(params.Extrinsics.VerticalCameraCount)

	gridTopLeft := center.
		Sub(right.Mul(float32((width-1)/2) * baseline)).
		Add(up.Mul(float32((height-1)/2) * baseline))

	frustums := make([]Frustum, 0, width*height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			camCenter := gridTopLeft.
				Add(right.Mul(float32(x) * baseline)).
				Sub(up.Mul(float32(y) * baseline))

			frustums = append(frustums, newFrustum(x, y, camCenter, direction, up, right, params))
		}
	}

	return frustums
}

func newFrustum(x, y int, center, direction, up, right types.Vec3, params *Params) Frustum {
	sensorCenter := center.Sub(direction.Mul(params.Intrinsics.FocalLength()))

	sensorTL, sensorBL, sensorTR, sensorBR := cornersAround(sensorCenter, up, right, params.Intrinsics.SensorSize())
	apertureTL, apertureBL, apertureTR, apertureBR := cornersAround(center, up, right, params.Intrinsics.FStop)

	return Frustum{
		X: x,
		Y: y,

		MainDirection: direction,

		leftTop:     makeCornerRay(apertureTL, sensorTL),
		leftBottom:  makeCornerRay(apertureBL, sensorBL),
		rightTop:    makeCornerRay(apertureTR, sensorTR),
		rightBottom: makeCornerRay(apertureBR, sensorBR),
	}
}

func cornersAround(center, up, right types.Vec3, distance float32) (types.Vec3, types.Vec3, types.Vec3, types.Vec3) {
	horizontal := right.Mul(distance)
	vertical := up.Mul(distance)

	return center.Sub(horizontal).Add(vertical),
		center.Sub(horizontal).Sub(vertical),
		center.Add(horizontal).Add(vertical),
		center.Add(horizontal).Sub(vertical)
}

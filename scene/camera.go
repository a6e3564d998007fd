package scene

import (
	"fmt"
	"math"

	"github.com/lumen-render/lumen/types"
)

// Stores the ray directions at the four corners of the camera frustum. It is
// used as a shortcut for generating per pixel rays via interpolation of the
// corner rays. The W coordinate is unused but keeps the layout vectorizable.
type Frustum [4]types.Vec4

func (fr Frustum) String() string {
	return fmt.Sprintf(
		"Frustum Rays:\nTL : (%3.3f, %3.3f, %3.3f)\nTR : (%3.3f, %3.3f, %3.3f)\nBL : (%3.3f, %3.3f, %3.3f)\nBR : (%3.3f, %3.3f, %3.3f)",
		fr[0][0], fr[0][1], fr[0][2],
		fr[1][0], fr[1][1], fr[1][2],
		fr[2][0], fr[2][1], fr[2][2],
		fr[3][0], fr[3][1], fr[3][2],
	)
}

// The camera type controls the scene viewpoint.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3
	Pitch    float32
	Yaw      float32

	Frustum Frustum

	// Camera FOV in degrees
	FOV float32

	// Frame aspect ratio (width / height)
	Aspect float32

	// Adjust the frustum so that Y is inverted
	InvertY bool
}

func NewCamera(fov float32) *Camera {
	return &Camera{
		Position: types.Vec3{0, 0, 0},
		LookAt:   types.Vec3{0, 0, -1},
		Up:       types.Vec3{0, 1, 0},
		FOV:      fov,
		Aspect:   1.0,
	}
}

// Set the frame aspect ratio and rebuild the frustum rays.
func (c *Camera) SetupProjection(aspect float32) {
	c.Aspect = aspect
	c.Update()
}

// Apply the pending pitch/yaw to the view direction and regenerate the
// frustum corner rays.
func (c *Camera) Update() {
	dir := c.LookAt.Sub(c.Position).Normalize()
	pitchAxis := dir.Cross(c.Up)
	pitchQuat := types.QuatFromAxisAngle(pitchAxis, c.Pitch)
	yawQuat := types.QuatFromAxisAngle(c.Up, c.Yaw)

	orientQuat := pitchQuat.Mul(yawQuat).Normalize()

	// Update direction
	dir = orientQuat.Rotate(dir)
	c.LookAt = c.Position.Add(dir.Mul(1.0))

	c.updateFrustum(dir)
}

// Generate a ray vector for each corner of the camera frustum from the view
// direction and the projection parameters. Per pixel rays are produced by
// bilinearly interpolating the corner rays.
func (c *Camera) updateFrustum(dir types.Vec3) {
	right := dir.Cross(c.Up).Normalize()
	up := right.Cross(dir).Normalize()

	halfH := float32(math.Tan(float64(c.FOV) * math.Pi / 360.0))
	halfW := halfH * c.Aspect

	if c.InvertY {
		up = up.Mul(-1)
	}

	h := right.Mul(halfW)
	v := up.Mul(halfH)

	c.Frustum[0] = dir.Sub(h).Add(v).Vec4(0)
	c.Frustum[1] = dir.Add(h).Add(v).Vec4(0)
	c.Frustum[2] = dir.Sub(h).Sub(v).Vec4(0)
	c.Frustum[3] = dir.Add(h).Sub(v).Vec4(0)
}

// Translate the camera and its look-at target by the given offset.
func (c *Camera) Translate(offset types.Vec3) {
	c.Position = c.Position.Add(offset)
	c.LookAt = c.LookAt.Add(offset)
	c.Update()
}

// The camera's forward/right basis for movement input.
func (c *Camera) Basis() (forward, right types.Vec3) {
	forward = c.LookAt.Sub(c.Position).Normalize()
	right = forward.Cross(c.Up).Normalize()
	return forward, right
}

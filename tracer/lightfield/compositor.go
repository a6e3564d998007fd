package lightfield

import (
	"math"

	"github.com/lumen-render/lumen/scene"
	"github.com/lumen-render/lumen/types"
)

const (
	// Upper bound on composited layers per ray when no explicit budget is
	// configured.
	DefaultMaxBounces = 8

	// Origin bias applied after each hit so the next cast does not re-hit
	// the same plane.
	advanceEpsilon float32 = 1e-4
)

// The Compositor walks a ray through the stacked light-field planes,
// blending each resolved layer front-to-back with the over operator until
// the ray misses, the pixel saturates or the bounce budget runs out.
type Compositor struct {
	sc       *scene.Scene
	geometry *Geometry
	selector SelectorStrategy

	maxBounces int
	background types.Vec4
}

func NewCompositor(sc *scene.Scene, geometry *Geometry, selector SelectorStrategy, maxBounces int, background types.Vec4) *Compositor {
	if maxBounces <= 0 {
		maxBounces = DefaultMaxBounces
	}
	return &Compositor{
		sc:         sc,
		geometry:   geometry,
		selector:   selector,
		maxBounces: maxBounces,
		background: background,
	}
}

// Trace composites all plane layers along the ray and returns the final
// pixel color with its accumulated alpha.
func (c *Compositor) Trace(origin, direction types.Vec3) types.Vec4 {
	return c.trace(origin, direction, nil)
}

// Probe runs the same compositing loop but additionally records the
// resolved state of every bounce, including the terminating miss.
func (c *Compositor) Probe(origin, direction types.Vec3) (types.Vec4, []RayState) {
	states := make([]RayState, 0, c.maxBounces)
	color := c.trace(origin, direction, &states)
	return color, states
}

func (c *Compositor) trace(origin, direction types.Vec3, states *[]RayState) types.Vec4 {
	var accColor types.Vec3
	var accAlpha float32
	scratch := make([]WeightedCamera, 0, 4)

	for bounce := 0; bounce < c.maxBounces && accAlpha < 1.0; bounce++ {
		hit := c.geometry.ClosestHit(origin, direction, 0, math.MaxFloat32)
		if hit.Miss() {
			if states != nil {
				*states = append(*states, RayState{Distance: MissDistance, Factor: 1})
			}
			break
		}

		state := c.resolveHit(hit, scratch[:0])
		if states != nil {
			*states = append(*states, state)
		}

		// front-to-back over: out = src + dst * (1 - src.alpha)
		srcAlpha := state.Alpha * state.Factor
		contribution := srcAlpha * (1.0 - accAlpha)
		accColor = accColor.Add(state.Color.Mul(contribution))
		accAlpha += contribution

		origin = origin.Add(direction.Mul(hit.Distance + advanceEpsilon))
	}

	// the background is the final layer of the stack
	bgContribution := c.background[3] * (1.0 - accAlpha)
	accColor = accColor.Add(c.background.Vec3().Mul(bgContribution))
	accAlpha += bgContribution

	return accColor.Vec4(accAlpha)
}

// Resolve one hit into a layer color: parameterize the hit point, ask the
// selector for the blend set and sample it. Backface hits resolve like front
// hits with a unit factor; the capture carries no data to attenuate them with.
func (c *Compositor) resolveHit(hit Hit, scratch []WeightedCamera) RayState {
	plane := c.geometry.Plane(hit.PlaneIndex)
	coord := Parameterize(plane, hit.Point)

	cameras := c.selector.Select(hit.PlaneIndex, scratch)
	color, alpha := SampleLayer(c.sc.Textures, cameras, coord)

	return RayState{
		Color:    color,
		Alpha:    alpha,
		Distance: hit.Distance,
		Factor:   1.0,
	}
}

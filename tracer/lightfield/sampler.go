package lightfield

import (
	"math"

	"github.com/lumen-render/lumen/scene"
	"github.com/lumen-render/lumen/types"
)

// Per-cast result consumed by the compositor: the blended layer color with
// its coverage alpha, the signed hit distance and an attenuation factor
// applied to the alpha before compositing.
type RayState struct {
	Color    types.Vec3
	Alpha    float32
	Distance float32
	Factor   float32
}

// True when the state records the terminating miss of a probe.
func (s RayState) IsMiss() bool {
	return s.Distance < 0
}

// SampleLayer blends the selected cameras at the hit coordinate. Cameras
// whose valid region does not cover the hit contribute nothing; the result
// is the weighted sum over the covering cameras (weights are not
// renormalized, partial coverage surfaces as reduced alpha).
func SampleLayer(textures []*scene.Texture, cameras []WeightedCamera, hit types.Vec2) (types.Vec3, float32) {
	var color types.Vec3
	var alpha float32

	if !isFinite(hit[0]) || !isFinite(hit[1]) {
		// degenerate parameterization, skip the layer
		return color, alpha
	}

	for _, camera := range cameras {
		bounds := camera.Record.Bounds
		if !bounds.Contains(hit) {
			continue
		}

		// Plane space and texture space have their axes swapped: the
		// plane-local x coordinate walks the capture grid rows, which is
		// the vertical texture axis. The remap below relies on this.
		u := (hit[1] - bounds.Top) / (bounds.Bottom - bounds.Top)
		v := (hit[0] - bounds.Left) / (bounds.Right - bounds.Left)

		sample := textures[camera.Record.ImageIndex].Sample(u, v)
		color = color.Add(sample.Vec3().Mul(camera.Weight))
		alpha += sample[3] * camera.Weight
	}

	return color, alpha
}

func isFinite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

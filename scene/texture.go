package scene

import (
	"fmt"
	"image"

	"github.com/lumen-render/lumen/types"
)

// A sampleable RGBA8 image in the scene texture pool.
type Texture struct {
	Width  uint32
	Height uint32

	// RGBA8, row-major
	Data []byte
}

// Wrap a decoded image as a scene texture.
func NewTexture(img *image.RGBA) *Texture {
	bounds := img.Bounds()
	return &Texture{
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
		Data:   img.Pix,
	}
}

// Sample the nearest texel to the normalized (u, v) coordinate. Coordinates
// are clamped to the texture edges; channels are returned in [0,1].
func (t *Texture) Sample(u, v float32) types.Vec4 {
	x := int(u * float32(t.Width))
	y := int(v * float32(t.Height))
	if x < 0 {
		x = 0
	} else if x >= int(t.Width) {
		x = int(t.Width) - 1
	}
	if y < 0 {
		y = 0
	} else if y >= int(t.Height) {
		y = int(t.Height) - 1
	}

	offset := (y*int(t.Width) + x) << 2
	return types.XYZW(
		float32(t.Data[offset])/255.0,
		float32(t.Data[offset+1])/255.0,
		float32(t.Data[offset+2])/255.0,
		float32(t.Data[offset+3])/255.0,
	)
}

func (t *Texture) String() string {
	return fmt.Sprintf("texture (%dx%d)", t.Width, t.Height)
}

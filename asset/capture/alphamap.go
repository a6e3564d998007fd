package capture

import (
	"sort"

	"github.com/lumen-render/lumen/asset/pfm"
)

// An AlphaMap marks the pixels of one camera image that fall into one depth
// slice, together with the sorted depth values of those pixels.
type AlphaMap struct {
	LayerIndex int

	width int
	mask  []bool

	// sorted ascending; empty when the slice covers no pixels
	Depths []float32
}

// True if the pixel at x, y belongs to this slice.
func (am *AlphaMap) Covers(x, y int) bool {
	return am.mask[y*am.width+x]
}

// Median depth of the covered pixels.
func (am *AlphaMap) MedianDepth() float32 {
	return am.Depths[len(am.Depths)/2]
}

// True if no pixel falls into this slice.
func (am *AlphaMap) Empty() bool {
	return len(am.Depths) == 0
}

// Slice a camera depth map into sliceCount alpha maps of thickness
// (maxDepth-minDepth)/sliceCount. Each depth-map pixel is assigned to
// exactly one slice; far-plane outliers (sentinel depths) are dropped.
func SliceDepthMap(depthMap *pfm.Image, sliceCount int, minDepth, sliceThickness float32) []AlphaMap {
	if sliceCount < 1 {
		sliceCount = 1
	}

	maps := make([]AlphaMap, sliceCount)
	for i := range maps {
		maps[i] = AlphaMap{
			LayerIndex: i,
			width:      depthMap.Width,
			mask:       make([]bool, depthMap.Width*depthMap.Height),
		}
	}

	for i, depth := range depthMap.Data {
		if depth > depthOutlierCutoff {
			continue
		}

		layer := 0
		if sliceThickness > 0 {
			layer = int((depth - minDepth) / sliceThickness)
		}
		if layer < 0 {
			layer = 0
		}
		if layer >= sliceCount {
			layer = sliceCount - 1
		}

		maps[layer].mask[i] = true
		maps[layer].Depths = append(maps[layer].Depths, depth)
	}

	for i := range maps {
		sort.Slice(maps[i].Depths, func(a, b int) bool { return maps[i].Depths[a] < maps[i].Depths[b] })
	}

	return maps
}

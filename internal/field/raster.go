package field

import "image"

// LitThreshold is the 8-bit channel value a pixel must exceed to be lit.
const LitThreshold = 30

// Pixel is a lit raster pixel and the color of the run that lit it.
type Pixel struct {
	X, Y  int
	Color Color
}

// Raster is the result of drawing a set of runs.
type Raster struct {
	Width, Height int
	Lit           []Pixel
}

// Rasterizer draws runs side by side, centered, onto an offscreen raster of
// fixed size and reports which pixels ended up lit.
type Rasterizer interface {
	Rasterize(runs []Run) (*Raster, error)
}

// CollectLit appends every pixel of img with any channel above
// LitThreshold, tagged with c.
func CollectLit(dst []Pixel, img image.Image, c Color) []Pixel {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r>>8 > LitThreshold || g>>8 > LitThreshold || bl>>8 > LitThreshold {
				dst = append(dst, Pixel{X: x - b.Min.X, Y: y - b.Min.Y, Color: c})
			}
		}
	}
	return dst
}

package raster

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/field"
)

// hersheyUnit is the approximate cap height in pixels of a Hershey font at scale 1.
const hersheyUnit = 22.0

var ink = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Hershey rasterizes runs with OpenCV's built-in Hershey stroke fonts.
type Hershey struct {
	config    Config
	font      gocv.HersheyFont
	scale     float64
	thickness int
}

// NewHershey creates a Hershey rasterizer whose glyphs are roughly as tall
// as a TrueType face of the same font size.
func NewHershey(config Config) (*Hershey, error) {
	if config.Width <= 0 || config.Height <= 0 || config.FontSize <= 0 {
		return nil, fmt.Errorf("invalid raster size %dx%d @ %.0f", config.Width, config.Height, config.FontSize)
	}
	scale := 0.6 * config.FontSize / hersheyUnit
	thickness := int(config.FontSize / 10)
	if thickness < 1 {
		thickness = 1
	}
	return &Hershey{
		config:    config,
		font:      gocv.FontHersheyDuplex,
		scale:     scale,
		thickness: thickness,
	}, nil
}

// Rasterize draws runs left to right, centered on the raster.
func (r *Hershey) Rasterize(runs []field.Run) (*field.Raster, error) {
	w, h := r.config.Width, r.config.Height
	capHeight := gocv.GetTextSize("I", r.font, r.scale, r.thickness).Y

	widths := make([]int, len(runs))
	total := 0
	for i, run := range runs {
		if run.Heart {
			widths[i] = capHeight
		} else {
			widths[i] = gocv.GetTextSize(run.Text, r.font, r.scale, r.thickness).X
		}
		total += widths[i]
	}

	baseline := (h + capHeight) / 2
	x := (w - total) / 2

	out := &field.Raster{Width: w, Height: h}
	for i, run := range runs {
		lit, err := r.drawRun(run, x, baseline, capHeight)
		if err != nil {
			return nil, err
		}
		out.Lit = field.CollectLit(out.Lit, lit, run.Color)
		x += widths[i]
	}
	return out, nil
}

func (r *Hershey) drawRun(run field.Run, x, baseline, capHeight int) (image.Image, error) {
	w, h := r.config.Width, r.config.Height
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), h, w, gocv.MatTypeCV8UC3)
	defer mat.Close()

	if run.Heart {
		outline := heartOutline(float64(x)+float64(capHeight)/2, float64(h)/2, float64(capHeight))
		pts := make([]image.Point, len(outline))
		for i, p := range outline {
			pts[i] = image.Pt(int(p[0]+0.5), int(p[1]+0.5))
		}
		pv := gocv.NewPointsVectorFromPoints([][]image.Point{pts})
		defer pv.Close()
		gocv.FillPoly(&mat, pv, ink)
	} else if run.Text != "" {
		gocv.PutText(&mat, run.Text, image.Pt(x, baseline), r.font, r.scale, ink, r.thickness)
	}

	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert raster: %w", err)
	}
	return img, nil
}

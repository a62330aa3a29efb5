package raster

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/ayusman/mudra/internal/field"
)

// Config sizes the offscreen raster.
type Config struct {
	Width    int
	Height   int
	FontSize float64
}

// DefaultConfig returns a raster wide enough for "I ❤ U" at the default size.
func DefaultConfig() Config {
	return Config{
		Width:    400,
		Height:   200,
		FontSize: 150,
	}
}

// TrueType rasterizes runs with the Go Bold font. It needs no native
// libraries.
type TrueType struct {
	config Config
	face   font.Face
	ascent int
}

// NewTrueType parses the embedded font at the configured size.
func NewTrueType(config Config) (*TrueType, error) {
	if config.Width <= 0 || config.Height <= 0 || config.FontSize <= 0 {
		return nil, fmt.Errorf("invalid raster size %dx%d @ %.0f", config.Width, config.Height, config.FontSize)
	}

	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    config.FontSize,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}

	m := face.Metrics()
	ascent := m.CapHeight.Ceil()
	if ascent <= 0 {
		ascent = m.Ascent.Ceil() * 7 / 10
	}

	return &TrueType{
		config: config,
		face:   face,
		ascent: ascent,
	}, nil
}

// Rasterize draws runs left to right, centered on the raster.
func (t *TrueType) Rasterize(runs []field.Run) (*field.Raster, error) {
	w, h := t.config.Width, t.config.Height
	heart := t.heartSize()

	widths := make([]int, len(runs))
	total := 0
	for i, run := range runs {
		if run.Heart {
			widths[i] = heart
		} else {
			widths[i] = font.MeasureString(t.face, run.Text).Ceil()
		}
		total += widths[i]
	}

	baseline := (h + t.ascent) / 2
	x := (w - total) / 2

	out := &field.Raster{Width: w, Height: h}
	for i, run := range runs {
		canvas := image.NewGray(image.Rect(0, 0, w, h))
		if run.Heart {
			t.drawHeart(canvas, float64(x)+float64(heart)/2, float64(h)/2, float64(heart))
		} else {
			d := font.Drawer{
				Dst:  canvas,
				Src:  image.White,
				Face: t.face,
				Dot:  fixed.P(x, baseline),
			}
			d.DrawString(run.Text)
		}
		out.Lit = field.CollectLit(out.Lit, canvas, run.Color)
		x += widths[i]
	}
	return out, nil
}

func (t *TrueType) heartSize() int {
	return t.ascent
}

func (t *TrueType) drawHeart(dst *image.Gray, cx, cy, size float64) {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	for i, p := range heartOutline(cx, cy, size) {
		if i == 0 {
			z.MoveTo(float32(p[0]), float32(p[1]))
			continue
		}
		z.LineTo(float32(p[0]), float32(p[1]))
	}
	z.ClosePath()
	z.Draw(dst, b, image.White, image.Point{})
}

// Package field generates the target particle layouts the morph engine
// converges toward, one per gesture.
package field

import "github.com/ayusman/mudra/internal/gesture"

// Color is a linear RGB color with channels in [0,1].
type Color struct {
	R, G, B float32
}

// Named colors used by the built-in shapes.
var (
	White     = Color{R: 1, G: 1, B: 1}
	HeartRed  = Color{R: 1, G: 0.12, B: 0.3}
	CloudGlow = Color{R: 0.2, G: 0.3, B: 0.5}
)

// Target is a particle layout: for slot i, position (x,y,z) lives at
// Positions[3i:3i+3] and color (r,g,b) at Colors[3i:3i+3]. Targets are
// immutable once built.
type Target struct {
	Positions []float32
	Colors    []float32
}

// NewTarget allocates a zeroed target for n particles.
func NewTarget(n int) *Target {
	return &Target{
		Positions: make([]float32, 3*n),
		Colors:    make([]float32, 3*n),
	}
}

// Len returns the particle count.
func (t *Target) Len() int {
	return len(t.Positions) / 3
}

func (t *Target) set(i int, x, y, z float32, c Color) {
	p := t.Positions[3*i : 3*i+3]
	p[0], p[1], p[2] = x, y, z
	k := t.Colors[3*i : 3*i+3]
	k[0], k[1], k[2] = c.R, c.G, c.B
}

// Run is one piece of a text shape, drawn in a single color.
type Run struct {
	Text string
	// Heart draws a filled heart instead of Text.
	Heart bool
	Color Color
}

// Shapes maps each non-idle gesture to the runs it renders. Reset has no
// entry and uses the cloud.
func Shapes() map[gesture.Label][]Run {
	return map[gesture.Label][]Run{
		gesture.One:   {{Text: "1", Color: White}},
		gesture.Two:   {{Text: "2", Color: White}},
		gesture.Three: {{Text: "3", Color: White}},
		gesture.Love: {
			{Text: "I ", Color: White},
			{Heart: true, Color: HeartRed},
			{Text: " U", Color: White},
		},
	}
}

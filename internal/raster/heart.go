// Package raster draws text shapes offscreen for the target field generator.
package raster

import "math"

// heartSegments is the number of straight edges in the heart outline.
const heartSegments = 72

// heartOutline returns a closed heart outline centered on (cx, cy) that fits
// a box size wide, in raster coordinates (Y down).
func heartOutline(cx, cy, size float64) [][2]float64 {
	// The classic curve spans x in [-16,16] and y in [-17,12].
	scale := size / 34
	pts := make([][2]float64, heartSegments)
	for i := range pts {
		t := 2 * math.Pi * float64(i) / heartSegments
		s := math.Sin(t)
		x := 16 * s * s * s
		y := 13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t)
		pts[i] = [2]float64{cx + x*scale, cy - (y+2.5)*scale}
	}
	return pts
}

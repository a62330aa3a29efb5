// Package hand holds the 21-point hand landmark model shared by the
// detectors and the gesture classifier.
package hand

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D is a normalized landmark coordinate. X and Y are in [0,1] image
// space; Z is relative depth and only meaningful compared to other points
// of the same hand.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Landmarks is one detected hand. A nil *Landmarks means no hand.
type Landmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// FromPoints builds a hand from a raw point list. It returns nil unless
// exactly NumLandmarks points are given, so a truncated or padded tracker
// result reads as "no hand".
func FromPoints(points []Point3D) *Landmarks {
	if len(points) != NumLandmarks {
		return nil
	}
	h := &Landmarks{}
	copy(h.Points[:], points)
	return h
}

// SquaredDistance returns the planar squared distance between two landmarks.
// Depth is left out because the tracker's Z is on a different scale than X/Y.
func SquaredDistance(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// SquaredDistance returns the planar squared distance between landmarks i and j.
func (h *Landmarks) SquaredDistance(i, j int) float64 {
	return SquaredDistance(h.Points[i], h.Points[j])
}

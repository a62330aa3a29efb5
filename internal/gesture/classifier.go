package gesture

import "github.com/ayusman/mudra/internal/hand"

// Thresholds tune the finger-open tests.
type Thresholds struct {
	// FingerOpen is the hysteresis factor: a finger is open when its tip is
	// further from the wrist than FingerOpen times its PIP joint (squared).
	FingerOpen float64
	// ThumbOpen is the fraction of the squared palm size the thumb tip must
	// clear from the index knuckle to count as open.
	ThumbOpen float64
}

// DefaultThresholds returns the tuned thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		FingerOpen: 1.1,
		ThumbOpen:  0.6,
	}
}

// Fingers is the per-finger open state of one hand.
type Fingers struct {
	Thumb, Index, Middle, Ring, Pinky bool
}

var fingerJoints = [4]struct{ tip, pip int }{
	{hand.IndexTip, hand.IndexPIP},
	{hand.MiddleTip, hand.MiddlePIP},
	{hand.RingTip, hand.RingPIP},
	{hand.PinkyTip, hand.PinkyPIP},
}

// ReadFingers computes which fingers of h are open.
func ReadFingers(h *hand.Landmarks, th Thresholds) Fingers {
	var open [4]bool
	for i, j := range fingerJoints {
		open[i] = h.SquaredDistance(hand.Wrist, j.tip) >
			th.FingerOpen*h.SquaredDistance(hand.Wrist, j.pip)
	}

	palm := h.SquaredDistance(hand.Wrist, hand.IndexMCP)
	thumb := h.SquaredDistance(hand.ThumbTip, hand.IndexMCP) > th.ThumbOpen*palm

	return Fingers{
		Thumb:  thumb,
		Index:  open[0],
		Middle: open[1],
		Ring:   open[2],
		Pinky:  open[3],
	}
}

// rule maps a finger pattern to a label. Rules are tried in order, so poses
// with more fingers up must come first.
type rule struct {
	label Label
	match func(f Fingers) bool
}

var rules = []rule{
	{Love, func(f Fingers) bool { return f.Index && f.Middle && f.Ring && f.Pinky }},
	{Three, func(f Fingers) bool { return f.Index && f.Middle && f.Ring && !f.Pinky }},
	{Three, func(f Fingers) bool { return f.Thumb && f.Index && f.Middle && !f.Ring && !f.Pinky }},
	{Two, func(f Fingers) bool { return f.Index && f.Middle && !f.Ring && !f.Pinky }},
	{Two, func(f Fingers) bool { return f.Thumb && f.Index && !f.Middle && !f.Ring && !f.Pinky }},
	{One, func(f Fingers) bool { return f.Index && !f.Middle && !f.Ring && !f.Pinky }},
}

// ClassifyFingers maps a finger vector to a label. Every vector maps to
// exactly one label; unmatched vectors are Reset.
func ClassifyFingers(f Fingers) Label {
	for _, r := range rules {
		if r.match(f) {
			return r.label
		}
	}
	return Reset
}

// Classify labels a single frame. A nil hand is Reset.
func Classify(h *hand.Landmarks, th Thresholds) Label {
	if h == nil {
		return Reset
	}
	return ClassifyFingers(ReadFingers(h, th))
}

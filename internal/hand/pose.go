package hand

// Synthetic hand geometry used by the presets. The wrist sits low in the
// frame, fingers point up (Y decreases upward).
var (
	presetWrist  = Point3D{X: 0.50, Y: 0.90}
	fingerColumn = [4]float64{0.56, 0.50, 0.44, 0.38} // index, middle, ring, pinky
	fingerJoints = [4][4]int{
		{IndexMCP, IndexPIP, IndexDIP, IndexTip},
		{MiddleMCP, MiddlePIP, MiddleDIP, MiddleTip},
		{RingMCP, RingPIP, RingDIP, RingTip},
		{PinkyMCP, PinkyPIP, PinkyDIP, PinkyTip},
	}
)

// Pose returns a right hand with the given fingers extended and the
// rest curled into the palm.
func Pose(thumb, index, middle, ring, pinky bool) Landmarks {
	h := Landmarks{
		Handedness: "Right",
		Score:      0.95,
	}
	h.Points[Wrist] = presetWrist

	// Thumb rests across the palm when closed and swings out when open.
	h.Points[ThumbCMC] = Point3D{X: 0.56, Y: 0.86}
	h.Points[ThumbMCP] = Point3D{X: 0.61, Y: 0.80, Z: -0.01}
	if thumb {
		h.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.70, Z: -0.02}
		h.Points[ThumbTip] = Point3D{X: 0.75, Y: 0.60, Z: -0.02}
	} else {
		h.Points[ThumbIP] = Point3D{X: 0.58, Y: 0.76, Z: -0.03}
		h.Points[ThumbTip] = Point3D{X: 0.55, Y: 0.75, Z: -0.04}
	}

	for f, open := range [4]bool{index, middle, ring, pinky} {
		x := fingerColumn[f]
		j := fingerJoints[f]
		h.Points[j[0]] = Point3D{X: x, Y: 0.70}
		if open {
			h.Points[j[1]] = Point3D{X: x, Y: 0.55}
			h.Points[j[2]] = Point3D{X: x, Y: 0.45}
			h.Points[j[3]] = Point3D{X: x, Y: 0.35}
		} else {
			h.Points[j[1]] = Point3D{X: x, Y: 0.60, Z: -0.04}
			h.Points[j[2]] = Point3D{X: x, Y: 0.66, Z: -0.05}
			h.Points[j[3]] = Point3D{X: x, Y: 0.72, Z: -0.03}
		}
	}
	return h
}

// Fist returns a closed hand.
func Fist() Landmarks { return Pose(false, false, false, false, false) }

// One returns a hand pointing with the index finger.
func One() Landmarks { return Pose(false, true, false, false, false) }

// Two returns a hand showing index and middle fingers.
func Two() Landmarks { return Pose(false, true, true, false, false) }

// Three returns a hand showing index, middle and ring fingers.
func Three() Landmarks { return Pose(false, true, true, true, false) }

// OpenPalm returns a fully open hand.
func OpenPalm() Landmarks { return Pose(true, true, true, true, true) }

package gesture

import (
	"testing"

	"github.com/ayusman/mudra/internal/hand"
)

// expectedLabel restates the precedence table independently of the rule list.
func expectedLabel(f Fingers) Label {
	switch {
	case f.Index && f.Middle && f.Ring && f.Pinky:
		return Love
	case f.Index && f.Middle && f.Ring:
		return Three
	case f.Thumb && f.Index && f.Middle && !f.Ring && !f.Pinky:
		return Three
	case f.Index && f.Middle && !f.Ring && !f.Pinky:
		return Two
	case f.Thumb && f.Index && !f.Middle && !f.Ring && !f.Pinky:
		return Two
	case f.Index && !f.Middle && !f.Ring && !f.Pinky:
		return One
	}
	return Reset
}

func fingersFromBits(bits int) Fingers {
	return Fingers{
		Thumb:  bits&1 != 0,
		Index:  bits&2 != 0,
		Middle: bits&4 != 0,
		Ring:   bits&8 != 0,
		Pinky:  bits&16 != 0,
	}
}

func TestClassifyFingers_Total(t *testing.T) {
	seen := make(map[Label]int)
	for bits := 0; bits < 32; bits++ {
		f := fingersFromBits(bits)

		matched := 0
		for _, r := range rules {
			if r.match(f) {
				matched++
			}
		}

		got := ClassifyFingers(f)
		if !got.Valid() {
			t.Fatalf("%+v: invalid label %v", f, got)
		}
		if want := expectedLabel(f); got != want {
			t.Errorf("%+v: got %v, want %v (rules matched: %d)", f, got, want, matched)
		}
		seen[got]++
	}

	for _, l := range Labels() {
		if seen[l] == 0 {
			t.Errorf("label %v unreachable", l)
		}
	}
}

func TestClassifyFingers_Examples(t *testing.T) {
	tests := []struct {
		name string
		f    Fingers
		want Label
	}{
		{"four fingers open", Fingers{Index: true, Middle: true, Ring: true, Pinky: true}, Love},
		{"open palm", Fingers{Thumb: true, Index: true, Middle: true, Ring: true, Pinky: true}, Love},
		{"index only", Fingers{Index: true}, One},
		{"index and middle", Fingers{Index: true, Middle: true}, Two},
		{"thumb and index", Fingers{Thumb: true, Index: true}, Two},
		{"thumb index middle counts three", Fingers{Thumb: true, Index: true, Middle: true}, Three},
		{"index middle ring", Fingers{Index: true, Middle: true, Ring: true}, Three},
		{"index middle ring with thumb", Fingers{Thumb: true, Index: true, Middle: true, Ring: true}, Three},
		{"fist", Fingers{}, Reset},
		{"thumb only", Fingers{Thumb: true}, Reset},
		{"pinky only", Fingers{Pinky: true}, Reset},
		{"middle and ring", Fingers{Middle: true, Ring: true}, Reset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyFingers(tt.f); got != tt.want {
				t.Errorf("ClassifyFingers(%+v) = %v, want %v", tt.f, got, tt.want)
			}
		})
	}
}

func TestClassify_Landmarks(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name string
		pose hand.Landmarks
		want Label
	}{
		{"fist", hand.Fist(), Reset},
		{"one", hand.One(), One},
		{"two", hand.Two(), Two},
		{"three", hand.Three(), Three},
		{"open palm", hand.OpenPalm(), Love},
		{"love without thumb", hand.Pose(false, true, true, true, true), Love},
		{"european two", hand.Pose(true, true, false, false, false), Two},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := tt.pose
			if got := Classify(&h, th); got != tt.want {
				t.Errorf("Classify() = %v, want %v (fingers %+v)", got, tt.want, ReadFingers(&h, th))
			}
		})
	}

	t.Run("no hand is reset", func(t *testing.T) {
		if got := Classify(nil, th); got != Reset {
			t.Errorf("Classify(nil) = %v, want RESET", got)
		}
	})

	t.Run("wrong landmark count is reset", func(t *testing.T) {
		h := hand.FromPoints(make([]hand.Point3D, 20))
		if got := Classify(h, th); got != Reset {
			t.Errorf("Classify(short) = %v, want RESET", got)
		}
	})

	t.Run("classification is scale invariant", func(t *testing.T) {
		h := hand.Two()
		for i := range h.Points {
			h.Points[i].X *= 0.3
			h.Points[i].Y *= 0.3
		}
		if got := Classify(&h, th); got != Two {
			t.Errorf("scaled hand = %v, want TWO", got)
		}
	})
}

func TestReadFingers_Hysteresis(t *testing.T) {
	// Tip just beyond the PIP: open with no margin, closed with the default.
	h := hand.One()
	h.Points[hand.IndexTip] = hand.Point3D{X: 0.56, Y: 0.54}

	loose := ReadFingers(&h, Thresholds{FingerOpen: 1.0, ThumbOpen: 0.6})
	if !loose.Index {
		t.Error("index should be open without hysteresis")
	}

	strict := ReadFingers(&h, DefaultThresholds())
	if strict.Index {
		t.Error("index should stay closed inside the hysteresis margin")
	}
}

func TestLabel_String(t *testing.T) {
	for _, l := range Labels() {
		parsed, err := ParseLabel(l.String())
		if err != nil {
			t.Fatalf("ParseLabel(%q) error = %v", l.String(), err)
		}
		if parsed != l {
			t.Errorf("ParseLabel(%q) = %v", l.String(), parsed)
		}
	}

	if _, err := ParseLabel("wave"); err == nil {
		t.Error("expected error for unknown label")
	}
	if Label(42).Valid() {
		t.Error("Label(42) should be invalid")
	}
	if Label(42).String() != "Label(42)" {
		t.Errorf("unexpected String() for invalid label: %s", Label(42).String())
	}
}

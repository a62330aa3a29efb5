package gesture

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// feed pushes labels with a hand present and records what was published.
func feed(d *Debouncer, labels ...Label) []State {
	var emitted []State
	for _, l := range labels {
		if s, ok := d.Update(l, true); ok {
			emitted = append(emitted, s)
		}
	}
	return emitted
}

func TestDebouncer_Flicker(t *testing.T) {
	d := NewDebouncer(DefaultWindow, DefaultMajority)

	got := feed(d, One, One)
	want := []State{{Gesture: One, IsTracking: true}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("warm-up emissions mismatch (-want +got):\n%s", diff)
	}

	// A single TWO never reaches two of three.
	if got := feed(d, Two, One, One, One); len(got) != 0 {
		t.Errorf("flicker emitted %v", got)
	}
	if cur := d.Current(); cur.Gesture != One {
		t.Errorf("Current() = %v, want ONE", cur.Gesture)
	}
}

func TestDebouncer_SingleEmission(t *testing.T) {
	d := NewDebouncer(DefaultWindow, DefaultMajority)
	feed(d, One, One, One)

	// First TWO is a minority; second makes it a majority and publishes once.
	if _, ok := d.Update(Two, true); ok {
		t.Fatal("one frame of TWO must not publish")
	}
	s, ok := d.Update(Two, true)
	if !ok || s.Gesture != Two {
		t.Fatalf("second frame of TWO: got %+v, %v", s, ok)
	}
	for i := 0; i < 5; i++ {
		if s, ok := d.Update(Two, true); ok {
			t.Fatalf("repeat frame %d re-published %+v", i, s)
		}
	}
}

func TestDebouncer_Sequences(t *testing.T) {
	tests := []struct {
		name   string
		labels []Label
		want   []Label
	}{
		{"initial reset is silent", []Label{Reset, Reset, Reset}, nil},
		{"first frame alone never publishes", []Label{Love}, nil},
		{"two frames publish", []Label{Love, Love}, []Label{Love}},
		{"alternating never settles", []Label{One, Two, Three, One, Two, Three}, nil},
		{"back to reset", []Label{Three, Three, Reset, Reset}, []Label{Three, Reset}},
		{"interrupted run still wins", []Label{One, Two, One}, []Label{One}},
		{"out of range label counts as reset", []Label{One, One, Label(200), Label(200)}, []Label{One, Reset}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDebouncer(DefaultWindow, DefaultMajority)
			var got []Label
			for _, s := range feed(d, tt.labels...) {
				got = append(got, s.Gesture)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("published labels mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDebouncer_TracksHandPresence(t *testing.T) {
	d := NewDebouncer(DefaultWindow, DefaultMajority)
	feed(d, Two, Two)

	d.Update(Reset, false)
	s, ok := d.Update(Reset, false)
	if !ok {
		t.Fatal("expected RESET to publish")
	}
	if s.IsTracking {
		t.Error("IsTracking should follow the hand-present flag of the publishing frame")
	}
}

func TestDebouncer_TieKeepsFirstSeen(t *testing.T) {
	d := NewDebouncer(4, DefaultMajority)
	feed(d, One, Two, Two, One)

	l, count := d.mode()
	if l != One || count != 2 {
		t.Errorf("mode() = %v x%d, want ONE x2", l, count)
	}
	// 2 of 4 is not a strict majority.
	if cur := d.Current(); cur.Gesture != Reset {
		t.Errorf("Current() = %v, want RESET", cur.Gesture)
	}
}

func TestDebouncer_Tunable(t *testing.T) {
	t.Run("larger window needs more agreement", func(t *testing.T) {
		d := NewDebouncer(5, DefaultMajority)
		if got := feed(d, Love, Love); len(got) != 0 {
			t.Errorf("2 of 5 published %v", got)
		}
		if got := feed(d, Love); len(got) != 1 {
			t.Errorf("3 of 5 should publish, got %v", got)
		}
	})

	t.Run("invalid arguments use defaults", func(t *testing.T) {
		d := NewDebouncer(0, 2)
		if d.Window() != DefaultWindow {
			t.Errorf("Window() = %d, want %d", d.Window(), DefaultWindow)
		}
		if d.majority != DefaultMajority {
			t.Errorf("majority = %f, want %f", d.majority, DefaultMajority)
		}
	})
}

func TestDebouncer_Reset(t *testing.T) {
	d := NewDebouncer(DefaultWindow, DefaultMajority)
	feed(d, Three, Three)

	d.Reset()
	if cur := d.Current(); cur != (State{Gesture: Reset}) {
		t.Errorf("Current() after Reset = %+v", cur)
	}
	if got := feed(d, Three, Three); len(got) != 1 {
		t.Errorf("expected THREE to publish again after Reset, got %v", got)
	}
}

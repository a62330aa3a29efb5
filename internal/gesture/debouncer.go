package gesture

import "sync/atomic"

// Default debounce parameters.
const (
	DefaultWindow   = 3
	DefaultMajority = 0.5
)

// Debouncer suppresses single-frame misclassifications. It keeps the last
// Window raw labels and publishes a new State only when one label holds a
// strict majority of the window and differs from the last published label.
//
// Update and Reset must be called from a single goroutine. Current may be called from
// any goroutine.
type Debouncer struct {
	window   []Label
	next     int
	filled   int
	majority float64
	emitted  Label

	current atomic.Pointer[State]
}

// NewDebouncer creates a Debouncer over a window of the given size. A label
// must appear more than majority*window times to be published. Non-positive
// arguments fall back to the defaults.
func NewDebouncer(window int, majority float64) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	if majority <= 0 || majority >= 1 {
		majority = DefaultMajority
	}
	d := &Debouncer{
		window:   make([]Label, window),
		majority: majority,
	}
	d.current.Store(&State{Gesture: Reset})
	return d
}

// Update pushes one raw label. It returns the published state and true when
// this frame changed it, otherwise the held state and false.
func (d *Debouncer) Update(raw Label, handPresent bool) (State, bool) {
	d.window[d.next] = raw
	d.next = (d.next + 1) % len(d.window)
	if d.filled < len(d.window) {
		d.filled++
	}

	modal, count := d.mode()
	if float64(count) <= d.majority*float64(len(d.window)) || modal == d.emitted {
		return *d.current.Load(), false
	}

	d.emitted = modal
	s := State{Gesture: modal, IsTracking: handPresent}
	d.current.Store(&s)
	return s, true
}

// mode returns the most frequent label in the window. Labels are visited
// oldest first and a later label must beat, not tie, the best count.
func (d *Debouncer) mode() (Label, int) {
	var counts [NumLabels]int
	var order [NumLabels]Label
	distinct := 0

	start := (d.next - d.filled + len(d.window)) % len(d.window)
	for k := 0; k < d.filled; k++ {
		l := d.window[(start+k)%len(d.window)]
		if !l.Valid() {
			l = Reset
		}
		if counts[l] == 0 {
			order[distinct] = l
			distinct++
		}
		counts[l]++
	}

	best, bestCount := Reset, 0
	for _, l := range order[:distinct] {
		if counts[l] > bestCount {
			best, bestCount = l, counts[l]
		}
	}
	return best, bestCount
}

// Current returns the last published state.
func (d *Debouncer) Current() State {
	return *d.current.Load()
}

// Reset clears the window and publishes the initial Reset state.
func (d *Debouncer) Reset() {
	for i := range d.window {
		d.window[i] = Reset
	}
	d.next, d.filled = 0, 0
	d.emitted = Reset
	d.current.Store(&State{Gesture: Reset})
}

// Window returns the window capacity.
func (d *Debouncer) Window() int {
	return len(d.window)
}

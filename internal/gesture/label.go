// Package gesture turns hand landmarks into a stable, discrete gesture signal.
package gesture

import (
	"fmt"
	"strings"
)

// Label is a discrete hand pose classification.
type Label uint8

const (
	// Reset is no hand, a closed hand, or any pose that is not recognized.
	Reset Label = iota
	// One is the index finger raised.
	One
	// Two is index and middle raised (or thumb and index).
	Two
	// Three is index, middle and ring raised (or thumb, index and middle).
	Three
	// Love is all four fingers open.
	Love

	// NumLabels is the number of labels.
	NumLabels = int(Love) + 1
)

var labelNames = [NumLabels]string{"RESET", "ONE", "TWO", "THREE", "LOVE"}

// Labels returns every label in declaration order.
func Labels() []Label {
	return []Label{Reset, One, Two, Three, Love}
}

// Valid reports whether l is one of the declared labels.
func (l Label) Valid() bool {
	return int(l) < NumLabels
}

// String implements fmt.Stringer.
func (l Label) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Label(%d)", uint8(l))
	}
	return labelNames[l]
}

// ParseLabel parses a label name case-insensitively.
func ParseLabel(s string) (Label, error) {
	for i, name := range labelNames {
		if strings.EqualFold(s, name) {
			return Label(i), nil
		}
	}
	return Reset, fmt.Errorf("unknown gesture %q", s)
}

// State is the debounced gesture published to the rest of the pipeline.
type State struct {
	Gesture    Label
	IsTracking bool
}

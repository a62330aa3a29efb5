// Package morph animates the live particle field toward a target field.
package morph

import (
	"math"

	"github.com/ayusman/mudra/internal/field"
	"github.com/ayusman/mudra/internal/gesture"
)

// Config holds the morph rates and idle motion.
type Config struct {
	// BaseRate is the fraction of the remaining distance covered per step.
	BaseRate float64
	// CelebrateRate replaces BaseRate while the gesture is Love.
	CelebrateRate float64
	// IdleAmplitude is the per-axis reach of the idle breathing motion.
	IdleAmplitude float64
}

// DefaultConfig returns the tuned morph settings.
func DefaultConfig() Config {
	return Config{
		BaseRate:      0.1,
		CelebrateRate: 0.2,
		IdleAmplitude: 0.5,
	}
}

// Idle breathing frequencies, radians per second of elapsed time and per
// particle index.
const (
	idleFreqX  = 0.5
	idleFreqY  = 0.3
	idlePhaseY = 0.5
)

// Field is the live particle state, laid out like field.Target.
type Field struct {
	Positions []float32
	Colors    []float32
}

// Len returns the particle count.
func (f *Field) Len() int {
	return len(f.Positions) / 3
}

// Engine owns the live field and steps it toward a target each frame.
// An Engine is not safe for concurrent use; hand copies to other goroutines
// with Snapshot.
type Engine struct {
	config Config
	live   Field
}

// NewEngine starts the live field as a copy of initial.
func NewEngine(config Config, initial *field.Target) *Engine {
	return &Engine{
		config: config,
		live: Field{
			Positions: append([]float32(nil), initial.Positions...),
			Colors:    append([]float32(nil), initial.Colors...),
		},
	}
}

// Rate returns the approach rate used for gesture g.
func (e *Engine) Rate(g gesture.Label) float64 {
	if g == gesture.Love {
		return e.config.CelebrateRate
	}
	return e.config.BaseRate
}

// IdleOffset returns the breathing offset of particle i at elapsed seconds.
func (e *Engine) IdleOffset(i int, elapsed float64) (dx, dy float64) {
	a := e.config.IdleAmplitude
	fi := float64(i)
	return math.Sin(elapsed*idleFreqX+fi) * a, math.Cos(elapsed*idleFreqY+fi*idlePhaseY) * a
}

// Step moves every particle a fraction of the way to target: an exponential
// approach that never overshoots. Under Reset the target positions breathe
// around the cloud. A target whose size does not match the live field is
// skipped.
func (e *Engine) Step(target *field.Target, g gesture.Label, elapsed float64) {
	if target == nil || len(target.Positions) != len(e.live.Positions) || len(target.Colors) != len(e.live.Colors) {
		return
	}

	rate := float32(e.Rate(g))
	idle := g == gesture.Reset || !g.Valid()

	pos, tp := e.live.Positions, target.Positions
	for i := 0; i < len(pos)/3; i++ {
		tx, ty, tz := tp[3*i], tp[3*i+1], tp[3*i+2]
		if idle {
			dx, dy := e.IdleOffset(i, elapsed)
			tx += float32(dx)
			ty += float32(dy)
		}
		pos[3*i] += (tx - pos[3*i]) * rate
		pos[3*i+1] += (ty - pos[3*i+1]) * rate
		pos[3*i+2] += (tz - pos[3*i+2]) * rate
	}

	col, tc := e.live.Colors, target.Colors
	for k := range col {
		col[k] += (tc[k] - col[k]) * rate
	}
}

// Field returns the live field. Callers must not modify it and must not
// read it concurrently with Step.
func (e *Engine) Field() *Field {
	return &e.live
}

// Snapshot copies the live field into dst, reusing its buffers, and
// returns it.
func (e *Engine) Snapshot(dst *Field) *Field {
	if dst == nil {
		dst = &Field{}
	}
	dst.Positions = append(dst.Positions[:0], e.live.Positions...)
	dst.Colors = append(dst.Colors[:0], e.live.Colors...)
	return dst
}

// Package config holds the runtime tunables of the particle pipeline.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/ayusman/mudra/internal/field"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/morph"
	"github.com/ayusman/mudra/internal/raster"
)

// ErrInvalid is returned for out-of-range or unparsable tunables.
var ErrInvalid = errors.New("invalid tunable")

// Rasterizer names.
const (
	RasterTrueType = "truetype"
	RasterHershey  = "hershey"
)

// Tunables collects every adjustable constant of the pipeline.
type Tunables struct {
	Particles     int
	Window        int
	Majority      float64
	BaseRate      float64
	CelebrateRate float64
	FingerOpen    float64
	ThumbOpen     float64
	CloudRadius   float64
	WorldWidth    float64
	IdleAmplitude float64

	RenderFPS    int
	TrackFPS     int
	RasterWidth  int
	RasterHeight int
	FontSize     float64
	Seed         int
	Rasterizer   string
}

// Defaults returns the tuned defaults.
func Defaults() Tunables {
	f := field.DefaultConfig()
	m := morph.DefaultConfig()
	th := gesture.DefaultThresholds()
	r := raster.DefaultConfig()

	return Tunables{
		Particles:     f.Particles,
		Window:        gesture.DefaultWindow,
		Majority:      gesture.DefaultMajority,
		BaseRate:      m.BaseRate,
		CelebrateRate: m.CelebrateRate,
		FingerOpen:    th.FingerOpen,
		ThumbOpen:     th.ThumbOpen,
		CloudRadius:   f.CloudRadius,
		WorldWidth:    f.WorldWidth,
		IdleAmplitude: m.IdleAmplitude,
		RenderFPS:     60,
		TrackFPS:      15,
		RasterWidth:   r.Width,
		RasterHeight:  r.Height,
		FontSize:      r.FontSize,
		Seed:          int(f.Seed),
		Rasterizer:    RasterTrueType,
	}
}

type intKey struct {
	name     string
	ptr      func(t *Tunables) *int
	min, max int
}

type floatKey struct {
	name     string
	ptr      func(t *Tunables) *float64
	min, max float64
	openMin  bool
}

var intKeys = []intKey{
	{"particles", func(t *Tunables) *int { return &t.Particles }, 1, 1 << 20},
	{"window", func(t *Tunables) *int { return &t.Window }, 1, 60},
	{"render_fps", func(t *Tunables) *int { return &t.RenderFPS }, 1, 240},
	{"track_fps", func(t *Tunables) *int { return &t.TrackFPS }, 1, 120},
	{"raster_width", func(t *Tunables) *int { return &t.RasterWidth }, 16, 4096},
	{"raster_height", func(t *Tunables) *int { return &t.RasterHeight }, 16, 4096},
	{"seed", func(t *Tunables) *int { return &t.Seed }, 0, 1<<31 - 1},
}

var floatKeys = []floatKey{
	{"majority", func(t *Tunables) *float64 { return &t.Majority }, 0, 0.99, true},
	{"base_rate", func(t *Tunables) *float64 { return &t.BaseRate }, 0, 1, true},
	{"celebrate_rate", func(t *Tunables) *float64 { return &t.CelebrateRate }, 0, 1, true},
	{"finger_open", func(t *Tunables) *float64 { return &t.FingerOpen }, 0, 10, true},
	{"thumb_open", func(t *Tunables) *float64 { return &t.ThumbOpen }, 0, 10, true},
	{"cloud_radius", func(t *Tunables) *float64 { return &t.CloudRadius }, 0, 1000, true},
	{"world_width", func(t *Tunables) *float64 { return &t.WorldWidth }, 0, 1000, true},
	{"idle_amplitude", func(t *Tunables) *float64 { return &t.IdleAmplitude }, 0, 100, false},
	{"font_size", func(t *Tunables) *float64 { return &t.FontSize }, 0, 1000, true},
}

// Keys returns every settings key Apply understands, sorted.
func Keys() []string {
	keys := []string{"rasterizer"}
	for _, k := range intKeys {
		keys = append(keys, k.name)
	}
	for _, k := range floatKeys {
		keys = append(keys, k.name)
	}
	sort.Strings(keys)
	return keys
}

// Apply overlays settings onto t. Unknown keys are ignored so older
// databases keep working. On error t is left unchanged.
func (t *Tunables) Apply(settings map[string]string) error {
	next := *t

	for _, k := range intKeys {
		s, ok := settings[k.name]
		if !ok {
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalid, k.name, s)
		}
		*k.ptr(&next) = v
	}
	for _, k := range floatKeys {
		s, ok := settings[k.name]
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalid, k.name, s)
		}
		*k.ptr(&next) = v
	}
	if s, ok := settings["rasterizer"]; ok {
		next.Rasterizer = s
	}

	if err := next.Validate(); err != nil {
		return err
	}
	*t = next
	return nil
}

// Validate checks every tunable against its range.
func (t Tunables) Validate() error {
	for _, k := range intKeys {
		v := *k.ptr(&t)
		if v < k.min || v > k.max {
			return fmt.Errorf("%w: %s=%d outside [%d, %d]", ErrInvalid, k.name, v, k.min, k.max)
		}
	}
	for _, k := range floatKeys {
		v := *k.ptr(&t)
		low := v < k.min || (k.openMin && v == k.min)
		if low || v > k.max {
			return fmt.Errorf("%w: %s=%g outside (%g, %g]", ErrInvalid, k.name, v, k.min, k.max)
		}
	}
	switch t.Rasterizer {
	case RasterTrueType, RasterHershey:
	default:
		return fmt.Errorf("%w: rasterizer=%q", ErrInvalid, t.Rasterizer)
	}
	return nil
}

// Settings renders t as a settings map, the inverse of Apply.
func (t Tunables) Settings() map[string]string {
	out := map[string]string{"rasterizer": t.Rasterizer}
	for _, k := range intKeys {
		out[k.name] = strconv.Itoa(*k.ptr(&t))
	}
	for _, k := range floatKeys {
		out[k.name] = strconv.FormatFloat(*k.ptr(&t), 'g', -1, 64)
	}
	return out
}

// Thresholds returns the classifier thresholds.
func (t Tunables) Thresholds() gesture.Thresholds {
	return gesture.Thresholds{FingerOpen: t.FingerOpen, ThumbOpen: t.ThumbOpen}
}

// Field returns the target generator configuration.
func (t Tunables) Field() field.Config {
	c := field.DefaultConfig()
	c.Particles = t.Particles
	c.CloudRadius = t.CloudRadius
	c.WorldWidth = t.WorldWidth
	c.Seed = uint64(t.Seed)
	return c
}

// Morph returns the morph engine configuration.
func (t Tunables) Morph() morph.Config {
	return morph.Config{
		BaseRate:      t.BaseRate,
		CelebrateRate: t.CelebrateRate,
		IdleAmplitude: t.IdleAmplitude,
	}
}

// Raster returns the rasterizer configuration.
func (t Tunables) Raster() raster.Config {
	return raster.Config{
		Width:    t.RasterWidth,
		Height:   t.RasterHeight,
		FontSize: t.FontSize,
	}
}

// NewRasterizer builds the configured rasterizer.
func (t Tunables) NewRasterizer() (field.Rasterizer, error) {
	if t.Rasterizer == RasterHershey {
		r, err := raster.NewHershey(t.Raster())
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	r, err := raster.NewTrueType(t.Raster())
	if err != nil {
		return nil, err
	}
	return r, nil
}

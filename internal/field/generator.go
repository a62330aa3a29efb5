package field

import (
	"log"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/ayusman/mudra/internal/gesture"
)

// Config controls target generation.
type Config struct {
	// Particles is the number of particle slots in every target.
	Particles int
	// CloudRadius is the radius of the idle sphere in world units.
	CloudRadius float64
	// CloudColor is the color of every idle particle.
	CloudColor Color
	// WorldWidth is the world-space width the raster is scaled to.
	WorldWidth float64
	// Seed makes sampling reproducible.
	Seed uint64
}

// DefaultConfig returns the default generation settings.
func DefaultConfig() Config {
	return Config{
		Particles:   3000,
		CloudRadius: 10,
		CloudColor:  CloudGlow,
		WorldWidth:  20,
		Seed:        1,
	}
}

// Generator builds and memoizes one Target per gesture. Targets are built
// on first request and never change afterwards, so TargetFor is safe to
// call from any goroutine. Each gesture samples from its own seeded source,
// so a target does not depend on the order gestures are first requested in.
type Generator struct {
	config Config
	raster Rasterizer
	shapes map[gesture.Label][]Run

	entries [gesture.NumLabels]struct {
		once   sync.Once
		target *Target
	}
}

// NewGenerator creates a Generator. r may be nil, in which case every
// gesture uses the cloud.
func NewGenerator(config Config, r Rasterizer) *Generator {
	if config.Particles <= 0 {
		config.Particles = DefaultConfig().Particles
	}
	return &Generator{
		config: config,
		raster: r,
		shapes: Shapes(),
	}
}

// Particles returns the particle count of every target.
func (g *Generator) Particles() int {
	return g.config.Particles
}

// TargetFor returns the target for l. Unknown labels get the Reset target.
func (g *Generator) TargetFor(l gesture.Label) *Target {
	if !l.Valid() {
		l = gesture.Reset
	}
	e := &g.entries[l]
	e.once.Do(func() {
		e.target = g.build(l)
	})
	return e.target
}

// Warm builds every target up front.
func (g *Generator) Warm() {
	for _, l := range gesture.Labels() {
		g.TargetFor(l)
	}
}

func (g *Generator) build(l gesture.Label) *Target {
	rng := labelRand(g.config.Seed, l)

	runs, ok := g.shapes[l]
	if !ok || g.raster == nil {
		return g.cloud(rng)
	}

	r, err := g.raster.Rasterize(runs)
	if err != nil {
		log.Printf("Rasterize %s failed, using cloud: %v", l, err)
		return g.cloud(rng)
	}
	if r == nil || len(r.Lit) == 0 || r.Width <= 0 {
		log.Printf("Rasterize %s lit no pixels, using cloud", l)
		return g.cloud(rng)
	}
	return sampleRaster(rng, g.config.Particles, r, g.config.WorldWidth)
}

func (g *Generator) cloud(rng *rand.Rand) *Target {
	return sampleCloud(rng, g.config.Particles, g.config.CloudRadius, g.config.CloudColor)
}

// labelRand returns the sampling source for label l under seed.
func labelRand(seed uint64, l gesture.Label) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^(uint64(l)+1)*0x9e3779b97f4a7c15))
}

// sampleCloud places n points uniformly inside a solid sphere. Taking the
// cube root of the radius sample keeps density constant with volume.
func sampleCloud(rng *rand.Rand, n int, radius float64, c Color) *Target {
	t := NewTarget(n)
	for i := 0; i < n; i++ {
		r := radius * math.Cbrt(rng.Float64())
		theta := math.Acos(2*rng.Float64() - 1)
		phi := 2 * math.Pi * rng.Float64()

		sinTheta := math.Sin(theta)
		t.set(i,
			float32(r*sinTheta*math.Cos(phi)),
			float32(r*sinTheta*math.Sin(phi)),
			float32(r*math.Cos(theta)),
			c,
		)
	}
	return t
}

// sampleRaster backs each of n slots with a random lit pixel, drawn with
// replacement, mapped into world space centered on the origin with Y up.
func sampleRaster(rng *rand.Rand, n int, r *Raster, worldWidth float64) *Target {
	scale := worldWidth / float64(r.Width)
	halfW := float64(r.Width) / 2
	halfH := float64(r.Height) / 2

	t := NewTarget(n)
	for i := 0; i < n; i++ {
		p := r.Lit[rng.IntN(len(r.Lit))]
		t.set(i,
			float32((float64(p.X)-halfW)*scale),
			float32(-(float64(p.Y)-halfH)*scale),
			0,
			p.Color,
		)
	}
	return t
}

package field

import (
	"errors"
	"image"
	"math"
	"math/rand/v2"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/mudra/internal/gesture"
)

// fakeRaster lights a fixed set of pixels per run, one column per run.
type fakeRaster struct {
	width, height int
	err           error
	empty         bool
	calls         int
	mu            sync.Mutex
}

func (f *fakeRaster) Rasterize(runs []Run) (*Raster, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	r := &Raster{Width: f.width, Height: f.height}
	if f.empty {
		return r, nil
	}
	for i, run := range runs {
		for y := 10; y < 20; y++ {
			r.Lit = append(r.Lit, Pixel{X: 10 * (i + 1), Y: y, Color: run.Color})
		}
	}
	return r, nil
}

func testConfig(n int) Config {
	cfg := DefaultConfig()
	cfg.Particles = n
	cfg.Seed = 7
	return cfg
}

func TestGenerator_LengthInvariant(t *testing.T) {
	g := NewGenerator(testConfig(500), &fakeRaster{width: 200, height: 100})

	for _, l := range gesture.Labels() {
		target := g.TargetFor(l)
		require.Len(t, target.Positions, 3*500, "positions for %v", l)
		require.Len(t, target.Colors, 3*500, "colors for %v", l)
		require.Equal(t, 500, target.Len())
	}
}

func TestGenerator_Memoized(t *testing.T) {
	fr := &fakeRaster{width: 200, height: 100}
	g := NewGenerator(testConfig(100), fr)

	first := g.TargetFor(gesture.Two)
	second := g.TargetFor(gesture.Two)
	require.Same(t, first, second)
	require.Equal(t, 1, fr.calls)

	t.Run("unknown label shares the reset target", func(t *testing.T) {
		require.Same(t, g.TargetFor(gesture.Reset), g.TargetFor(gesture.Label(99)))
	})

	t.Run("concurrent first access builds once", func(t *testing.T) {
		g := NewGenerator(testConfig(100), &fakeRaster{width: 200, height: 100})
		var wg sync.WaitGroup
		results := make([]*Target, 16)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = g.TargetFor(gesture.Love)
			}(i)
		}
		wg.Wait()
		for _, r := range results {
			require.Same(t, results[0], r)
		}
	})
}

func TestGenerator_OrderIndependent(t *testing.T) {
	forward := NewGenerator(testConfig(300), &fakeRaster{width: 200, height: 100})
	backward := NewGenerator(testConfig(300), &fakeRaster{width: 200, height: 100})

	labels := gesture.Labels()
	for _, l := range labels {
		forward.TargetFor(l)
	}
	for i := len(labels) - 1; i >= 0; i-- {
		backward.TargetFor(labels[i])
	}

	for _, l := range labels {
		require.Equal(t, forward.TargetFor(l), backward.TargetFor(l), "target for %v", l)
	}

	t.Run("seed changes the sample", func(t *testing.T) {
		cfg := testConfig(300)
		cfg.Seed = 8
		other := NewGenerator(cfg, &fakeRaster{width: 200, height: 100})
		require.NotEqual(t, forward.TargetFor(gesture.Reset), other.TargetFor(gesture.Reset))
	})
}

func TestGenerator_TextMapping(t *testing.T) {
	g := NewGenerator(testConfig(300), &fakeRaster{width: 200, height: 100})
	target := g.TargetFor(gesture.Love)

	// Scale is 20/200 world units per pixel, origin at the raster center.
	validX := map[float32]Color{
		float32((10 - 100) * 0.1): White,
		float32((20 - 100) * 0.1): HeartRed,
		float32((30 - 100) * 0.1): White,
	}
	seen := make(map[float32]bool)
	for i := 0; i < target.Len(); i++ {
		x, y, z := target.Positions[3*i], target.Positions[3*i+1], target.Positions[3*i+2]
		want, ok := validX[x]
		require.True(t, ok, "slot %d: unexpected x %f", i, x)
		seen[x] = true

		// Raster rows 10..19 sit above the center, so world Y is positive.
		require.InDelta(t, 3.5, y, 0.51, "slot %d y", i)
		require.Zero(t, z)
		require.Equal(t, want, Color{target.Colors[3*i], target.Colors[3*i+1], target.Colors[3*i+2]})
	}
	require.Len(t, seen, 3, "every lit run should back some particle")
}

func TestGenerator_FallsBackToCloud(t *testing.T) {
	tests := []struct {
		name   string
		raster Rasterizer
	}{
		{"empty raster", &fakeRaster{width: 200, height: 100, empty: true}},
		{"rasterizer error", &fakeRaster{err: errors.New("no font")}},
		{"no rasterizer", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(200)
			g := NewGenerator(cfg, tt.raster)
			target := g.TargetFor(gesture.Three)
			require.Equal(t, 200, target.Len())
			assertCloud(t, target, cfg)
		})
	}
}

func assertCloud(t *testing.T, target *Target, cfg Config) {
	t.Helper()
	for i := 0; i < target.Len(); i++ {
		x := float64(target.Positions[3*i])
		y := float64(target.Positions[3*i+1])
		z := float64(target.Positions[3*i+2])
		require.LessOrEqual(t, math.Sqrt(x*x+y*y+z*z), cfg.CloudRadius+1e-4)
		require.Equal(t, cfg.CloudColor, Color{target.Colors[3*i], target.Colors[3*i+1], target.Colors[3*i+2]})
	}
}

func TestSampleCloud_Uniform(t *testing.T) {
	const (
		n      = 20000
		radius = 10.0
	)
	rng := rand.New(rand.NewPCG(42, 1024))
	target := sampleCloud(rng, n, radius, CloudGlow)

	// r³/R³ of a volume-uniform sample is uniform on [0,1].
	u := make([]float64, n)
	zs := make([]float64, n)
	for i := 0; i < n; i++ {
		x := float64(target.Positions[3*i])
		y := float64(target.Positions[3*i+1])
		z := float64(target.Positions[3*i+2])
		r := math.Sqrt(x*x + y*y + z*z)
		require.LessOrEqual(t, r, radius+1e-4)
		u[i] = math.Pow(r/radius, 3)
		zs[i] = z
	}

	require.InDelta(t, 0.5, stat.Mean(u, nil), 0.01)
	require.InDelta(t, 1.0/12, stat.Variance(u, nil), 0.005)
	require.InDelta(t, 0, stat.Mean(zs, nil), 0.15, "cloud should not lean along z")

	// Kolmogorov-Smirnov distance against U(0,1).
	sort.Float64s(u)
	var d float64
	for i, v := range u {
		lo := math.Abs(v - float64(i)/n)
		hi := math.Abs(float64(i+1)/n - v)
		d = math.Max(d, math.Max(lo, hi))
	}
	require.Less(t, d, 1.63/math.Sqrt(n), "KS distance too large")
}

func TestCollectLit(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 3))
	img.Pix[1*img.Stride+2] = 31 // just above threshold
	img.Pix[2*img.Stride+0] = 30 // at threshold, dark

	lit := CollectLit(nil, img, HeartRed)
	require.Equal(t, []Pixel{{X: 2, Y: 1, Color: HeartRed}}, lit)
}

package effect

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/iburimskiy/cursor-smudge/internal/config"
	"github.com/iburimskiy/cursor-smudge/internal/vmath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// quietConfig disables every random spawner so tests control the population.
func quietConfig() config.EffectsConfig {
	cfg := config.NewDefaultConfig().Effects
	cfg.Small.Chance = 0
	cfg.Large.Chance = 0
	cfg.Special.Interval = config.DurationRange{Min: time.Hour, Max: time.Hour}
	cfg.Blur.Count = 0
	return cfg
}

func newQuiet(t *testing.T) *Simulator {
	t.Helper()
	return New(quietConfig(), 1024, 768, NewRand(7))
}

func TestTrailDecay(t *testing.T) {
	sim := newQuiet(t)
	sim.Step(epoch)
	sim.AddTrail(vmath.V(100, 100), vmath.V(3, 4), epoch)

	sim.Step(epoch.Add(500 * time.Millisecond))
	require.Len(t, sim.Trails(), 1)
	assert.InDelta(t, 0.25, sim.Trails()[0].Intensity, 1e-9)
	assert.Equal(t, vmath.V(100, 100), sim.Trails()[0].Pos)

	sim.Step(epoch.Add(667 * time.Millisecond))
	assert.Empty(t, sim.Trails())
}

func TestTrailCap(t *testing.T) {
	sim := newQuiet(t)
	for i := range 40 {
		sim.AddTrail(vmath.V(float64(i), 0), vmath.Vec2{}, epoch)
	}
	require.Len(t, sim.Trails(), 30)
	assert.Equal(t, 10.0, sim.Trails()[0].Pos.X)
	assert.Equal(t, 39.0, sim.Trails()[29].Pos.X)
}

func TestTrailRejectsNonFinite(t *testing.T) {
	sim := newQuiet(t)
	sim.AddTrail(vmath.V(math.NaN(), 1), vmath.Vec2{}, epoch)
	sim.AddTrail(vmath.V(1, 1), vmath.V(math.Inf(1), 0), epoch)
	require.Len(t, sim.Trails(), 1)
	assert.Equal(t, vmath.Vec2{}, sim.Trails()[0].Vel)
}

func TestRenderPosLeavesStoredPosition(t *testing.T) {
	p := TrailPoint{Pos: vmath.V(200, 300), Intensity: 1}
	got := p.RenderPos(1.3, 5)
	assert.NotEqual(t, p.Pos, got)
	assert.LessOrEqual(t, math.Abs(got.X-200), 5.0)
	assert.LessOrEqual(t, math.Abs(got.Y-300), 5.0)
	assert.Equal(t, vmath.V(200, 300), p.Pos)

	p.Intensity = 0
	assert.Equal(t, p.Pos, p.RenderPos(1.3, 5))
}

func TestRippleGrowth(t *testing.T) {
	sim := newQuiet(t)
	sim.Step(epoch)
	sim.AddRipple(vmath.V(50, 50), epoch, FromTap)

	sim.Step(epoch.Add(time.Second))
	require.Len(t, sim.Ripples(), 1)
	assert.InDelta(t, 250, sim.Ripples()[0].Radius, 1e-9)
	assert.InDelta(t, 0.6, sim.Ripples()[0].Intensity, 1e-9)

	sim.Step(epoch.Add(2 * time.Second))
	require.Len(t, sim.Ripples(), 1)
	assert.Equal(t, 500.0, sim.Ripples()[0].Radius)

	sim.Step(epoch.Add(2*time.Second + time.Nanosecond))
	assert.Empty(t, sim.Ripples())
}

func TestRippleCapsPerSource(t *testing.T) {
	sim := newQuiet(t)
	for i := range 20 {
		sim.AddRipple(vmath.V(float64(i), 0), epoch, FromMove)
	}
	for i := range 7 {
		sim.AddRipple(vmath.V(float64(100+i), 0), epoch, FromTap)
	}

	var moves, taps []float64
	for _, r := range sim.Ripples() {
		if r.Source == FromTap {
			taps = append(taps, r.Origin.X)
		} else {
			moves = append(moves, r.Origin.X)
		}
	}
	assert.Len(t, moves, 15)
	assert.Equal(t, 5.0, moves[0])
	assert.Equal(t, []float64{102, 103, 104, 105, 106}, taps)
}

func TestParticleLifeBoundary(t *testing.T) {
	sim := newQuiet(t)
	sim.AddParticle(NewStraight(vmath.V(100, 100), vmath.Vec2{}, 1, 32*time.Millisecond))

	sim.Step(epoch)
	require.Len(t, sim.Particles(), 1)
	assert.Equal(t, 16*time.Millisecond, sim.Particles()[0].Life)

	sim.Step(epoch.Add(16 * time.Millisecond))
	assert.Empty(t, sim.Particles())
}

func TestOrbitalStep(t *testing.T) {
	sim := newQuiet(t)
	sim.AddParticle(NewOrbital(vmath.V(0, 0), 100, 0, 0.1, 1, time.Minute))
	sim.Step(epoch)

	require.Len(t, sim.Particles(), 1)
	p := sim.Particles()[0]
	assert.InDelta(t, 99.50, p.Pos.X, 0.005)
	assert.InDelta(t, 9.98, p.Pos.Y, 0.005)
	assert.InDelta(t, 0.1, p.Angle, 1e-12)
}

func TestOrbitalRadiusPreserved(t *testing.T) {
	sim := newQuiet(t)
	center := vmath.V(400, 300)
	sim.AddParticle(NewOrbital(center, 150, 1, -0.07, 2, time.Hour))

	now := epoch
	for range 1000 {
		sim.Step(now)
		now = now.Add(16 * time.Millisecond)
	}
	require.Len(t, sim.Particles(), 1)
	assert.InDelta(t, 150, sim.Particles()[0].Pos.Dist(center), 1e-9)
}

func TestOffscreenRemoval(t *testing.T) {
	sim := newQuiet(t)
	outward := NewStraight(vmath.V(1024+90, 10), vmath.V(20, 0), 1, time.Minute)
	special := outward
	special.Class = Special
	sim.AddParticle(outward)
	sim.AddParticle(special)

	sim.Step(epoch)
	require.Len(t, sim.Particles(), 1)
	assert.Equal(t, Special, sim.Particles()[0].Class)
}

func TestAddParticleRejectsInvalid(t *testing.T) {
	sim := newQuiet(t)
	sim.AddParticle(NewStraight(vmath.V(math.NaN(), 0), vmath.Vec2{}, 1, time.Second))
	sim.AddParticle(NewStraight(vmath.V(1, 1), vmath.Vec2{}, 0, time.Second))
	sim.AddParticle(NewStraight(vmath.V(1, 1), vmath.Vec2{}, math.Inf(1), time.Second))
	assert.Empty(t, sim.Particles())
}

func TestSmallSpawnGate(t *testing.T) {
	cfg := quietConfig()
	cfg.Small.Chance = 1
	cfg.Small.StraightChance = 1
	sim := New(cfg, 1024, 768, NewRand(3))

	sim.Step(epoch)
	first := len(sim.Particles())
	assert.GreaterOrEqual(t, first, 1)
	assert.LessOrEqual(t, first, 4)
	for _, p := range sim.Particles() {
		assert.Equal(t, Straight, p.Trajectory)
		assert.Equal(t, 1.0, p.Size)
		assert.GreaterOrEqual(t, p.MaxLife, time.Second)
		assert.Less(t, p.MaxLife, 3*time.Second)
	}

	sim.Step(epoch.Add(50 * time.Millisecond))
	assert.Len(t, sim.Particles(), first, "gate should block a spawn within 100ms")

	sim.Step(epoch.Add(150 * time.Millisecond))
	assert.Greater(t, len(sim.Particles()), first)
}

func TestLargeSpawnOrbitDirections(t *testing.T) {
	cfg := quietConfig()
	cfg.Large.Chance = 1
	cfg.Large.StraightChance = 0
	cfg.Large.OrbitRadius = config.Range{Min: 10, Max: 20}
	sim := New(cfg, 1024, 768, NewRand(11))

	var cw, ccw int
	now := epoch
	for range 200 {
		sim.Step(now)
		now = now.Add(600 * time.Millisecond)
	}
	for _, p := range sim.Particles() {
		assert.Equal(t, Orbital, p.Trajectory)
		assert.GreaterOrEqual(t, p.Size, 8.0)
		assert.Less(t, p.Size, 20.0)
		w := math.Abs(p.AngularVelocity)
		assert.GreaterOrEqual(t, w, 0.02)
		assert.Less(t, w, 0.1)
		if p.AngularVelocity > 0 {
			cw++
		} else {
			ccw++
		}
	}
	assert.Positive(t, cw)
	assert.Positive(t, ccw)
}

func TestSpecialSpawn(t *testing.T) {
	cfg := quietConfig()
	cfg.Special.Interval = config.DurationRange{}
	sim := New(cfg, 300, 400, NewRand(5))

	sim.Step(epoch)
	assert.Empty(t, sim.Particles(), "no special streak on the first tick")

	sim.Step(epoch.Add(16 * time.Millisecond))
	require.Len(t, sim.Particles(), 1)
	p := sim.Particles()[0]
	assert.Equal(t, Special, p.Class)

	// diagonal 500: 500*16/300 px per tick, lifetime 1.5-3 crossings of 300ms
	assert.InDelta(t, 500.0*16/300, p.Vel.Len(), 1e-9)
	assert.GreaterOrEqual(t, p.MaxLife, 450*time.Millisecond)
	assert.LessOrEqual(t, p.MaxLife, 900*time.Millisecond)
	assert.GreaterOrEqual(t, p.Size, 2.0)
	assert.Less(t, p.Size, 4.0)
	assert.Equal(t, 1, sim.Snapshot().Special)
}

func TestBlurRegionsStayInside(t *testing.T) {
	cfg := quietConfig()
	cfg.Blur = config.NewDefaultConfig().Effects.Blur
	cfg.Blur.TurnChance = 0.2
	sim := New(cfg, 640, 480, NewRand(9))
	require.Len(t, sim.BlurRegions(), 8)
	for i, b := range sim.BlurRegions() {
		assert.GreaterOrEqual(t, b.Pos.X, 80.0*float64(i))
		assert.Less(t, b.Pos.X, 80.0*float64(i+1))
	}

	now := epoch
	for range 5000 {
		sim.Step(now)
		now = now.Add(16 * time.Millisecond)
		for _, b := range sim.BlurRegions() {
			require.True(t, b.Pos.X >= 0 && b.Pos.X <= 640, "x out of bounds: %v", b.Pos.X)
			require.True(t, b.Pos.Y >= 0 && b.Pos.Y <= 480, "y out of bounds: %v", b.Pos.Y)
			require.True(t, b.Blur >= 0.5 && b.Blur <= 12, "blur out of range: %v", b.Blur)
			require.True(t, b.Size >= 150 && b.Size <= 550, "size out of range: %v", b.Size)
		}
	}
}

func TestDeterministicWithSeed(t *testing.T) {
	run := func() []Particle {
		cfg := config.NewDefaultConfig().Effects
		cfg.Small.Chance = 0.5
		sim := New(cfg, 800, 600, NewRand(42))
		now := epoch
		for range 300 {
			sim.Step(now)
			now = now.Add(16 * time.Millisecond)
		}
		return append([]Particle(nil), sim.Particles()...)
	}
	a, b := run(), run()
	assert.NotEmpty(t, a)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("seeded runs diverged (-first +second):\n%s", diff)
	}
}

func TestResize(t *testing.T) {
	cfg := quietConfig()
	cfg.Blur.Count = 3
	sim := New(cfg, 0, 0, NewRand(1))
	sim.Resize(900, 500)
	w, h := sim.Size()
	assert.Equal(t, 900.0, w)
	assert.Equal(t, 500.0, h)
	require.Len(t, sim.BlurRegions(), 3)
	for _, b := range sim.BlurRegions() {
		assert.LessOrEqual(t, b.Pos.X, 900.0)
		assert.LessOrEqual(t, b.Pos.Y, 500.0)
	}
}

func TestSnapshot(t *testing.T) {
	sim := newQuiet(t)
	sim.AddTrail(vmath.V(1, 1), vmath.Vec2{}, epoch)
	sim.AddRipple(vmath.V(1, 1), epoch, FromMove)
	sim.AddParticle(NewStraight(vmath.V(5, 5), vmath.Vec2{}, 1, time.Second))
	assert.Equal(t, Stats{Trails: 1, Ripples: 1, Particles: 1}, sim.Snapshot())
}

func TestFade(t *testing.T) {
	p := NewStraight(vmath.Vec2{}, vmath.Vec2{}, 1, time.Second)
	assert.Equal(t, 1.0, p.Fade())
	p.Life = time.Second / 2
	assert.InDelta(t, 0.85, p.Fade(), 1e-12)
}

package wave

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistortZeroIntensityIsIdentity(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "M0,0 L10,10", "M0,0 L10,10"},
		{"rounding", "M1.234,5.678 L-3.455,0.001", "M1.23,5.68 L-3.45,0"},
		{"trailing dot", "M10.,20 Z", "M10,20 Z"},
		{"curve", "M 100 200 C 120 180, 140 160, 160 200 z", "M 100 200 C 120 180, 140 160, 160 200 z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, at := range []float64{0, 1.7, 13} {
				assert.Equal(t, tt.want, Distort(tt.in, at, 0, 2))
			}
		})
	}
}

func TestDistortPreservesStructure(t *testing.T) {
	in := "M12.5,40 C30,-10 55.25,80 90,40 S140,0 160,40 L160,100 H0 V40 Z"
	out := Distort(in, 2.3, 3.5, 1)

	require.NotEqual(t, in, out)
	assert.Len(t, numberRe.FindAllString(out, -1), len(numberRe.FindAllString(in, -1)))
	skeleton := func(s string) string { return numberRe.ReplaceAllString(s, "#") }
	if diff := cmp.Diff(skeleton(in), skeleton(out)); diff != "" {
		t.Errorf("separators changed (-in +out):\n%s", diff)
	}
}

func TestDistortIsPure(t *testing.T) {
	in := "M0,0 L100,50 L200,0"
	first := Distort(in, 4.2, 3, 3)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Distort(in, 4.2, 3, 3))
	}
}

func TestDistortKnownDisplacement(t *testing.T) {
	// At t=0 on path 0 every sine term is zero and every cosine term is one,
	// so x moves by (0.4+0.3)*0.6 and y stays put.
	assert.Equal(t, "M0.42,0", Distort("M0,0", 0, 1, 0))
}

func TestDistortAppliesFullPulse(t *testing.T) {
	const (
		x, y, at, intensity = 150.0, 250.0, 1.3, 2.5
		idx                 = 2
	)
	ph1, ph2, ph3 := idx*0.5, idx*0.8, idx*1.2

	region := float64(idx*1000) + math.Floor(x/100)*50 + math.Floor(y/100)
	seed := region + math.Floor(at/4)*10000
	from, to := math.Sin(seed)*0.2+1, math.Sin(seed+10000)*0.2+1
	p := math.Mod(at, 4) / 4
	p = p * p * (3 - 2*p)
	factor := (from + (to-from)*p - 1) * 0.4

	waveY := math.Sin((x/200+at*0.3+ph1)*2*math.Pi)*0.5 +
		math.Sin((x/120+at*0.5+ph2)*2*math.Pi)*0.3 +
		math.Sin((x/80+at*0.7+ph3)*2*math.Pi)*0.2
	waveX := math.Cos((y/200+at*0.3*0.7+ph1)*2*math.Pi)*0.4 +
		math.Cos((y/120+at*0.5*0.7+ph2)*2*math.Pi)*0.3
	wantX := x + waveX*intensity*0.6 + x*factor*0.7
	wantY := y + waveY*intensity + y*factor

	got := tokenize(Distort("M150,250", at, intensity, idx))
	require.Len(t, got, 2)
	assert.InDelta(t, wantX, got[0].value, 0.005)
	assert.InDelta(t, wantY, got[1].value, 0.005)
	assert.Equal(t, "M148.02,247.42", Distort("M150,250", at, intensity, idx))
}

func TestDistortOverflowKeepsParity(t *testing.T) {
	huge := strings.Repeat("9", 400)
	got := Distort("M"+huge+",1 L10,20", 2.1, 3, 0)
	want := Distort("M0,1 L10,20", 2.1, 3, 0)

	require.True(t, strings.HasPrefix(got, "M"+huge+","))
	assert.Equal(t, want[strings.Index(want, ","):], got[len("M"+huge):])
}

func TestDistortPathsAreOutOfStep(t *testing.T) {
	in := "M10,20 L110,20 L210,20"
	assert.NotEqual(t, Distort(in, 1, 3, 0), Distort(in, 1, 3, 1))
}

func TestDistortAmplitudeBounds(t *testing.T) {
	var dx, dy float64
	for step := 0; step < 50; step++ {
		at := float64(step) * 0.37
		out := tokenize(Distort("M0,0 L0,0 L0,0", at, 3, 0))
		for i, tok := range out {
			if i%2 == 0 {
				dx += abs(tok.value)
			} else {
				dy += abs(tok.value)
			}
		}
	}
	assert.Greater(t, dy, 0.0)
	assert.Greater(t, dx, 0.0)
	// x is damped to 0.6 of its 0.7 wave sum, y carries the full unit sum
	assert.LessOrEqual(t, dx/150, 3*0.42+1e-9)
	assert.LessOrEqual(t, dy/150, 3*1.0+1e-9)
}

func TestDistortEdgeCases(t *testing.T) {
	assert.Equal(t, "", Distort("", 1, 3, 0))
	assert.Equal(t, "M Z", Distort("M Z", 1, 3, 0))
	assert.Equal(t, "not a path", Distort("not a path", 1, 3, 0))

	huge := "M" + strings.Repeat("9", 400) + ",1"
	out := Distort(huge, 0, 0, 0)
	assert.True(t, strings.HasPrefix(out, "M"+strings.Repeat("9", 400)+","), "overflowing literal should pass through")

	assert.NotPanics(t, func() { Distort("M1.2.3-4..5,,", 1, 3, 0) })
}

func TestIntensity(t *testing.T) {
	assert.Equal(t, 3.0, Intensity(0, 0, 3, 1))
	for i := 0; i < 20; i++ {
		v := Intensity(float64(i)*0.9, i, 3, 1)
		assert.GreaterOrEqual(t, v, 2.0)
		assert.LessOrEqual(t, v, 4.0)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Package wave implements the "ocean wave" distortion applied to SVG path
// data: every numeric literal is displaced by travelling sine waves while
// the surrounding command letters and separators are kept byte for byte.
package wave

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/iburimskiy/cursor-smudge/internal/vmath"
)

const (
	waveLength1 = 200.0 // long, slow waves
	waveLength2 = 120.0
	waveLength3 = 80.0 // short ripples

	speed1 = 0.3
	speed2 = 0.5
	speed3 = 0.7

	// x coordinates move less than y, and their waves travel slower.
	horizontalWeight = 0.6
	horizontalSpeed  = 0.7

	pulseGrid     = 100.0
	pulseSlot     = 4.0 // seconds between pulse targets
	pulseDepth    = 0.2
	pulseStrength = 0.4
	pulseXWeight  = 0.7
)

var numberRe = regexp.MustCompile(`-?\d+\.?\d*`)

type token struct {
	value      float64
	start, end int
	// raw literals overflow float64. They are copied through and count as
	// zero for their partner coordinate.
	raw bool
}

// tokenize returns the numeric literals of path in order.
func tokenize(path string) []token {
	locs := numberRe.FindAllStringIndex(path, -1)
	tokens := make([]token, 0, len(locs))
	for _, loc := range locs {
		v, err := strconv.ParseFloat(path[loc[0]:loc[1]], 64)
		if err != nil || math.IsInf(v, 0) {
			tokens = append(tokens, token{start: loc[0], end: loc[1], raw: true})
			continue
		}
		tokens = append(tokens, token{value: v, start: loc[0], end: loc[1]})
	}
	return tokens
}

// Distort returns path with every coordinate displaced for time t (seconds).
// Even tokens are treated as x, odd tokens as y. Intensity 0 returns the
// original values rounded to two decimals; any positive intensity also
// applies the full narrowing/widening pulse. Input without numbers is
// returned as is.
func Distort(path string, t, intensity float64, pathIndex int) string {
	tokens := tokenize(path)
	if len(tokens) == 0 {
		return path
	}

	phase1 := float64(pathIndex) * 0.5
	phase2 := float64(pathIndex) * 0.8
	phase3 := float64(pathIndex) * 1.2

	var b strings.Builder
	b.Grow(len(path) + len(tokens)*4)
	last := 0

	for i, tok := range tokens {
		b.WriteString(path[last:tok.start])
		last = tok.end
		if tok.raw {
			b.WriteString(path[tok.start:tok.end])
			continue
		}

		isY := i%2 == 1
		var x, y float64
		if isY {
			x, y = tokens[i-1].value, tok.value
		} else {
			x = tok.value
			if i+1 < len(tokens) {
				y = tokens[i+1].value
			}
		}

		var displacement float64
		if isY {
			w1 := math.Sin((x/waveLength1 + t*speed1 + phase1) * 2 * math.Pi)
			w2 := math.Sin((x/waveLength2 + t*speed2 + phase2) * 2 * math.Pi)
			w3 := math.Sin((x/waveLength3 + t*speed3 + phase3) * 2 * math.Pi)
			displacement = (w1*0.5 + w2*0.3 + w3*0.2) * intensity
		} else {
			w1 := math.Cos((y/waveLength1 + t*speed1*horizontalSpeed + phase1) * 2 * math.Pi)
			w2 := math.Cos((y/waveLength2 + t*speed2*horizontalSpeed + phase2) * 2 * math.Pi)
			displacement = (w1*0.4 + w2*0.3) * intensity * horizontalWeight
		}

		if intensity > 0 {
			factor := (pulseScale(x, y, t, pathIndex) - 1) * pulseStrength
			if isY {
				displacement += tok.value * factor
			} else {
				displacement += tok.value * factor * pulseXWeight
			}
		}

		b.WriteString(formatCoord(tok.value + displacement))
	}
	b.WriteString(path[last:])
	return b.String()
}

// pulseScale is a slow widen/narrow factor in [1-pulseDepth, 1+pulseDepth]
// for the grid cell containing (x, y). A new target is picked every
// pulseSlot seconds and approached with a smoothstep.
func pulseScale(x, y, t float64, pathIndex int) float64 {
	gx := math.Floor(x / pulseGrid)
	gy := math.Floor(y / pulseGrid)
	region := float64(pathIndex)*1000 + gx*50 + gy

	slot := math.Floor(t / pulseSlot)
	seed := region + slot*10000
	current := math.Sin(seed)*pulseDepth + 1
	next := math.Sin(seed+10000)*pulseDepth + 1

	progress := vmath.Smoothstep((t - slot*pulseSlot) / pulseSlot)
	return current + (next-current)*progress
}

// formatCoord rounds half up to two decimals and prints the shortest form.
func formatCoord(v float64) string {
	r := math.Floor(v*100+0.5) / 100
	if r == 0 {
		r = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// Intensity is the per-path wave strength at time t: base plus a slow sine
// variation offset by path index so paths breathe out of step.
func Intensity(t float64, pathIndex int, base, variation float64) float64 {
	return base + math.Sin(t*0.4+float64(pathIndex)*0.3)*variation
}

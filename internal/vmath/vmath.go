// Package vmath holds the small vector, easing and colour helpers shared by
// the simulator and the render step.
package vmath

import "math"

// Vec2 is a point or displacement in screen space.
type Vec2 struct {
	X, Y float64
}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

func (v Vec2) Mul(s float64) Vec2 { return Vec2{X: v.X * s, Y: v.Y * s} }

// Len returns the Euclidean length.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the distance between two points.
func (v Vec2) Dist(o Vec2) float64 { return math.Hypot(v.X-o.X, v.Y-o.Y) }

// Lerp interpolates from v toward o by t.
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	return Vec2{X: v.X + (o.X-v.X)*t, Y: v.Y + (o.Y-v.Y)*t}
}

// Finite reports whether both components are finite numbers.
func (v Vec2) Finite() bool { return IsFinite(v.X) && IsFinite(v.Y) }

// Polar returns center + radius*(cos a, sin a).
func Polar(center Vec2, radius, angle float64) Vec2 {
	return Vec2{X: center.X + math.Cos(angle)*radius, Y: center.Y + math.Sin(angle)*radius}
}

func IsFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Clamp01(v float64) float64 { return Clamp(v, 0, 1) }

// Smoothstep is the cubic Hermite 3t²-2t³ for t in [0,1].
func Smoothstep(t float64) float64 {
	t = Clamp01(t)
	return t * t * (3 - 2*t)
}

// EaseInOutQuad accelerates through the first half and decelerates through
// the second, symmetric around t=0.5.
func EaseInOutQuad(t float64) float64 {
	t = Clamp01(t)
	if t < 0.5 {
		return 2 * t * t
	}
	return 1 - math.Pow(-2*t+2, 2)/2
}

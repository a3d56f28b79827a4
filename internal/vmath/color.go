package vmath

import (
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// HSLA converts hue (degrees, any range), saturation and lightness (0-1) and
// alpha (0-1) to a non-premultiplied colour, like CSS hsla().
func HSLA(h, s, l, a float64) color.NRGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	r, g, b := colorful.Hsl(h, Clamp01(s), Clamp01(l)).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha8(a)}
}

// WithAlpha replaces the alpha channel.
func WithAlpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = alpha8(a)
	return c
}

// LerpColor blends two colours channel-wise, alpha included.
func LerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	t = Clamp01(t)
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

func alpha8(a float64) uint8 {
	return uint8(math.Round(Clamp01(a) * 255))
}

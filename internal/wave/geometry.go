package wave

// Geometry is the original path data of one path element. It is never
// modified; every frame derives a fresh distorted copy from it, so frames do
// not accumulate error.
type Geometry struct {
	original string
	index    int
}

func NewGeometry(d string, index int) Geometry {
	return Geometry{original: d, index: index}
}

func (g Geometry) Original() string { return g.original }

func (g Geometry) Index() int { return g.index }

// Frame returns the path distorted for time t.
func (g Geometry) Frame(t, intensity float64) string {
	return Distort(g.original, t, intensity, g.index)
}

// Animator distorts a set of paths with the per-path breathing intensity.
type Animator struct {
	paths     []Geometry
	base      float64
	variation float64
}

func NewAnimator(paths []string, base, variation float64) *Animator {
	a := &Animator{base: base, variation: variation}
	for i, d := range paths {
		if d == "" {
			continue
		}
		a.paths = append(a.paths, NewGeometry(d, i))
	}
	return a
}

func (a *Animator) Len() int { return len(a.paths) }

// Frame returns every path distorted for time t. boost is added to each
// path's intensity (the audio level, zero when silent).
func (a *Animator) Frame(t, boost float64) []string {
	out := make([]string, len(a.paths))
	for i, g := range a.paths {
		out[i] = g.Frame(t, Intensity(t, g.index, a.base, a.variation)+boost)
	}
	return out
}

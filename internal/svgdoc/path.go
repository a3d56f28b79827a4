package svgdoc

import (
	"math"
	"strconv"

	"github.com/iburimskiy/cursor-smudge/internal/vmath"
)

// flatness is the maximum distance, in user units, between a bézier and the
// polyline that replaces it.
const flatness = 0.25

// maxDepth bounds bézier subdivision for degenerate or huge curves.
const maxDepth = 12

// Subpath is one continuous polyline of a path.
type Subpath struct {
	Points []vmath.Vec2
	Closed bool
}

type scanner struct {
	s   string
	pos int
}

func (sc *scanner) skipSeparators() {
	for sc.pos < len(sc.s) {
		switch sc.s[sc.pos] {
		case ' ', ',', '\t', '\n', '\r', '\f':
			sc.pos++
		default:
			return
		}
	}
}

// command returns the next command letter, or 0 when the next item is a number.
func (sc *scanner) command() (byte, bool) {
	sc.skipSeparators()
	if sc.pos >= len(sc.s) {
		return 0, false
	}
	c := sc.s[sc.pos]
	if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		sc.pos++
		return c, true
	}
	return 0, true
}

// number reads one SVG number: sign, digits, fraction and exponent.
func (sc *scanner) number() (float64, bool) {
	sc.skipSeparators()
	start := sc.pos
	i := sc.pos
	if i < len(sc.s) && (sc.s[i] == '+' || sc.s[i] == '-') {
		i++
	}
	digits := false
	for i < len(sc.s) && sc.s[i] >= '0' && sc.s[i] <= '9' {
		i++
		digits = true
	}
	if i < len(sc.s) && sc.s[i] == '.' {
		i++
		for i < len(sc.s) && sc.s[i] >= '0' && sc.s[i] <= '9' {
			i++
			digits = true
		}
	}
	if !digits {
		return 0, false
	}
	if i < len(sc.s) && (sc.s[i] == 'e' || sc.s[i] == 'E') {
		j := i + 1
		if j < len(sc.s) && (sc.s[j] == '+' || sc.s[j] == '-') {
			j++
		}
		if j < len(sc.s) && sc.s[j] >= '0' && sc.s[j] <= '9' {
			for j < len(sc.s) && sc.s[j] >= '0' && sc.s[j] <= '9' {
				j++
			}
			i = j
		}
	}
	v, err := strconv.ParseFloat(sc.s[start:i], 64)
	if err != nil || !vmath.IsFinite(v) {
		return 0, false
	}
	sc.pos = i
	return v, true
}

// flag reads an arc flag. Flags are a single 0 or 1 and need no separator
// before the next argument.
func (sc *scanner) flag() (float64, bool) {
	sc.skipSeparators()
	if sc.pos >= len(sc.s) {
		return 0, false
	}
	switch sc.s[sc.pos] {
	case '0':
		sc.pos++
		return 0, true
	case '1':
		sc.pos++
		return 1, true
	}
	return 0, false
}

// arcArgs reads rx ry rotation large-arc sweep x y.
func (sc *scanner) arcArgs() ([]float64, bool) {
	out := make([]float64, 7)
	for i := range out {
		read := sc.number
		if i == 3 || i == 4 {
			read = sc.flag
		}
		v, ok := read()
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func (sc *scanner) numbers(n int) ([]float64, bool) {
	out := make([]float64, n)
	for i := range out {
		v, ok := sc.number()
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// argCount is the number of arguments per repetition of each command.
var argCount = map[byte]int{
	'M': 2, 'L': 2, 'H': 1, 'V': 1, 'C': 6, 'S': 4, 'Q': 4, 'T': 2, 'A': 7, 'Z': 0,
}

// Flatten converts SVG path data into polylines. Curves are subdivided until
// flat; elliptical arcs are converted to cubics first. Parsing stops at the
// first malformed command and keeps what was read so far.
func Flatten(d string) []Subpath {
	var (
		out      []Subpath
		cur      *Subpath
		pen      vmath.Vec2
		start    vmath.Vec2
		lastCtrl vmath.Vec2 // reflected by S and T
		lastCmd  byte
		cmd      byte
	)

	moveTo := func(p vmath.Vec2) {
		if cur != nil && len(cur.Points) > 1 {
			out = append(out, *cur)
		}
		cur = &Subpath{Points: []vmath.Vec2{p}}
		pen, start = p, p
	}
	lineTo := func(p vmath.Vec2) {
		if cur == nil {
			moveTo(pen)
		}
		cur.Points = append(cur.Points, p)
		pen = p
	}

	sc := &scanner{s: d}
	for {
		c, more := sc.command()
		if !more {
			break
		}
		if c != 0 {
			cmd = c
		} else if cmd == 0 {
			break
		}

		upper := cmd &^ 0x20
		n, known := argCount[upper]
		if !known {
			break
		}
		rel := cmd != upper

		if upper == 'Z' {
			if c == 0 {
				// numbers cannot follow a closepath
				break
			}
			if cur != nil {
				cur.Closed = true
				if len(cur.Points) > 1 {
					out = append(out, *cur)
				}
				cur = nil
			}
			pen = start
			lastCmd = 'Z'
			continue
		}

		var (
			args []float64
			ok   bool
		)
		if upper == 'A' {
			args, ok = sc.arcArgs()
		} else {
			args, ok = sc.numbers(n)
		}
		if !ok {
			break
		}
		abs := func(x, y float64) vmath.Vec2 {
			if rel {
				return vmath.V(pen.X+x, pen.Y+y)
			}
			return vmath.V(x, y)
		}

		switch upper {
		case 'M':
			moveTo(abs(args[0], args[1]))
			// further pairs after a moveto are implicit linetos
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
		case 'L':
			lineTo(abs(args[0], args[1]))
		case 'H':
			x := args[0]
			if rel {
				x += pen.X
			}
			lineTo(vmath.V(x, pen.Y))
		case 'V':
			y := args[0]
			if rel {
				y += pen.Y
			}
			lineTo(vmath.V(pen.X, y))
		case 'C':
			p1, p2, p3 := abs(args[0], args[1]), abs(args[2], args[3]), abs(args[4], args[5])
			cubic(pen, p1, p2, p3, lineTo)
			lastCtrl = p2
		case 'S':
			p1 := pen
			if lastCmd == 'C' || lastCmd == 'S' {
				p1 = pen.Mul(2).Sub(lastCtrl)
			}
			p2, p3 := abs(args[0], args[1]), abs(args[2], args[3])
			cubic(pen, p1, p2, p3, lineTo)
			lastCtrl = p2
		case 'Q':
			q1, q2 := abs(args[0], args[1]), abs(args[2], args[3])
			quad(pen, q1, q2, lineTo)
			lastCtrl = q1
		case 'T':
			q1 := pen
			if lastCmd == 'Q' || lastCmd == 'T' {
				q1 = pen.Mul(2).Sub(lastCtrl)
			}
			q2 := abs(args[0], args[1])
			quad(pen, q1, q2, lineTo)
			lastCtrl = q1
		case 'A':
			end := abs(args[5], args[6])
			arc(pen, end, args[0], args[1], args[2], args[3] != 0, args[4] != 0, lineTo)
			pen = end
		}
		lastCmd = upper
	}

	if cur != nil && len(cur.Points) > 1 {
		out = append(out, *cur)
	}
	return out
}

// arc converts an endpoint-parameterised elliptical arc to its centre form
// and flattens it as cubics of at most a quarter turn each. Out-of-range radii
// are scaled up and zero radii give a straight line.
func arc(p0, p1 vmath.Vec2, rx, ry, rotation float64, large, sweep bool, emit func(vmath.Vec2)) {
	if p0 == p1 {
		return
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		emit(p1)
		return
	}

	sinPhi, cosPhi := math.Sincos(rotation * math.Pi / 180)
	hx, hy := (p0.X-p1.X)/2, (p0.Y-p1.Y)/2
	x1 := cosPhi*hx + sinPhi*hy
	y1 := -sinPhi*hx + cosPhi*hy

	if l := x1*x1/(rx*rx) + y1*y1/(ry*ry); l > 1 {
		s := math.Sqrt(l)
		rx, ry = rx*s, ry*s
	}

	num := rx*rx*ry*ry - rx*rx*y1*y1 - ry*ry*x1*x1
	den := rx*rx*y1*y1 + ry*ry*x1*x1
	coef := 0.0
	if den > 0 && num > 0 {
		coef = math.Sqrt(num / den)
	}
	if large == sweep {
		coef = -coef
	}
	cx1 := coef * rx * y1 / ry
	cy1 := -coef * ry * x1 / rx
	cx := cosPhi*cx1 - sinPhi*cy1 + (p0.X+p1.X)/2
	cy := sinPhi*cx1 + cosPhi*cy1 + (p0.Y+p1.Y)/2

	ux, uy := (x1-cx1)/rx, (y1-cy1)/ry
	vx, vy := (-x1-cx1)/rx, (-y1-cy1)/ry
	theta := math.Atan2(uy, ux)
	delta := math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
	if sweep && delta < 0 {
		delta += 2 * math.Pi
	} else if !sweep && delta > 0 {
		delta -= 2 * math.Pi
	}

	// unit circle point mapped onto the ellipse
	at := func(x, y float64) vmath.Vec2 {
		return vmath.V(cx+rx*cosPhi*x-ry*sinPhi*y, cy+rx*sinPhi*x+ry*cosPhi*y)
	}

	segs := max(1, int(math.Ceil(math.Abs(delta)/(math.Pi/2)-1e-9)))
	step := delta / float64(segs)
	k := 4.0 / 3.0 * math.Tan(step/4)
	start := p0
	for i := range segs {
		a, b := theta+float64(i)*step, theta+float64(i+1)*step
		sa, ca := math.Sincos(a)
		sb, cb := math.Sincos(b)
		end := at(cb, sb)
		if i == segs-1 {
			end = p1
		}
		c1 := at(ca-k*sa, sa+k*ca)
		c2 := at(cb+k*sb, sb-k*cb)
		flattenCubic(start, c1, c2, end, 0, emit)
		start = end
	}
}

// quad raises a quadratic bézier to a cubic and flattens it.
func quad(p0, q1, p2 vmath.Vec2, emit func(vmath.Vec2)) {
	c1 := p0.Add(q1.Sub(p0).Mul(2.0 / 3.0))
	c2 := p2.Add(q1.Sub(p2).Mul(2.0 / 3.0))
	cubic(p0, c1, c2, p2, emit)
}

func cubic(p0, p1, p2, p3 vmath.Vec2, emit func(vmath.Vec2)) {
	flattenCubic(p0, p1, p2, p3, 0, emit)
}

// flattenCubic subdivides with De Casteljau until both control points lie
// within flatness of the chord.
func flattenCubic(p0, p1, p2, p3 vmath.Vec2, depth int, emit func(vmath.Vec2)) {
	if depth >= maxDepth || (distToLine(p1, p0, p3) <= flatness && distToLine(p2, p0, p3) <= flatness) {
		emit(p3)
		return
	}
	m01 := p0.Lerp(p1, 0.5)
	m12 := p1.Lerp(p2, 0.5)
	m23 := p2.Lerp(p3, 0.5)
	m012 := m01.Lerp(m12, 0.5)
	m123 := m12.Lerp(m23, 0.5)
	mid := m012.Lerp(m123, 0.5)

	flattenCubic(p0, m01, m012, mid, depth+1, emit)
	flattenCubic(mid, m123, m23, p3, depth+1, emit)
}

func distToLine(p, a, b vmath.Vec2) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	if dx == 0 && dy == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / (dx*dx + dy*dy)
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}

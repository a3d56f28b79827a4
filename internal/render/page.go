package render

import (
	"image/color"
	"math"

	"github.com/iburimskiy/cursor-smudge/internal/config"
	"github.com/iburimskiy/cursor-smudge/internal/svgdoc"
	"github.com/iburimskiy/cursor-smudge/internal/vmath"
	"github.com/iburimskiy/cursor-smudge/internal/wave"
)

var (
	Paper = color.NRGBA{R: 250, G: 248, B: 243, A: 255}
	Ink   = color.NRGBA{R: 26, G: 26, B: 26, A: 255}
)

// cellInset is the share of each grid cell left empty around the artwork.
const cellInset = 0.12

// Cell is one SVG container on the page.
type Cell struct {
	Handle int
	Box    svgdoc.Box // screen rectangle
	doc    *svgdoc.Document
	anim   *wave.Animator
}

// Center is the container centre used for lens and ripple distances.
func (c *Cell) Center() vmath.Vec2 {
	return vmath.V(c.Box.X+c.Box.W/2, c.Box.Y+c.Box.H/2)
}

// toScreen maps viewBox coordinates into the cell, preserving aspect ratio
// and centring the artwork.
func (c *Cell) toScreen(p vmath.Vec2) vmath.Vec2 {
	vb := c.doc.ViewBox
	scale := math.Min(c.Box.W/vb.W, c.Box.H/vb.H)
	ox := c.Box.X + (c.Box.W-vb.W*scale)/2
	oy := c.Box.Y + (c.Box.H-vb.H*scale)/2
	return vmath.V(ox+(p.X-vb.X)*scale, oy+(p.Y-vb.Y)*scale)
}

// Page lays SVG documents out in a grid and draws their animated paths.
type Page struct {
	cfg   config.WaveConfig
	cells []*Cell
}

func NewPage(cfg config.WaveConfig, docs []*svgdoc.Document, width, height float64) *Page {
	p := &Page{cfg: cfg}
	for _, d := range docs {
		if d == nil || d.ViewBox.Empty() {
			continue
		}
		p.cells = append(p.cells, &Cell{
			Handle: len(p.cells),
			doc:    d,
			anim:   wave.NewAnimator(d.Paths, cfg.BaseIntensity, cfg.Variation),
		})
	}
	p.Layout(width, height)
	return p
}

func (p *Page) Cells() []*Cell { return p.cells }

// Layout arranges the cells in a near-square grid over width×height.
func (p *Page) Layout(width, height float64) {
	n := len(p.cells)
	if n == 0 {
		return
	}
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := (n + cols - 1) / cols
	cw, ch := width/float64(cols), height/float64(rows)
	for i, c := range p.cells {
		col, row := i%cols, i/cols
		c.Box = svgdoc.Box{
			X: float64(col)*cw + cw*cellInset,
			Y: float64(row)*ch + ch*cellInset,
			W: cw * (1 - 2*cellInset),
			H: ch * (1 - 2*cellInset),
		}
	}
}

func (p *Page) Centers() []vmath.Vec2 {
	out := make([]vmath.Vec2, len(p.cells))
	for i, c := range p.cells {
		out[i] = c.Center()
	}
	return out
}

// Draw paints every cell at elapsed time t. boost raises the wave intensity;
// transforms are matched to cells by handle and may be shorter than the
// cell list.
func (p *Page) Draw(s Surface, t, boost float64, transforms []ContainerTransform) {
	if s == nil {
		return
	}
	for _, c := range p.cells {
		tr := Identity(c.Handle)
		if c.Handle < len(transforms) {
			tr = transforms[c.Handle]
		}
		center := c.Center()
		for _, d := range c.anim.Frame(t, boost) {
			var rings [][]vmath.Vec2
			for _, sp := range svgdoc.Flatten(d) {
				pts := make([]vmath.Vec2, len(sp.Points))
				for i, pt := range sp.Points {
					pts[i] = tr.Apply(c.toScreen(pt), center)
				}
				if sp.Closed || len(pts) > 2 {
					rings = append(rings, pts)
				} else {
					s.StrokePolyline(pts, false, 1.5, Ink)
				}
			}
			if len(rings) > 0 {
				s.FillPolygons(rings, Ink)
			}
		}
	}
}

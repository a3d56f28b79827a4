package render

import (
	"image"
	"image/draw"
	"math"

	"github.com/fogleman/gg"
	"github.com/iburimskiy/cursor-smudge/internal/vmath"
)

// OverlayState is an OverlayPort that keeps the latest outputs in memory.
// Hosts embed it and read the fields when compositing.
type OverlayState struct {
	Lens       Lens
	Rings      []LensRing
	Blur       []BlurPatch
	Prism      Prism
	Transforms []ContainerTransform
}

func (o *OverlayState) SetLens(l Lens)                       { o.Lens = l }
func (o *OverlayState) SetLensRings(r []LensRing)            { o.Rings = r }
func (o *OverlayState) SetBlur(b []BlurPatch)                { o.Blur = b }
func (o *OverlayState) SetPrism(p Prism)                     { o.Prism = p }
func (o *OverlayState) SetTransforms(t []ContainerTransform) { o.Transforms = t }

func (o *OverlayState) Clear() {
	for i := range o.Transforms {
		o.Transforms[i] = Identity(o.Transforms[i].Handle)
	}
	o.Lens = Lens{}
	o.Rings = nil
	o.Prism = Prism{}
}

// Compose flattens the page, the smudge canvas and the overlay into a new
// image, stacking them the way the live window does: page, prism wash,
// blur patches, canvas (multiplied), lens, lens rings.
func Compose(page, canvas *Raster, ov *OverlayState) (*image.RGBA, error) {
	w, h := page.Size()
	out, err := NewRaster(int(w), int(h))
	if err != nil {
		return nil, err
	}
	draw.Draw(out.img, out.img.Bounds(), page.img, image.Point{}, draw.Src)

	if ov != nil && ov.Prism.Visible {
		out.RadialGradient(ov.Prism.Center, ov.Prism.Radius, PrismStops)
	}
	if ov != nil {
		for _, b := range ov.Blur {
			blurPatch(out.dc, page.img, b)
		}
	}
	if canvas != nil {
		Multiply(out.img, canvas.img)
	}
	if ov != nil && ov.Lens.Visible {
		magnify(out.dc, ov.Lens)
	}
	if ov != nil {
		for _, ring := range ov.Rings {
			radius := ring.Radius * ring.Scale
			glow := ring.Color()
			glow.A /= 2
			out.StrokeCircle(ring.Center, radius, ring.Radius*0.1, glow)
			out.StrokeCircle(ring.Center, radius, 2, ring.Color())
		}
	}
	return out.img, nil
}

// blurPatch approximates a backdrop blur by sampling src at 1/blur scale
// and scaling it back up inside the patch circle.
func blurPatch(dc *gg.Context, src image.Image, b BlurPatch) {
	f := math.Max(b.Blur, 1)
	side := int(math.Ceil(b.Size/f)) + 1
	if side <= 1 {
		return
	}
	origin := b.Center.Sub(vmath.V(b.Size/2, b.Size/2))

	small := gg.NewContext(side, side)
	small.Scale(1/f, 1/f)
	small.Translate(-origin.X, -origin.Y)
	small.DrawImage(src, 0, 0)

	dc.Push()
	dc.DrawCircle(b.Center.X, b.Center.Y, b.Size/2)
	dc.Clip()
	dc.Translate(origin.X, origin.Y)
	dc.Scale(f, f)
	dc.DrawImage(small.Image(), 0, 0)
	dc.Pop()
	dc.ResetClip()
}

// magnify scales the content under the lens circle about its centre.
func magnify(dc *gg.Context, l Lens) {
	if l.Zoom <= 0 || l.ClipRadius <= 0 {
		return
	}
	snapshot := image.NewRGBA(dc.Image().Bounds())
	draw.Draw(snapshot, snapshot.Bounds(), dc.Image(), image.Point{}, draw.Src)

	dc.Push()
	dc.DrawCircle(l.Center.X, l.Center.Y, l.ClipRadius)
	dc.Clip()
	dc.ScaleAbout(l.Zoom, l.Zoom, l.Center.X, l.Center.Y)
	dc.DrawImage(snapshot, 0, 0)
	dc.Pop()
	dc.ResetClip()
}

// Multiply blends src over dst with the multiply mode, both premultiplied:
// out = src·dst + dst·(1 - srcα). White and transparent leave dst as is.
func Multiply(dst *image.RGBA, src *image.RGBA) {
	b := dst.Bounds().Intersect(src.Bounds())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		di := dst.PixOffset(b.Min.X, y)
		si := src.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			sa := uint32(src.Pix[si+3])
			if sa != 0 {
				for c := range 3 {
					d := uint32(dst.Pix[di+c])
					s := uint32(src.Pix[si+c])
					dst.Pix[di+c] = uint8((s*d + d*(255-sa) + 127) / 255)
				}
			}
			di += 4
			si += 4
		}
	}
}

type tee []OverlayPort

// Tee fans overlay updates out to every non-nil port.
func Tee(ports ...OverlayPort) OverlayPort {
	var t tee
	for _, p := range ports {
		if p != nil {
			t = append(t, p)
		}
	}
	return t
}

func (t tee) SetLens(l Lens) {
	for _, p := range t {
		p.SetLens(l)
	}
}

func (t tee) SetLensRings(r []LensRing) {
	for _, p := range t {
		p.SetLensRings(r)
	}
}

func (t tee) SetBlur(b []BlurPatch) {
	for _, p := range t {
		p.SetBlur(b)
	}
}

func (t tee) SetPrism(pr Prism) {
	for _, p := range t {
		p.SetPrism(pr)
	}
}

func (t tee) SetTransforms(tr []ContainerTransform) {
	for _, p := range t {
		p.SetTransforms(tr)
	}
}

func (t tee) Clear() {
	for _, p := range t {
		p.Clear()
	}
}

package render

import (
	"image/color"
	"math"

	"github.com/iburimskiy/cursor-smudge/internal/config"
	"github.com/iburimskiy/cursor-smudge/internal/effect"
	"github.com/iburimskiy/cursor-smudge/internal/vmath"
)

// Lens is the magnifier over the page: content inside ClipRadius around
// Center is scaled by Zoom about Center.
type Lens struct {
	Visible    bool
	Center     vmath.Vec2
	Zoom       float64
	ClipRadius float64
}

// LensRing is one pulsing outline drawn around the lens.
type LensRing struct {
	Center  vmath.Vec2
	Radius  float64
	Scale   float64
	Opacity float64
	Hue     float64
}

// Color is the ring stroke colour; glow uses half the opacity.
func (r LensRing) Color() color.NRGBA { return vmath.HSLA(r.Hue, 0.7, 0.6, r.Opacity) }

// BlurPatch is a circular backdrop blur of Blur pixels over Size diameter.
type BlurPatch struct {
	Center  vmath.Vec2
	Size    float64
	Blur    float64
	Opacity float64
}

// Prism is the faint warm wash that follows the pointer.
type Prism struct {
	Visible bool
	Center  vmath.Vec2
	Radius  float64
}

// PrismStops are the wash colours, centre outward.
var PrismStops = []Stop{
	{0, color.NRGBA{R: 255, G: 200, B: 50, A: 26}},
	{0.25, color.NRGBA{R: 255, G: 180, B: 100, A: 20}},
	{0.5, color.NRGBA{R: 200, G: 255, B: 150, A: 15}},
	{0.75, color.NRGBA{R: 150, G: 255, B: 200, A: 10}},
	{1, color.NRGBA{}},
}

// ContainerTransform displaces and scales one page container about its own
// centre.
type ContainerTransform struct {
	Handle    int
	Translate vmath.Vec2
	Scale     float64
}

func Identity(handle int) ContainerTransform {
	return ContainerTransform{Handle: handle, Scale: 1}
}

func (c ContainerTransform) IsIdentity() bool {
	return c.Translate == (vmath.Vec2{}) && c.Scale == 1
}

// Apply maps a point inside a container centred at center.
func (c ContainerTransform) Apply(p, center vmath.Vec2) vmath.Vec2 {
	return center.Add(p.Sub(center).Mul(c.Scale)).Add(c.Translate)
}

// OverlayPort receives the per-frame overlay state. Hosts that cannot show
// an output may ignore it.
type OverlayPort interface {
	SetLens(Lens)
	SetLensRings([]LensRing)
	SetBlur([]BlurPatch)
	SetPrism(Prism)
	SetTransforms([]ContainerTransform)
	// Clear resets every container to identity and hides the lens.
	Clear()
}

// Zoom is the lens pulse at elapsed time t.
func Zoom(cfg config.LensConfig, t float64) float64 {
	return 1 + math.Sin(t*cfg.ZoomSpeed)*cfg.ZoomDepth
}

// LensRings returns the outlines around a lens at center.
func LensRings(cfg config.LensConfig, center vmath.Vec2, zoom, t float64) []LensRing {
	rings := make([]LensRing, cfg.Rings)
	for i := range rings {
		fi := float64(i)
		rings[i] = LensRing{
			Center:  center,
			Radius:  150 + fi*40,
			Scale:   zoom + fi*0.1,
			Opacity: math.Max(0, (0.3-fi*0.08)*(1-math.Abs(zoom-1)*0.5)),
			Hue:     60 + math.Sin(t*0.3+fi)*80 + fi*10,
		}
	}
	return rings
}

const (
	rippleInner    = 80
	rippleOuter    = 150
	ripplePrimary  = 40
	rippleSecond   = 20
	rippleStrength = 40
	rippleDepth    = 0.15
)

// Transform computes the distortion of a container centred at center. The
// lens term applies when the pointer is visible and within the lens radius;
// every ripple whose ring passes near the centre adds a push along the
// ripple direction and a multiplicative scale.
func Transform(cfg config.LensConfig, handle int, center, pointer vmath.Vec2, visible bool, zoom float64, ripples []effect.Ripple) ContainerTransform {
	tr := Identity(handle)

	if visible {
		if d := pointer.Dist(center); d < cfg.Radius {
			falloff := 1 - d/cfg.Radius
			tr.Scale = 1 + (zoom-1)*falloff*0.8
		}
	}

	for _, rp := range ripples {
		delta := rp.Origin.Sub(center)
		d := delta.Len()
		if d >= rp.Radius+rippleOuter || d <= math.Max(0, rp.Radius-rippleInner) {
			continue
		}
		offset := d - rp.Radius
		amp := math.Sin(offset/ripplePrimary*2*math.Pi)*rp.Intensity +
			math.Sin(offset/rippleSecond*2*math.Pi)*rp.Intensity*0.5
		angle := math.Atan2(delta.Y, delta.X)
		tr.Translate = tr.Translate.Add(vmath.Polar(vmath.Vec2{}, amp*rippleStrength*rp.Intensity, angle))
		tr.Scale *= 1 + amp*rippleDepth*rp.Intensity
	}
	return tr
}

// OverlayScene is the read side Overlay needs from the simulator.
type OverlayScene interface {
	Ripples() []effect.Ripple
	BlurRegions() []effect.BlurRegion
}

// Overlay turns simulator and pointer state into overlay outputs.
type Overlay struct {
	cfg        config.LensConfig
	scene      OverlayScene
	pointer    PointerSource
	containers []vmath.Vec2
}

func NewOverlay(cfg config.LensConfig, scene OverlayScene, pointer PointerSource) *Overlay {
	return &Overlay{cfg: cfg, scene: scene, pointer: pointer}
}

// SetContainers registers container centres; the handle of each container
// is its index.
func (o *Overlay) SetContainers(centers []vmath.Vec2) {
	o.containers = append(o.containers[:0], centers...)
}

// Apply pushes the overlay state for elapsed time t to port.
func (o *Overlay) Apply(port OverlayPort, t float64) {
	if o == nil || port == nil || o.scene == nil {
		return
	}
	zoom := Zoom(o.cfg, t)
	pos, visible := PointerVisible(o.pointer)

	if visible {
		port.SetLens(Lens{Visible: true, Center: pos, Zoom: zoom, ClipRadius: o.cfg.ClipRadius * zoom})
		port.SetLensRings(LensRings(o.cfg, pos, zoom, t))
	} else {
		port.SetLens(Lens{})
		port.SetLensRings(nil)
	}
	port.SetPrism(Prism{Visible: visible, Center: pos, Radius: o.cfg.Radius * 2})

	regions := o.scene.BlurRegions()
	patches := make([]BlurPatch, len(regions))
	for i, b := range regions {
		patches[i] = BlurPatch{Center: b.Pos, Size: b.Size, Blur: b.Blur, Opacity: 0.6}
	}
	port.SetBlur(patches)

	ripples := o.scene.Ripples()
	transforms := make([]ContainerTransform, len(o.containers))
	for i, c := range o.containers {
		transforms[i] = Transform(o.cfg, i, c, pos, visible, zoom, ripples)
	}
	port.SetTransforms(transforms)
}

// Clear resets the port on teardown.
func (o *Overlay) Clear(port OverlayPort) {
	if port != nil {
		port.Clear()
	}
}

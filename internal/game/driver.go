// Package game ties the simulator, input, render step and page together
// into a frame loop that any host (window or recorder) can drive.
package game

import (
	"time"

	"github.com/iburimskiy/cursor-smudge/internal/config"
	"github.com/iburimskiy/cursor-smudge/internal/effect"
	"github.com/iburimskiy/cursor-smudge/internal/input"
	"github.com/iburimskiy/cursor-smudge/internal/render"
	"github.com/iburimskiy/cursor-smudge/internal/svgdoc"
	"go.uber.org/zap"
)

// BoostSource supplies the extra wave intensity, e.g. an audio meter.
type BoostSource interface {
	Update()
	Boost() float64
}

// Driver owns one simulation and advances it once per frame. All methods
// must be called from the host's frame goroutine.
type Driver struct {
	cfg    *config.Config
	logger *zap.Logger
	clock  Clock

	sim      *effect.Simulator
	tracker  *input.Tracker
	wanderer *input.Wanderer
	renderer *render.Renderer
	overlay  *render.Overlay
	page     *render.Page
	boost    BoostSource
	state    *render.OverlayState
	port     render.OverlayPort

	frame     uint64
	t         float64
	closed    bool
	warnedNil bool
}

// Options are the optional collaborators of a Driver.
type Options struct {
	Clock  Clock
	Rand   effect.Rand
	Docs   []*svgdoc.Document
	Boost  BoostSource
	Port   render.OverlayPort
	Wander bool
}

func NewDriver(cfg *config.Config, width, height float64, logger *zap.Logger, opts Options) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Rand == nil {
		opts.Rand = effect.NewEntropyRand()
	}

	state := &render.OverlayState{}
	d := &Driver{
		cfg:    cfg,
		logger: logger.Named("driver"),
		clock:  opts.Clock,
		boost:  opts.Boost,
		state:  state,
		port:   render.Tee(state, opts.Port),
	}
	d.sim = effect.New(cfg.Effects, width, height, opts.Rand)
	d.tracker = input.NewTracker(d.sim, cfg.Effects.Ripple)
	if opts.Wander {
		d.wanderer = input.NewWanderer(cfg.Input, width, height, opts.Rand)
	}
	d.renderer = render.NewRenderer(cfg.Effects, d.sim, d.tracker)
	d.overlay = render.NewOverlay(cfg.Effects.Lens, d.sim, d.tracker)
	d.page = render.NewPage(cfg.Wave, opts.Docs, width, height)
	d.overlay.SetContainers(d.page.Centers())

	d.logger.Debug("Driver created",
		zap.Float64("width", width), zap.Float64("height", height),
		zap.Int("cells", len(d.page.Cells())), zap.Bool("wander", opts.Wander))
	return d
}

// Handle forwards a pointer event. Events after Close are ignored.
func (d *Driver) Handle(ev input.Event) {
	if d.closed {
		return
	}
	if !d.tracker.Handle(ev) {
		d.logger.Debug("Dropped pointer event", zap.Stringer("kind", ev.Kind))
	}
}

// Tick advances the simulation to the clock's current time and pushes the
// overlay state.
func (d *Driver) Tick() {
	if d.closed {
		return
	}
	now := d.clock.Now()
	if d.wanderer != nil {
		d.tracker.SetPointer(d.wanderer.Update(now))
	}
	d.sim.Step(now)
	d.t = d.sim.Elapsed(now)
	if d.boost != nil {
		d.boost.Update()
	}
	d.overlay.Apply(d.port, d.t)
	d.frame++
}

// Draw paints the page and the smudge canvas. Either surface may be nil.
func (d *Driver) Draw(page, canvas render.Surface) {
	if d.closed {
		return
	}
	if canvas == nil && !d.warnedNil {
		d.warnedNil = true
		d.logger.Warn("No canvas surface; smudge layer is not drawn")
	}
	d.page.Draw(page, d.t, d.Boost(), d.state.Transforms)
	d.renderer.Render(canvas, d.t)
}

// Overlay is the overlay state pushed by the last Tick.
func (d *Driver) Overlay() *render.OverlayState { return d.state }

// Resize relays a viewport change to every component that depends on it.
func (d *Driver) Resize(width, height float64) {
	w, h := d.sim.Size()
	if w == width && h == height {
		return
	}
	d.sim.Resize(width, height)
	if d.wanderer != nil {
		d.wanderer.Resize(width, height)
	}
	d.page.Layout(width, height)
	d.overlay.SetContainers(d.page.Centers())
	d.logger.Debug("Viewport resized", zap.Float64("width", width), zap.Float64("height", height))
}

// SetDocuments replaces the page content.
func (d *Driver) SetDocuments(docs []*svgdoc.Document) {
	w, h := d.sim.Size()
	d.page = render.NewPage(d.cfg.Wave, docs, w, h)
	d.overlay.SetContainers(d.page.Centers())
}

// SetBoost swaps the intensity source, nil for none.
func (d *Driver) SetBoost(b BoostSource) { d.boost = b }

func (d *Driver) Boost() float64 {
	if d.boost == nil {
		return 0
	}
	return d.boost.Boost()
}

// Close resets the overlay and stops the driver. It is safe to call twice.
func (d *Driver) Close() {
	if d.closed {
		return
	}
	d.closed = true
	d.overlay.Clear(d.port)
	d.logger.Info("Driver closed", zap.Uint64("frames", d.frame))
}

func (d *Driver) Frame() uint64 { return d.frame }

// Elapsed is the animation time in seconds.
func (d *Driver) Elapsed() float64 { return d.t }

func (d *Driver) Sim() *effect.Simulator { return d.sim }

func (d *Driver) Pointer() (float64, float64, bool) {
	p, ok := d.tracker.Pointer()
	return p.X, p.Y, ok
}

// State is the serialisable summary of one frame.
type State struct {
	Frame   uint64       `json:"frame"`
	Elapsed float64      `json:"elapsed"`
	Stats   effect.Stats `json:"stats"`
	Pointer *[2]float64  `json:"pointer,omitempty"`
	Boost   float64      `json:"boost"`
	At      time.Time    `json:"at"`
}

func (d *Driver) State() State {
	st := State{
		Frame:   d.frame,
		Elapsed: d.t,
		Stats:   d.sim.Snapshot(),
		Boost:   d.Boost(),
		At:      d.clock.Now(),
	}
	if x, y, ok := d.Pointer(); ok {
		st.Pointer = &[2]float64{x, y}
	}
	return st
}

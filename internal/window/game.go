// Package window hosts the effect in an Ebiten window with optional audio
// playback driving the page waves.
package window

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"runtime"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/iburimskiy/cursor-smudge/internal/audio"
	"github.com/iburimskiy/cursor-smudge/internal/config"
	"github.com/iburimskiy/cursor-smudge/internal/game"
	"github.com/iburimskiy/cursor-smudge/internal/input"
	"github.com/iburimskiy/cursor-smudge/internal/render"
	"github.com/iburimskiy/cursor-smudge/internal/svgdoc"
	"github.com/iburimskiy/cursor-smudge/internal/vmath"
	"go.uber.org/zap"
)

// multiply darkens the destination by the source colour, like the CSS
// multiply blend mode over an opaque backdrop.
var multiply = ebiten.Blend{
	BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
	BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
	BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
	BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
	BlendOperationRGB:           ebiten.BlendOperationAdd,
	BlendOperationAlpha:         ebiten.BlendOperationAdd,
}

// Game implements ebiten.Game.
type Game struct {
	cfg    *config.Config
	logger *zap.Logger

	driver *game.Driver
	player *player
	meter  *audio.Meter

	// page holds the SVG layer, canvas the persistent smudge layer, scene
	// their composite and scratch the masked lens and blur draws.
	page, canvas, scene, scratch *ebiten.Image
	small                        *ebiten.Image
	pageSurface, canvasSurface   *surface
	sceneSurface                 *surface
	width, height                int
	layoutW, layoutH             int

	// input edge detection
	prevKey  map[ebiten.Key]bool
	cursor   image.Point
	touchIDs []ebiten.TouchID

	paused  bool
	closed  bool
	lastErr error
}

func NewGame(cfg *config.Config, docs []*svgdoc.Document, logger *zap.Logger) *Game {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Game{
		cfg:     cfg,
		logger:  logger.Named("window"),
		player:  newPlayer(cfg.Audio, logger),
		meter:   audio.NewMeter(cfg.Audio),
		prevKey: map[ebiten.Key]bool{},
		layoutW: cfg.Window.Width,
		layoutH: cfg.Window.Height,
	}
	hasMouse := runtime.GOOS != "android" && runtime.GOOS != "ios"
	g.driver = game.NewDriver(cfg, float64(cfg.Window.Width), float64(cfg.Window.Height), logger, game.Options{
		Docs:   docs,
		Boost:  g.meter,
		Wander: input.WanderEnabled(cfg.Input, cfg.Window.Width, hasMouse),
	})
	return g
}

func (g *Game) Update() error {
	if g.closed {
		return ebiten.Termination
	}

	justPressed := func(k ebiten.Key) bool {
		pressed := ebiten.IsKeyPressed(k)
		jp := pressed && !g.prevKey[k]
		g.prevKey[k] = pressed
		return jp
	}

	if justPressed(ebiten.KeyEscape) || justPressed(ebiten.KeyQ) {
		g.Close()
		return ebiten.Termination
	}
	if justPressed(ebiten.KeySpace) {
		g.paused = g.player.TogglePause()
	}
	if justPressed(ebiten.KeyO) {
		g.lastErr = g.openDocuments()
	}
	if justPressed(ebiten.KeyA) {
		g.lastErr = g.openTrack()
	}

	g.ensureSize()
	g.handlePointer(time.Now())

	if tap := g.player.Tap(); tap != nil {
		g.meter.Attach(tap)
	} else {
		g.meter.Attach(nil)
	}
	g.driver.Tick()
	return nil
}

func (g *Game) handlePointer(now time.Time) {
	x, y := ebiten.CursorPosition()
	if cur := image.Pt(x, y); cur != g.cursor {
		g.cursor = cur
		g.driver.Handle(input.Event{Kind: input.Move, Pos: vmath.V(float64(x), float64(y)), At: now})
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.driver.Handle(input.Event{Kind: input.Tap, Pos: vmath.V(float64(x), float64(y)), At: now})
	}

	g.touchIDs = inpututil.AppendJustPressedTouchIDs(g.touchIDs[:0])
	for _, id := range g.touchIDs {
		tx, ty := ebiten.TouchPosition(id)
		g.driver.Handle(input.Event{Kind: input.Tap, Pos: vmath.V(float64(tx), float64(ty)), At: now})
	}
	g.touchIDs = ebiten.AppendTouchIDs(g.touchIDs[:0])
	if len(g.touchIDs) > 0 {
		tx, ty := ebiten.TouchPosition(g.touchIDs[0])
		g.driver.Handle(input.Event{Kind: input.Move, Pos: vmath.V(float64(tx), float64(ty)), At: now})
	}
}

// ensureSize reallocates the layers after a layout change. The smudge
// canvas starts over blank.
func (g *Game) ensureSize() {
	if g.page != nil && g.width == g.layoutW && g.height == g.layoutH {
		return
	}
	for _, img := range []*ebiten.Image{g.page, g.canvas, g.scene, g.scratch, g.small} {
		if img != nil {
			img.Deallocate()
		}
	}
	g.width, g.height = g.layoutW, g.layoutH
	g.page = ebiten.NewImage(g.width, g.height)
	g.canvas = ebiten.NewImage(g.width, g.height)
	g.scene = ebiten.NewImage(g.width, g.height)
	g.scratch = ebiten.NewImage(g.width, g.height)
	g.small = ebiten.NewImage(g.width, g.height)
	g.pageSurface = newSurface(g.page)
	g.canvasSurface = newSurface(g.canvas)
	g.sceneSurface = newSurface(g.scene)
	g.driver.Resize(float64(g.width), float64(g.height))
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.page == nil {
		return
	}
	g.page.Fill(render.Paper)
	g.driver.Draw(g.pageSurface, g.canvasSurface)
	ov := g.driver.Overlay()

	g.scene.Clear()
	g.scene.DrawImage(g.page, nil)
	if ov.Prism.Visible {
		g.sceneSurface.RadialGradient(ov.Prism.Center, ov.Prism.Radius, render.PrismStops)
	}
	for _, b := range ov.Blur {
		g.drawBlur(b)
	}
	g.scene.DrawImage(g.canvas, &ebiten.DrawImageOptions{Blend: multiply})

	screen.DrawImage(g.scene, nil)
	if ov.Lens.Visible {
		g.drawLens(screen, ov.Lens)
	}
	rings := newSurface(screen)
	for _, ring := range ov.Rings {
		radius := ring.Radius * ring.Scale
		glow := ring.Color()
		glow.A /= 2
		rings.StrokeCircle(ring.Center, radius, ring.Radius*0.1, glow)
		rings.StrokeCircle(ring.Center, radius, 2, ring.Color())
	}

	ebitenutil.DebugPrintAt(screen, g.status(), 12, 12)
}

// drawBlur samples the page at 1/blur scale and scales it back up inside
// the patch circle.
func (g *Game) drawBlur(b render.BlurPatch) {
	f := max(b.Blur, 1)
	origin := b.Center.Sub(vmath.V(b.Size/2, b.Size/2))

	g.small.Clear()
	op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
	op.GeoM.Translate(-origin.X, -origin.Y)
	op.GeoM.Scale(1/f, 1/f)
	g.small.DrawImage(g.page, op)

	g.scratch.Clear()
	vector.DrawFilledCircle(g.scratch, float32(b.Center.X), float32(b.Center.Y), float32(b.Size/2), color.White, true)
	op = &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear, Blend: ebiten.BlendSourceIn}
	op.GeoM.Scale(f, f)
	op.GeoM.Translate(origin.X, origin.Y)
	g.scratch.DrawImage(g.small, op)

	op = &ebiten.DrawImageOptions{}
	op.ColorScale.ScaleAlpha(float32(b.Opacity))
	g.scene.DrawImage(g.scratch, op)
}

// drawLens magnifies the scene inside the lens circle.
func (g *Game) drawLens(screen *ebiten.Image, l render.Lens) {
	if l.Zoom <= 0 || l.ClipRadius <= 0 {
		return
	}
	g.scratch.Clear()
	vector.DrawFilledCircle(g.scratch, float32(l.Center.X), float32(l.Center.Y), float32(l.ClipRadius), color.White, true)
	op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear, Blend: ebiten.BlendSourceIn}
	op.GeoM.Translate(-l.Center.X, -l.Center.Y)
	op.GeoM.Scale(l.Zoom, l.Zoom)
	op.GeoM.Translate(l.Center.X, l.Center.Y)
	g.scratch.DrawImage(g.scene, op)
	screen.DrawImage(g.scratch, nil)
}

func (g *Game) status() string {
	status := "O: open SVG, A: open audio"
	if pos, total, ok := g.player.Progress(); ok {
		state := "Playing"
		if g.paused {
			state = "Paused"
		}
		status = fmt.Sprintf("%s %s / %s - Space to toggle | %s",
			state, audio.FormatDuration(pos), audio.FormatDuration(total), status)
	}
	if g.lastErr != nil {
		status += " | Error: " + g.lastErr.Error()
	}
	return status
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.layoutW, g.layoutH = max(outsideWidth, 1), max(outsideHeight, 1)
	return g.layoutW, g.layoutH
}

func (g *Game) openDocuments() error {
	paths, err := selectDocuments()
	if err != nil || len(paths) == 0 {
		return err
	}
	docs, err := svgdoc.LoadFiles(paths)
	if len(docs) > 0 {
		g.driver.SetDocuments(docs)
		g.logger.Info("Loaded documents", zap.Int("count", len(docs)))
	}
	return err
}

func (g *Game) openTrack() error {
	path, err := selectTrack()
	if err != nil || path == "" {
		return err
	}
	if err := g.player.Load(path); err != nil {
		return err
	}
	g.paused = false
	return nil
}

// Close stops playback and tears the driver down. It is safe to call twice.
func (g *Game) Close() {
	if g.closed {
		return
	}
	g.closed = true
	g.driver.Close()
	g.player.Close()
}

// Run opens the window and blocks until it is closed.
func Run(cfg *config.Config, docs []*svgdoc.Document, logger *zap.Logger) error {
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.Window.TPS)

	g := NewGame(cfg, docs, logger)
	defer g.Close()
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

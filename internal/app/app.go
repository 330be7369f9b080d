//go:build ebiten

package app

import (
	"image/color"
	"log/slog"
	"time"

	"lifetrace/internal/core"
	"lifetrace/internal/render"
	"lifetrace/internal/session"
	"lifetrace/internal/store"
	"lifetrace/internal/ui"
	"lifetrace/pkg/sims/life"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const hudRows = 4

// Speed limits for the +/- keys.
const (
	minInterval = 10 * time.Millisecond
	maxInterval = 5 * time.Second
)

// SaveFunc persists the board when the user presses S (binary) or T (text).
type SaveFunc func(sim *life.Simulation, format store.Format) error

// Game adapts a session to the ebiten.Game interface.
type Game struct {
	sess    *session.Session
	log     *slog.Logger
	save    SaveFunc
	painter *render.GridPainter
	hud     *ui.HUD
	overlay *ui.Overlay
	pacer   *core.FixedStep
	raster  *core.ByteGrid
	palette []color.RGBA

	w, h  int
	scale int
}

// New constructs a Game for the session. save may be nil, in which case S
// and T do nothing.
func New(sess *session.Session, log *slog.Logger, save SaveFunc, scale int) *Game {
	var size struct{ w, h int }
	sess.View(func(sim *life.Simulation) { size.w, size.h = sim.Width(), sim.Height() })

	return &Game{
		sess:    sess,
		log:     log,
		save:    save,
		painter: render.NewGridPainter(size.w, size.h),
		hud:     ui.NewHUD(size.w * scale),
		overlay: ui.NewOverlay(size.w, size.h, scale),
		pacer:   core.NewFixedStep(sess.Status().Interval),
		raster:  core.NewByteGrid(size.w, size.h),
		palette: render.AgePalette(
			color.RGBA{R: 8, G: 8, B: 12, A: 255},
			color.RGBA{R: 255, G: 255, B: 255, A: 255},
			color.RGBA{R: 40, G: 90, B: 170, A: 255},
			48,
		),
		w:     size.w,
		h:     size.h,
		scale: scale,
	}
}

// Update handles per-frame input and paces autoplay.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	st := g.sess.Status()
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if st.Playing {
			g.sess.Pause()
		} else {
			g.pacer.Reset()
			g.sess.Play()
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) || inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.sess.Step()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) || inpututil.IsKeyJustPressed(ebiten.KeyB) {
		g.sess.StepBack()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.sess.SetReverse(!st.Reverse)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.sess.Pause()
		g.sess.Clear()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.hud.ToggleHelp()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		g.setInterval(st.Interval / 2)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		g.setInterval(st.Interval * 2)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.saveAs(store.Binary)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		g.saveAs(store.Text)
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		if mx >= 0 && my >= 0 && mx < g.w*g.scale && my < g.h*g.scale {
			g.sess.Toggle(mx/g.scale, my/g.scale)
		}
	}

	g.overlay.Update()

	if g.sess.Status().Playing && g.pacer.ShouldStep() {
		g.sess.Tick()
	}
	return nil
}

func (g *Game) saveAs(format store.Format) {
	if g.save == nil {
		return
	}
	var err error
	g.sess.View(func(sim *life.Simulation) { err = g.save(sim, format) })
	if err != nil {
		g.log.Error("save failed", "format", format, "err", err)
	}
}

func (g *Game) setInterval(d time.Duration) {
	d = min(max(d, minInterval), maxInterval)
	g.sess.SetInterval(d)
	g.pacer.SetInterval(d)
}

// Draw renders the board, the overlay and the HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	var snap core.ParameterSnapshot
	g.sess.View(func(sim *life.Simulation) {
		g.raster.Rasterize(sim)
		snap = core.Describe(sim)
	})
	g.painter.Blit(screen, g.raster.Cells(), g.palette, g.scale)
	g.overlay.Draw(screen)

	g.hud.Update(ui.StatusLines(snap, g.sess.Status()))
	g.hud.Draw(screen, g.h*g.scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.w * g.scale, g.h*g.scale + ui.Height(hudRows)
}

// WindowSize returns the window size needed to show the board and HUD.
func (g *Game) WindowSize() (int, int) {
	return g.Layout(0, 0)
}

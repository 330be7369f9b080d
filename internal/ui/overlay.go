//go:build ebiten

package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Overlay draws optional guides on top of the board: cell grid lines and a
// highlight under the cursor.
type Overlay struct {
	w, h     int
	scale    int
	showGrid bool
	hoverX   int
	hoverY   int
	pixel    *ebiten.Image
}

// NewOverlay constructs an overlay for a w*h board drawn at scale.
func NewOverlay(w, h, scale int) *Overlay {
	o := &Overlay{w: w, h: h, scale: scale, hoverX: -1, hoverY: -1}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update handles the overlay key binding and tracks the hovered cell.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		o.showGrid = !o.showGrid
	}
	mx, my := ebiten.CursorPosition()
	o.hoverX, o.hoverY = -1, -1
	if x, y := mx/o.scale, my/o.scale; mx >= 0 && my >= 0 && x < o.w && y < o.h {
		o.hoverX, o.hoverY = x, y
	}
}

// Draw renders the enabled guides.
func (o *Overlay) Draw(screen *ebiten.Image) {
	if o.showGrid && o.scale >= 4 {
		line := color.RGBA{R: 40, G: 40, B: 48, A: 255}
		for x := 1; x < o.w; x++ {
			o.rect(screen, x*o.scale, 0, 1, o.h*o.scale, line)
		}
		for y := 1; y < o.h; y++ {
			o.rect(screen, 0, y*o.scale, o.w*o.scale, 1, line)
		}
	}
	if o.hoverX >= 0 {
		o.rect(screen, o.hoverX*o.scale, o.hoverY*o.scale, o.scale, o.scale, color.RGBA{R: 90, G: 160, B: 255, A: 96})
	}
}

func (o *Overlay) rect(dst *ebiten.Image, x, y, w, h int, c color.RGBA) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(w), float64(h))
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	dst.DrawImage(o.pixel, op)
}

//go:build ebiten

package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

const (
	panelPadding = 8
	lineHeight   = 16
	lineBaseline = 12
)

// HUD renders the status panel below the board.
type HUD struct {
	width int
	lines []string
	help  bool
	panel *ebiten.Image
}

// NewHUD constructs a HUD panel of the given width.
func NewHUD(width int) *HUD {
	if width < 1 {
		width = 1
	}
	return &HUD{width: width, help: true}
}

// Height returns the panel height for up to lines rows of text plus help.
func Height(lines int) int {
	return 2*panelPadding + (lines+1)*lineHeight
}

// Update replaces the text shown by the panel.
func (h *HUD) Update(lines []string) {
	if h == nil {
		return
	}
	h.lines = lines
}

// ToggleHelp shows or hides the key binding line.
func (h *HUD) ToggleHelp() {
	if h != nil {
		h.help = !h.help
	}
}

// Draw paints the panel at vertical offset offsetY.
func (h *HUD) Draw(screen *ebiten.Image, offsetY int) {
	if h == nil {
		return
	}
	rows := len(h.lines)
	height := Height(rows)
	if h.panel == nil || h.panel.Bounds().Dy() != height {
		h.panel = ebiten.NewImage(h.width, height)
	}
	h.panel.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 255})

	face := basicfont.Face7x13
	y := panelPadding + lineBaseline
	for i, line := range h.lines {
		fg := color.RGBA{R: 200, G: 200, B: 210, A: 255}
		if i == 0 {
			fg = color.RGBA{R: 240, G: 240, B: 250, A: 255}
		}
		text.Draw(h.panel, line, face, panelPadding, y, fg)
		y += lineHeight
	}
	if h.help {
		text.Draw(h.panel, HelpLine, face, panelPadding, y, color.RGBA{R: 140, G: 140, B: 150, A: 255})
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(0, float64(offsetY))
	screen.DrawImage(h.panel, op)
}

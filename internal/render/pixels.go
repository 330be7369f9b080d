package render

import "image/color"

// AgePalette builds a palette for cell values produced by core.ByteGrid:
// index 0 is dead, index 1 is a newborn cell and each later index is one
// generation older, fading from young to old over steps entries. Values
// past the end of the palette use the last (oldest) colour.
func AgePalette(dead, young, old color.RGBA, steps int) []color.RGBA {
	if steps < 1 {
		steps = 1
	}
	palette := make([]color.RGBA, steps+1)
	palette[0] = dead
	for i := 0; i < steps; i++ {
		t := 0.0
		if steps > 1 {
			t = float64(i) / float64(steps-1)
		}
		palette[i+1] = lerp(young, old, t)
	}
	return palette
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5)
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

// fillPaletteRGBA converts cell values into RGBA pixels using a palette. When
// the palette is empty the buffer is cleared to transparent black.
func fillPaletteRGBA(buf []byte, cells []uint8, palette []color.RGBA) {
	if len(palette) == 0 {
		clear(buf[:len(cells)*4])
		return
	}

	last := len(palette) - 1
	for i, c := range cells {
		idx := int(c)
		if idx > last {
			idx = last
		}
		base := i * 4
		col := palette[idx]
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

package core

// ByteGrid stores a 2D grid of byte-sized cell values in row-major order.
type ByteGrid struct {
	W, H int
	data []uint8
}

// NewByteGrid allocates a grid with the given dimensions.
func NewByteGrid(w, h int) *ByteGrid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &ByteGrid{W: w, H: h, data: make([]uint8, w*h)}
}

// Cells exposes the backing slice so callers can read/write values directly.
func (g *ByteGrid) Cells() []uint8 { return g.data }

// Index returns the linear slice index for coordinates (x, y).
func (g *ByteGrid) Index(x, y int) int { return y*g.W + x }

// At returns the value stored at (x, y).
func (g *ByteGrid) At(x, y int) uint8 { return g.data[g.Index(x, y)] }

// Clear fills the grid with zeros.
func (g *ByteGrid) Clear() {
	clear(g.data)
}

// Rasterize writes the board into the grid: 0 for dead cells and age+1,
// saturating at 255, for live ones. The grid is resized to the board when
// the dimensions differ.
func (g *ByteGrid) Rasterize(b Board) {
	size := b.Size()
	if size.W != g.W || size.H != g.H {
		*g = *NewByteGrid(size.W, size.H)
	}
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			age, alive := b.Age(x, y)
			v := uint8(0)
			if alive {
				v = 255
				if age < 254 {
					v = uint8(age) + 1
				}
			}
			g.data[g.Index(x, y)] = v
		}
	}
}

package life

// Grid maps a flattened cell index to the age of the live cell stored there.
// Dead cells are absent.
type Grid map[int]uint32

var neighborOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Clone returns an independent copy of the grid.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for idx, age := range g {
		out[idx] = age
	}
	return out
}

// Equal reports whether both grids hold the same cells with the same ages.
func (g Grid) Equal(other Grid) bool {
	if len(g) != len(other) {
		return false
	}
	for idx, age := range g {
		if a, ok := other[idx]; !ok || a != age {
			return false
		}
	}
	return true
}

// Neighbors returns the indices adjacent to idx. Bounded boards drop
// off-board coordinates, so edge and corner cells yield fewer than eight.
func Neighbors(idx int, s Settings) []int {
	return appendNeighbors(make([]int, 0, 8), idx, s)
}

func appendNeighbors(dst []int, idx int, s Settings) []int {
	x, y := s.Coords(idx)
	for _, off := range neighborOffsets {
		nx, ny := x+off[0], y+off[1]
		if s.Toroidal {
			nx = (nx%s.Width + s.Width) % s.Width
			ny = (ny%s.Height + s.Height) % s.Height
		} else if !s.Contains(nx, ny) {
			continue
		}
		dst = append(dst, s.Index(nx, ny))
	}
	return dst
}

// Step applies one generation of the rule to g and returns the next grid.
// Every count is taken against g, which is left untouched.
func Step(g Grid, s Settings) Grid {
	next := make(Grid, len(g))
	seen := make(map[int]struct{}, len(g)*4)

	var around, inner [8]int
	consider := func(idx int) {
		if _, ok := seen[idx]; ok {
			return
		}
		seen[idx] = struct{}{}

		count := 0
		for _, n := range appendNeighbors(inner[:0], idx, s) {
			if _, ok := g[n]; ok {
				count++
			}
		}

		if age, alive := g[idx]; alive {
			if count >= s.MinNeighbors && count <= s.MaxNeighbors {
				next[idx] = age + 1
			}
			return
		}
		if count == s.NeededNeighbors {
			next[idx] = 0
		}
	}

	// Only live cells and their neighbours can change state.
	for idx := range g {
		consider(idx)
		for _, n := range appendNeighbors(around[:0], idx, s) {
			consider(n)
		}
	}
	return next
}

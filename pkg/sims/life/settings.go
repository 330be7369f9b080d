package life

import "fmt"

// Default rule parameters: survive with 2 or 3 neighbours, birth with 3.
const (
	DefaultMinNeighbors    = 2
	DefaultMaxNeighbors    = 3
	DefaultNeededNeighbors = 3
)

// Settings holds the rule thresholds and board geometry for a simulation.
// It is a value type and is never mutated once a Simulation is built.
type Settings struct {
	MinNeighbors    int
	MaxNeighbors    int
	NeededNeighbors int
	Width           int
	Height          int
	Toroidal        bool
}

// DefaultSettings returns the classic Conway rules on a toroidal w×h board.
func DefaultSettings(w, h int) Settings {
	return Settings{
		MinNeighbors:    DefaultMinNeighbors,
		MaxNeighbors:    DefaultMaxNeighbors,
		NeededNeighbors: DefaultNeededNeighbors,
		Width:           w,
		Height:          h,
		Toroidal:        true,
	}
}

// Validate reports whether the settings describe a playable board.
func (s Settings) Validate() error {
	if s.MinNeighbors <= 0 || s.MinNeighbors > s.MaxNeighbors || s.MaxNeighbors > 8 {
		return fmt.Errorf("%w: survival range %d..%d", ErrInvalidSettings, s.MinNeighbors, s.MaxNeighbors)
	}
	if s.NeededNeighbors < 0 || s.NeededNeighbors > 8 {
		return fmt.Errorf("%w: birth count %d", ErrInvalidSettings, s.NeededNeighbors)
	}
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: board %dx%d", ErrInvalidSettings, s.Width, s.Height)
	}
	return nil
}

// Cells returns the number of cells on the board.
func (s Settings) Cells() int { return s.Width * s.Height }

// Index converts board coordinates to a flattened cell index.
func (s Settings) Index(x, y int) int { return x + y*s.Width }

// Coords converts a flattened cell index back to board coordinates.
func (s Settings) Coords(idx int) (int, int) { return idx % s.Width, idx / s.Width }

// Contains reports whether (x, y) lies on the board.
func (s Settings) Contains(x, y int) bool {
	return x >= 0 && x < s.Width && y >= 0 && y < s.Height
}

// Rule renders the thresholds in the usual B/S notation, e.g. "B3/S23".
func (s Settings) Rule() string {
	survive := ""
	for n := s.MinNeighbors; n <= s.MaxNeighbors; n++ {
		survive += fmt.Sprint(n)
	}
	return fmt.Sprintf("B%d/S%s", s.NeededNeighbors, survive)
}

func (s Settings) String() string {
	topology := "bounded"
	if s.Toroidal {
		topology = "toroidal"
	}
	return fmt.Sprintf("%dx%d %s %s", s.Width, s.Height, topology, s.Rule())
}

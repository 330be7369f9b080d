// Package life implements a generalized Game of Life whose history can be
// stepped backwards or replayed to any earlier step.
package life

import (
	"lifetrace/pkg/core"
)

// Simulation holds the board, the step counter, the user's toggle history
// and a cache of recently replayed grids. It is not safe for concurrent use.
type Simulation struct {
	settings Settings
	step     uint64
	cells    Grid
	history  History
	cache    *stepCache
}

// Option customizes a Simulation at construction time.
type Option func(*Simulation)

// WithCacheWindow sets how many steps before a replay target are kept as
// snapshots.
func WithCacheWindow(window uint64) Option {
	return func(s *Simulation) { s.cache = newStepCache(window) }
}

// New returns an empty simulation at step 0.
func New(settings Settings, opts ...Option) (*Simulation, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	s := &Simulation{
		settings: settings,
		cells:    make(Grid),
		cache:    newStepCache(CacheWindow),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Size returns the grid dimensions.
func (s *Simulation) Size() core.Size { return core.Size{W: s.settings.Width, H: s.settings.Height} }

// Width returns the board width.
func (s *Simulation) Width() int { return s.settings.Width }

// Height returns the board height.
func (s *Simulation) Height() int { return s.settings.Height }

// CurrentStep returns the generation currently on the board.
func (s *Simulation) CurrentStep() uint64 { return s.step }

// Settings returns the rules and geometry the simulation was built with.
func (s *Simulation) Settings() Settings { return s.settings }

// Cells returns a copy of the live cells keyed by index.
func (s *Simulation) Cells() Grid { return s.cells.Clone() }

// Population returns the number of live cells.
func (s *Simulation) Population() int { return len(s.cells) }

// Age returns the age of the cell at (x, y) and whether it is alive.
func (s *Simulation) Age(x, y int) (uint32, bool) {
	if !s.settings.Contains(x, y) {
		return 0, false
	}
	age, ok := s.cells[s.settings.Index(x, y)]
	return age, ok
}

// Alive reports whether the cell at (x, y) is alive.
func (s *Simulation) Alive(x, y int) bool {
	_, ok := s.Age(x, y)
	return ok
}

// History returns a copy of the toggles recorded at step.
func (s *Simulation) History(step uint64) []Toggle {
	return append([]Toggle(nil), s.history.At(step)...)
}

// EditedSteps lists the steps that carry user toggles.
func (s *Simulation) EditedSteps() []uint64 { return s.history.Steps() }

// Edits returns the total number of recorded toggles.
func (s *Simulation) Edits() int { return s.history.Len() }

// Toggle flips the cell at (x, y) and records the flip at the current step.
// Coordinates off the board are ignored.
func (s *Simulation) Toggle(x, y int) {
	if !s.settings.Contains(x, y) {
		return
	}
	idx := s.settings.Index(x, y)
	_, alive := s.cells[idx]
	if alive {
		delete(s.cells, idx)
	} else {
		s.cells[idx] = 0
	}
	s.history.Record(s.step, Toggle{Index: idx, Alive: !alive})
	s.cache.invalidateFrom(s.step)
}

// Scatter toggles each dead cell to alive with probability density. The
// flips are recorded like any other toggle.
func (s *Simulation) Scatter(rng *core.RNG, density float64) {
	for y := 0; y < s.settings.Height; y++ {
		for x := 0; x < s.settings.Width; x++ {
			if !s.Alive(x, y) && rng.Chance(density) {
				s.Toggle(x, y)
			}
		}
	}
}

// Step advances the simulation by one generation. Toggles already recorded
// for the step being entered are applied, so stepping forward agrees with a
// replay of the same history.
func (s *Simulation) Step() {
	s.cells = Step(s.cells, s.settings)
	s.step++
	s.cells.apply(s.history.At(s.step))
}

// StepBack rewinds one generation and forgets the toggles recorded at the
// step being left. It does nothing at step 0.
func (s *Simulation) StepBack() {
	if s.step == 0 {
		return
	}
	vacated := s.step
	s.StepTo(vacated - 1)
	s.history.Discard(vacated)
	s.cache.invalidateFrom(vacated)
}

// StepTo moves the board to target. A cached snapshot is consumed when one
// exists; otherwise the board is rebuilt by replaying the history from step
// 0, snapshotting the last CacheWindow steps on the way.
func (s *Simulation) StepTo(target uint64) {
	if g, ok := s.cache.take(target); ok {
		s.cells = g
		s.step = target
		return
	}

	s.cache.reset()
	grid := make(Grid)
	for step := uint64(0); ; step++ {
		grid.apply(s.history.At(step))
		if s.cache.admits(step, target) {
			s.cache.put(step, grid.Clone())
		}
		if step == target {
			break
		}
		grid = Step(grid, s.settings)
	}
	s.cells = grid
	s.step = target
}

// DropCache empties the replay cache. Results are unaffected; later
// StepTo calls replay from step 0.
func (s *Simulation) DropCache() { s.cache.reset() }

// CachedSteps returns how many replay snapshots are currently held.
func (s *Simulation) CachedSteps() int { return s.cache.len() }

// Clear resets the board to an empty step 0 and forgets all history.
func (s *Simulation) Clear() {
	s.step = 0
	s.cells = make(Grid)
	s.history = nil
	s.cache.reset()
}

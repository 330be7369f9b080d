// Package session serializes access to a life.Simulation and drives it on
// an autoplay timer. Every engine call goes through one mutex, so a viewer,
// a command loop and the autoplay goroutine can share a simulation.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"lifetrace/internal/logging"
	"lifetrace/pkg/sims/life"
)

// DefaultInterval is the autoplay delay between generations.
const DefaultInterval = 275 * time.Millisecond

// ErrNoSimulation is returned by Replace when given a nil simulation.
var ErrNoSimulation = errors.New("no simulation")

// Status is a snapshot of the session taken under its lock.
type Status struct {
	Step       uint64
	Population int
	Playing    bool
	Reverse    bool
	Interval   time.Duration
}

// Session owns a simulation and the autoplay state around it.
type Session struct {
	mu  sync.Mutex
	sim *life.Simulation
	log *slog.Logger

	playing  bool
	reverse  bool
	interval time.Duration

	wake      chan struct{}
	listeners []func(Status)
}

// New wraps sim. A nil logger discards output; a non-positive interval
// falls back to DefaultInterval.
func New(sim *life.Simulation, log *slog.Logger, interval time.Duration) *Session {
	if log == nil {
		log = logging.Discard()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Session{
		sim:      sim,
		log:      log,
		interval: interval,
		wake:     make(chan struct{}, 1),
	}
}

// OnChange registers fn to be called after every change to the board or
// the autoplay state. fn runs without the session lock held.
func (s *Session) OnChange(fn func(Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// View runs fn with exclusive access to the simulation. fn must not retain
// the pointer or call back into the session.
func (s *Session) View(fn func(sim *life.Simulation)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.sim)
}

// Status returns the current step, population and autoplay state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Session) statusLocked() Status {
	return Status{
		Step:       s.sim.CurrentStep(),
		Population: s.sim.Population(),
		Playing:    s.playing,
		Reverse:    s.reverse,
		Interval:   s.interval,
	}
}

// mutate applies fn under the lock and then notifies listeners.
func (s *Session) mutate(fn func(sim *life.Simulation)) {
	s.mu.Lock()
	fn(s.sim)
	st := s.statusLocked()
	listeners := append([]func(Status)(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(st)
	}
}

// Toggle flips the cell at (x, y).
func (s *Session) Toggle(x, y int) {
	s.mutate(func(sim *life.Simulation) { sim.Toggle(x, y) })
}

// Step advances one generation.
func (s *Session) Step() {
	s.mutate(func(sim *life.Simulation) { sim.Step() })
}

// StepBack rewinds one generation.
func (s *Session) StepBack() {
	s.mutate(func(sim *life.Simulation) { sim.StepBack() })
}

// StepTo jumps to target.
func (s *Session) StepTo(target uint64) {
	s.mutate(func(sim *life.Simulation) { sim.StepTo(target) })
}

// StepToContext jumps to target unless ctx is already done. The replay
// itself is not interruptible.
func (s *Session) StepToContext(ctx context.Context, target uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.StepTo(target)
	return nil
}

// Clear empties the board and its history.
func (s *Session) Clear() {
	s.mutate(func(sim *life.Simulation) { sim.Clear() })
}

// Replace swaps in a different simulation, e.g. after loading a save.
// Autoplay is paused.
func (s *Session) Replace(sim *life.Simulation) error {
	if sim == nil {
		return ErrNoSimulation
	}
	s.log.Info("new game", "settings", sim.Settings().String(), "step", sim.CurrentStep())
	s.Pause()
	s.mutate(func(*life.Simulation) { s.sim = sim })
	return nil
}

// Play starts autoplay.
func (s *Session) Play() { s.setPlaying(true) }

// Pause stops autoplay.
func (s *Session) Pause() { s.setPlaying(false) }

func (s *Session) setPlaying(on bool) {
	s.mu.Lock()
	changed := s.playing != on
	s.playing = on
	s.mu.Unlock()
	if !changed {
		return
	}
	s.log.Info("autoplay", "playing", on)
	s.signal()
	s.mutate(func(*life.Simulation) {})
}

// SetReverse selects whether autoplay steps backwards.
func (s *Session) SetReverse(on bool) {
	s.mu.Lock()
	s.reverse = on
	s.mu.Unlock()
	s.mutate(func(*life.Simulation) {})
}

// SetInterval changes the autoplay delay. Non-positive values are ignored.
func (s *Session) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	s.interval = d
	s.mu.Unlock()
	s.signal()
}

func (s *Session) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Tick performs one autoplay step and reports whether the board moved.
// In reverse, autoplay pauses itself when it reaches step 0.
func (s *Session) Tick() bool {
	s.mu.Lock()
	if !s.playing {
		s.mu.Unlock()
		return false
	}
	step := s.sim.CurrentStep()
	if s.reverse {
		if step <= 1 {
			s.playing = false
		}
		if step == 0 {
			s.mu.Unlock()
			s.log.Info("autoplay", "playing", false, "reason", "reached step 0")
			s.mutate(func(*life.Simulation) {})
			return false
		}
		s.sim.StepBack()
	} else {
		s.sim.Step()
	}
	st := s.statusLocked()
	listeners := append([]func(Status)(nil), s.listeners...)
	s.mu.Unlock()

	s.log.Log(context.Background(), logging.LevelTrace, "tick", "step", st.Step, "population", st.Population, "reverse", st.Reverse)
	for _, l := range listeners {
		l(st)
	}
	return true
}

// Run drives autoplay until ctx is cancelled. While paused it sleeps until
// Play or SetInterval wakes it.
func (s *Session) Run(ctx context.Context) error {
	for {
		s.mu.Lock()
		playing, interval := s.playing, s.interval
		s.mu.Unlock()

		if !playing {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.wake:
				continue
			}
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-s.wake:
			timer.Stop()
		case <-timer.C:
			s.Tick()
		}
	}
}

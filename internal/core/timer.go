package core

import "time"

// FixedStep helps run simulation updates at a steady interval from a frame loop.
type FixedStep struct {
	step        time.Duration
	accumulator time.Duration
	last        time.Time
	now         func() time.Time
}

// NewFixedStep constructs a FixedStep controller firing once per interval.
func NewFixedStep(interval time.Duration) *FixedStep {
	fs := &FixedStep{now: time.Now}
	fs.SetInterval(interval)
	fs.accumulator = fs.step
	return fs
}

// SetInterval changes the tick interval. It is safe to call from the main loop.
func (f *FixedStep) SetInterval(d time.Duration) {
	if d <= 0 {
		d = time.Second / 60
	}
	f.step = d
}

// Interval returns the current tick interval.
func (f *FixedStep) Interval() time.Duration { return f.step }

// Reset discards accumulated time so the next tick waits a full interval.
func (f *FixedStep) Reset() {
	f.accumulator = 0
	f.last = time.Time{}
}

// ShouldStep reports whether the simulation should advance by one tick.
func (f *FixedStep) ShouldStep() bool {
	now := f.now()
	if f.last.IsZero() {
		f.last = now
	}
	delta := now.Sub(f.last)
	f.last = now
	f.accumulator += delta
	if f.accumulator >= f.step {
		f.accumulator -= f.step
		return true
	}
	return false
}

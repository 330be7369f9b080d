package life

import "slices"

// Toggle records a single user flip and the state the cell ended up in.
type Toggle struct {
	Index int
	Alive bool
}

// History is the per-step toggle log. Only steps the user edited have an
// entry, so its size follows the number of edits, not the step counter.
type History map[uint64][]Toggle

// Record appends t to the toggles made at step.
func (h *History) Record(step uint64, t Toggle) {
	if *h == nil {
		*h = make(History)
	}
	(*h)[step] = append((*h)[step], t)
}

// At returns the toggles recorded at step. The slice must not be modified.
func (h History) At(step uint64) []Toggle {
	return h[step]
}

// Discard forgets every toggle recorded at step.
func (h History) Discard(step uint64) {
	delete(h, step)
}

// Steps lists the steps that carry at least one toggle, in ascending order.
func (h History) Steps() []uint64 {
	steps := make([]uint64, 0, len(h))
	for step, toggles := range h {
		if len(toggles) > 0 {
			steps = append(steps, step)
		}
	}
	slices.Sort(steps)
	return steps
}

// Len returns the total number of recorded toggles.
func (h History) Len() int {
	n := 0
	for _, toggles := range h {
		n += len(toggles)
	}
	return n
}

func (h History) clone() map[uint64][]Toggle {
	out := make(map[uint64][]Toggle, len(h))
	for step, toggles := range h {
		if len(toggles) > 0 {
			out[step] = append([]Toggle(nil), toggles...)
		}
	}
	return out
}

func (g Grid) apply(toggles []Toggle) {
	for _, t := range toggles {
		if t.Alive {
			g[t.Index] = 0
		} else {
			delete(g, t.Index)
		}
	}
}

package life

// CacheWindow is how many steps before a replay target get snapshotted.
const CacheWindow = 100

// stepCache keeps grid snapshots taken during the most recent replay. A
// snapshot is handed out at most once; a miss always falls back to a full
// replay, so the cache only ever affects latency.
type stepCache struct {
	window uint64
	snaps  map[uint64]Grid
}

func newStepCache(window uint64) *stepCache {
	return &stepCache{window: window, snaps: make(map[uint64]Grid)}
}

// admits reports whether step falls inside the window ending at target.
func (c *stepCache) admits(step, target uint64) bool {
	return step <= target && target-step <= c.window
}

func (c *stepCache) put(step uint64, g Grid) {
	c.snaps[step] = g
}

// take removes and returns the snapshot for step.
func (c *stepCache) take(step uint64) (Grid, bool) {
	g, ok := c.snaps[step]
	if ok {
		delete(c.snaps, step)
	}
	return g, ok
}

// invalidateFrom drops snapshots at or after step, which were computed from
// history that has since changed.
func (c *stepCache) invalidateFrom(step uint64) {
	for s := range c.snaps {
		if s >= step {
			delete(c.snaps, s)
		}
	}
}

func (c *stepCache) reset() {
	clear(c.snaps)
}

func (c *stepCache) len() int { return len(c.snaps) }

package core

import "lifetrace/pkg/core"

// Board is the read-only view of a simulation that renderers consume.
type Board interface {
	Size() core.Size
	Age(x, y int) (uint32, bool)
	CurrentStep() uint64
}

package runloop

import "sync/atomic"

// gate is the single wake-requested flag. Interrupt handlers and Trigger set
// it; only the idle check clears it, with interrupts masked.
type gate struct {
	requested atomic.Bool
}

func (g *gate) set() {
	g.requested.Store(true)
}

// take clears the flag and reports whether it was set. Callers must have
// interrupts masked.
func (g *gate) take() bool {
	return g.requested.Swap(false)
}

func (g *gate) clear() {
	g.requested.Store(false)
}

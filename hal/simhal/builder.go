package simhal

import (
	"sync"
	"time"
)

// Builder can build simulated boards.
type Builder struct {
	tickPeriodMS uint32
	freeRunning  bool
	wakeInterval time.Duration
}

// MakeBuilder creates a builder with a 10 ms tick and a manual clock.
func MakeBuilder() Builder {
	return Builder{
		tickPeriodMS: 10,
	}
}

// WithTickPeriodMS sets the tick period reported to the run loop.
func (b Builder) WithTickPeriodMS(ms uint32) Builder {
	b.tickPeriodMS = ms
	return b
}

// WithFreeRunningClock makes the board follow wall-clock time. Ticks are
// generated by a background goroutine once Start is called.
func (b Builder) WithFreeRunningClock() Builder {
	b.freeRunning = true
	return b
}

// WithWakeInterval adds a periodic bare wakeup interrupt on a free running
// board. It models peripherals that wake the CPU without touching the run
// loop's state.
func (b Builder) WithWakeInterval(d time.Duration) Builder {
	b.wakeInterval = d
	return b
}

// Build creates the board.
func (b Builder) Build() *Board {
	if b.tickPeriodMS == 0 {
		panic("simhal: tick period must be positive")
	}

	board := &Board{
		tickPeriodMS: b.tickPeriodMS,
		freeRunning:  b.freeRunning,
		wakeInterval: b.wakeInterval,
		startTime:    time.Now(),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	board.wakeCond = sync.NewCond(&board.irqLock)

	return board
}

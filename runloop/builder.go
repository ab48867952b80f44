package runloop

import (
	"log"
	"os"

	"github.com/sarchlab/runloop/hal"
	"github.com/sarchlab/runloop/id"
)

// Builder can build embedded run loops.
type Builder struct {
	cpu       hal.CPU
	tickTimer hal.TickTimer
	msClock   hal.MillisecondClock
	logger    *log.Logger
	idGen     id.IDGenerator
}

// MakeBuilder creates a builder with no time base, logging to stderr.
func MakeBuilder() Builder {
	return Builder{}
}

// WithCPU sets the interrupt and sleep control. It is required.
func (b Builder) WithCPU(cpu hal.CPU) Builder {
	b.cpu = cpu
	return b
}

// WithTickTimer selects the tick time base.
func (b Builder) WithTickTimer(t hal.TickTimer) Builder {
	b.tickTimer = t
	return b
}

// WithMillisecondClock selects the millisecond time base.
func (b Builder) WithMillisecondClock(c hal.MillisecondClock) Builder {
	b.msClock = c
	return b
}

// WithLogger sets the logger used for diagnostics.
func (b Builder) WithLogger(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

// WithIDGenerator sets how sources without an ID get one.
func (b Builder) WithIDGenerator(g id.IDGenerator) Builder {
	b.idGen = g
	return b
}

// Build creates the loop and initializes it. Selecting both a tick timer and a
// millisecond clock panics; selecting neither builds a loop without timer
// support.
func (b Builder) Build() *Embedded {
	if b.cpu == nil {
		panic("runloop: a CPU is required")
	}

	if b.tickTimer != nil && b.msClock != nil {
		panic("runloop: specify either a tick timer or a millisecond clock")
	}

	l := &Embedded{
		cpu:    b.cpu,
		clock:  noClock{},
		logger: b.logger,
		idGen:  b.idGen,
	}

	switch {
	case b.tickTimer != nil:
		l.clock = &tickClock{timer: b.tickTimer}
	case b.msClock != nil:
		l.clock = &msClock{source: b.msClock}
	}

	if l.logger == nil {
		l.logger = log.New(os.Stderr, "runloop: ", log.LstdFlags)
	}

	if l.idGen == nil {
		l.idGen = id.NewIDGenerator()
	}

	l.Init()

	return l
}

package runloop

import (
	"math"
	"sync/atomic"

	"github.com/sarchlab/runloop/hal"
)

// TimeBase names the clock model a loop is built with.
type TimeBase int

// The time bases are mutually exclusive.
const (
	TimeBaseNone TimeBase = iota
	TimeBaseTick
	TimeBaseMillisecond
)

func (t TimeBase) String() string {
	switch t {
	case TimeBaseTick:
		return "tick"
	case TimeBaseMillisecond:
		return "ms"
	default:
		return "none"
	}
}

// clock converts relative timeouts into deadlines and tells the current time
// in the deadline unit.
type clock interface {
	kind() TimeBase
	init(onTick func())
	now() uint32
	deadline(timeoutMS uint32) uint32
	timeMS() uint32
	ticks() uint32
	ticksForMS(ms uint32) uint32
}

// tickClock counts periodic tick interrupts. The counter is written from
// interrupt context and read without masking; readers tolerate a stale value
// thanks to the extra tick added to every deadline.
type tickClock struct {
	timer   hal.TickTimer
	counter atomic.Uint32
}

func (c *tickClock) kind() TimeBase {
	return TimeBaseTick
}

func (c *tickClock) init(onTick func()) {
	c.counter.Store(0)
	c.timer.Init()
	c.timer.SetHandler(func() {
		c.counter.Add(1)
		onTick()
	})
}

func (c *tickClock) periodMS() uint32 {
	if p := c.timer.PeriodMS(); p > 0 {
		return p
	}

	return 1
}

func (c *tickClock) now() uint32 {
	return c.counter.Load()
}

// deadline never lets a timer fire early. The timeout is rounded up to whole
// ticks, to at least one, and one more tick is added because the phase of
// the current tick interval is unknown.
func (c *tickClock) deadline(timeoutMS uint32) uint32 {
	period := c.periodMS()

	ticks := timeoutMS / period
	if timeoutMS%period != 0 {
		ticks++
	}

	if ticks == 0 {
		ticks = 1
	}

	return saturatingAdd(c.counter.Load(), ticks, 1)
}

func (c *tickClock) timeMS() uint32 {
	return c.counter.Load() * c.periodMS()
}

func (c *tickClock) ticks() uint32 {
	return c.counter.Load()
}

func (c *tickClock) ticksForMS(ms uint32) uint32 {
	return ms / c.periodMS()
}

// saturatingAdd sums deadline terms, clamping at math.MaxUint32 so a long
// timeout cannot wrap to a deadline in the past.
func saturatingAdd(terms ...uint32) uint32 {
	var sum uint32

	for _, t := range terms {
		if t > math.MaxUint32-sum {
			return math.MaxUint32
		}

		sum += t
	}

	return sum
}

// msClock reads a monotonic millisecond clock. It has no periodic interrupt.
type msClock struct {
	source hal.MillisecondClock
}

func (c *msClock) kind() TimeBase {
	return TimeBaseMillisecond
}

func (c *msClock) init(func()) {}

func (c *msClock) now() uint32 {
	return c.source.NowMS()
}

func (c *msClock) deadline(timeoutMS uint32) uint32 {
	return saturatingAdd(c.source.NowMS(), timeoutMS, 1)
}

func (c *msClock) timeMS() uint32 {
	return c.source.NowMS()
}

func (c *msClock) ticks() uint32 {
	return 0
}

func (c *msClock) ticksForMS(uint32) uint32 {
	return 0
}

// noClock is used when the loop is built without a time base. Timers are not
// supported and every time query reports zero.
type noClock struct{}

func (noClock) kind() TimeBase { return TimeBaseNone }
func (noClock) init(func()) {}
func (noClock) now() uint32 { return 0 }
func (noClock) deadline(uint32) uint32 { return 0 }
func (noClock) timeMS() uint32 { return 0 }
func (noClock) ticks() uint32 { return 0 }
func (noClock) ticksForMS(uint32) uint32 { return 0 }

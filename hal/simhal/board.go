// Package simhal provides a host-simulated board implementing the hal
// interfaces.
//
// Interrupt context is modelled by goroutines that must hold the board's
// interrupt lock while a handler runs. Main context holds the same lock while
// interrupts are masked, so a handler can never interleave with a masked
// section. EnableIRQsAndSleep releases the lock and waits on a condition
// variable in a single step, which gives the same no-missed-wakeup guarantee a
// wait-for-interrupt instruction gives on hardware.
package simhal

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sarchlab/runloop/hal"
)

// Board is a simulated microcontroller.
type Board struct {
	irqLock     sync.Mutex
	wakeCond    *sync.Cond
	interrupted bool
	sleeping    atomic.Bool
	sleeps      atomic.Uint64
	interrupts  atomic.Uint64

	tickPeriodMS uint32
	tickHandler  hal.InterruptHandler
	tickEnabled  bool

	freeRunning  bool
	wakeInterval time.Duration
	startTime    time.Time
	manualMS     atomic.Uint32

	startOnce sync.Once
	started   atomic.Bool
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

var (
	_ hal.CPU              = (*Board)(nil)
	_ hal.TickTimer        = (*Board)(nil)
	_ hal.MillisecondClock = (*Board)(nil)
)

// DisableIRQs masks interrupts.
func (b *Board) DisableIRQs() {
	b.irqLock.Lock()
}

// EnableIRQs unmasks interrupts.
func (b *Board) EnableIRQs() {
	b.irqLock.Unlock()
}

// EnableIRQsAndSleep unmasks interrupts and waits for the next interrupt. It
// must be called with interrupts masked.
func (b *Board) EnableIRQsAndSleep() {
	b.interrupted = false
	b.sleeps.Add(1)
	b.sleeping.Store(true)

	for !b.interrupted {
		b.wakeCond.Wait()
	}

	b.sleeping.Store(false)
	b.irqLock.Unlock()
}

// RaiseInterrupt runs the handler in interrupt context and wakes the CPU if it
// is sleeping. A nil handler models an interrupt whose only effect is the
// wakeup.
func (b *Board) RaiseInterrupt(handler hal.InterruptHandler) {
	b.irqLock.Lock()
	defer b.irqLock.Unlock()

	b.interrupts.Add(1)

	if handler != nil {
		handler()
	}

	b.interrupted = true
	b.wakeCond.Broadcast()
}

// Sleeping tells if the CPU is currently in the low-power wait.
func (b *Board) Sleeping() bool {
	return b.sleeping.Load()
}

// Sleeps returns how many times the CPU entered the low-power wait.
func (b *Board) Sleeps() uint64 {
	return b.sleeps.Load()
}

// Interrupts returns how many interrupts have been raised.
func (b *Board) Interrupts() uint64 {
	return b.interrupts.Load()
}

// Init enables the tick interrupt. Ticks are delivered by Tick, or by the
// background clock after Start on a free running board.
func (b *Board) Init() {
	b.irqLock.Lock()
	b.tickEnabled = true
	b.irqLock.Unlock()
}

// SetHandler registers the tick interrupt handler.
func (b *Board) SetHandler(handler hal.InterruptHandler) {
	b.irqLock.Lock()
	b.tickHandler = handler
	b.irqLock.Unlock()
}

// PeriodMS returns the tick period in milliseconds.
func (b *Board) PeriodMS() uint32 {
	return b.tickPeriodMS
}

// NowMS returns the milliseconds elapsed on the board.
func (b *Board) NowMS() uint32 {
	if b.freeRunning {
		return uint32(time.Since(b.startTime).Milliseconds())
	}

	return b.manualMS.Load()
}

// Tick delivers one tick period. On a manual board the millisecond clock
// advances by the tick period. The tick interrupt only reaches the handler
// after Init; before that the interrupt merely wakes the CPU.
func (b *Board) Tick() {
	if !b.freeRunning {
		b.manualMS.Add(b.tickPeriodMS)
	}

	b.RaiseInterrupt(b.deliverTick)
}

func (b *Board) deliverTick() {
	if b.tickEnabled && b.tickHandler != nil {
		b.tickHandler()
	}
}

// AdvanceMS moves the manual millisecond clock forward and raises a wakeup
// interrupt, as a compare-match timer would. It has no effect on the clock of
// a free running board.
func (b *Board) AdvanceMS(ms uint32) {
	if !b.freeRunning {
		b.manualMS.Add(ms)
	}

	b.RaiseInterrupt(nil)
}

// Start launches the background clock of a free running board. Each tick
// period a tick is delivered. If a wake interval is configured, an additional
// bare wakeup interrupt is raised at that interval. Start does nothing on a
// manual board.
func (b *Board) Start() {
	if !b.freeRunning {
		return
	}

	b.startOnce.Do(func() {
		b.started.Store(true)
		go b.runClock()
	})
}

// Stop terminates the background clock and waits for it to exit.
func (b *Board) Stop() {
	b.stopOnce.Do(func() {
		close(b.stop)
	})

	if b.started.Load() {
		<-b.done
	}
}

func (b *Board) runClock() {
	defer close(b.done)

	tick := time.NewTicker(time.Duration(b.tickPeriodMS) * time.Millisecond)
	defer tick.Stop()

	var wake <-chan time.Time
	if b.wakeInterval > 0 {
		wakeTicker := time.NewTicker(b.wakeInterval)
		defer wakeTicker.Stop()
		wake = wakeTicker.C
	}

	for {
		select {
		case <-b.stop:
			return
		case <-tick.C:
			b.Tick()
		case <-wake:
			b.RaiseInterrupt(nil)
		}
	}
}

// Package hal defines the hardware abstraction consumed by the run loop.
//
// Implementations live outside the run loop. The run loop never programs
// peripherals itself; it only masks interrupts, sleeps, and reads time.
package hal

// InterruptHandler is a callback invoked from interrupt context. It must only
// perform a minimal state update (bump a counter, set a flag) and return.
type InterruptHandler func()

// CPU controls interrupt masking and the low-power wait.
type CPU interface {
	// DisableIRQs masks all interrupts.
	DisableIRQs()

	// EnableIRQs unmasks interrupts.
	EnableIRQs()

	// EnableIRQsAndSleep must be called with interrupts masked. It unmasks
	// interrupts and enters the low-power wait as a single step, so that an
	// interrupt arriving right after the unmask still ends the wait.
	EnableIRQsAndSleep()
}

// TickTimer is a periodic interrupt source.
type TickTimer interface {
	// Init starts the periodic interrupt.
	Init()

	// SetHandler registers the single consumer of the tick interrupt. The
	// handler runs in interrupt context.
	SetHandler(handler InterruptHandler)

	// PeriodMS reports the tick period in milliseconds.
	PeriodMS() uint32
}

// MillisecondClock is a free running monotonic millisecond clock.
type MillisecondClock interface {
	NowMS() uint32
}

// InterruptRaiser is implemented by boards that can raise an interrupt on
// request, such as a software-generated interrupt or a simulated board. The
// handler runs in interrupt context and the CPU leaves its low-power wait.
type InterruptRaiser interface {
	RaiseInterrupt(handler InterruptHandler)
}

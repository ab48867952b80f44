// Package runloop implements a cooperative run loop for devices without an
// operating system scheduler.
//
// A single thread polls every registered DataSource once per pass, fires the
// TimerSources whose deadline has passed, and then either starts the next
// pass right away, if an interrupt asked for it, or suspends the CPU until
// the next interrupt. Interrupt handlers only call Trigger or bump the tick
// counter; real work is deferred to data sources and timers.
package runloop

// RunLoop is the operation set the rest of a communication stack uses. Other
// backends, such as a POSIX select loop, implement the same interface.
type RunLoop interface {
	// Init empties the loop and registers its interrupt handlers.
	Init()

	AddDataSource(ds *DataSource)
	RemoveDataSource(ds *DataSource) bool

	// SetTimer converts a relative timeout in milliseconds into the timer's
	// absolute deadline. It does not queue the timer.
	SetTimer(ts *TimerSource, timeoutMS uint32)
	AddTimer(ts *TimerSource) error
	RemoveTimer(ts *TimerSource) bool

	// Execute runs passes forever.
	Execute()

	// DumpTimers logs the pending timers. It has no effect on scheduling.
	DumpTimers()

	// TimeMS returns the elapsed time in milliseconds.
	TimeMS() uint32
}

var _ RunLoop = (*Embedded)(nil)

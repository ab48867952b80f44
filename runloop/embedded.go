package runloop

import (
	"context"
	"log"

	"github.com/sarchlab/runloop/hal"
	"github.com/sarchlab/runloop/hooking"
	"github.com/sarchlab/runloop/id"
)

// Stats counts what the loop has done since Init.
type Stats struct {
	Passes          uint64 `json:"passes"`
	Polls           uint64 `json:"polls"`
	TimersFired     uint64 `json:"timers_fired"`
	Sleeps          uint64 `json:"sleeps"`
	ImmediatePasses uint64 `json:"immediate_passes"`
	DuplicateTimers uint64 `json:"duplicate_timers"`
}

// Embedded is the run loop for targets that poll each data source in turn
// and suspend the CPU between passes.
//
// Except for Trigger, all methods must be called from the loop's own thread:
// before Execute starts, or from within a data source or timer callback.
type Embedded struct {
	hooking.HookableBase

	cpu    hal.CPU
	clock  clock
	logger *log.Logger
	idGen  id.IDGenerator

	sources dataSourceList
	timers  timerQueue
	gate    gate
	stats   Stats
}

// Init empties the registry and the timer queue, zeroes the tick counter, and
// registers the tick interrupt handler when running on a tick time base.
func (l *Embedded) Init() {
	l.sources.reset()
	l.timers.reset()
	l.gate.clear()
	l.stats = Stats{}

	l.clock.init(l.gate.set)
}

// TimeBase returns the time base the loop was built with.
func (l *Embedded) TimeBase() TimeBase {
	return l.clock.kind()
}

func (l *Embedded) timersSupported() bool {
	return l.clock.kind() != TimeBaseNone
}

// AddDataSource appends ds to the registry. Adding a source that is already
// registered does nothing. The registered mark is kept on the source, so a
// source linked into another loop is ignored as well; remove it from that
// loop first.
func (l *Embedded) AddDataSource(ds *DataSource) {
	if ds.ID == "" {
		ds.ID = l.idGen.Generate()
	}

	l.sources.add(ds)
}

// RemoveDataSource unlinks ds. It reports false if ds is not registered.
func (l *Embedded) RemoveDataSource(ds *DataSource) bool {
	return l.sources.remove(ds)
}

// NumDataSources returns the number of registered data sources.
func (l *Embedded) NumDataSources() int {
	return l.sources.len
}

// DataSourceNames returns the names of the registered data sources in
// polling order.
func (l *Embedded) DataSourceNames() []string {
	return l.sources.names()
}

// SetTimer sets the deadline of ts to timeoutMS from now. A timer never fires
// before the requested timeout has elapsed. If ts is pending it is moved to
// its new place in the queue. Without a time base SetTimer does nothing.
func (l *Embedded) SetTimer(ts *TimerSource, timeoutMS uint32) {
	if !l.timersSupported() {
		return
	}

	queued := l.timers.remove(ts)

	ts.Timeout = l.clock.deadline(timeoutMS)

	if queued {
		l.timers.insert(ts)
	}
}

// AddTimer queues ts in deadline order. Timers with equal deadlines fire in
// the order they were added. Adding a timer that is already pending is
// rejected with ErrTimerAlreadyQueued.
func (l *Embedded) AddTimer(ts *TimerSource) error {
	if !l.timersSupported() {
		return ErrNoTimeBase
	}

	if ts.ID == "" {
		ts.ID = l.idGen.Generate()
	}

	if !l.timers.insert(ts) {
		l.stats.DuplicateTimers++
		l.logger.Printf("add timer error: timer %s (%s) to add already in list",
			ts.ID, ts.Name)

		return ErrTimerAlreadyQueued
	}

	return nil
}

// RemoveTimer cancels ts. It reports false if ts is not pending.
func (l *Embedded) RemoveTimer(ts *TimerSource) bool {
	if !l.timersSupported() {
		return false
	}

	return l.timers.remove(ts)
}

// NumTimers returns the number of pending timers.
func (l *Embedded) NumTimers() int {
	return l.timers.len
}

// PendingTimers returns the pending timers in firing order.
func (l *Embedded) PendingTimers() []TimerInfo {
	return l.timers.snapshot()
}

// DumpTimers logs the pending timers.
func (l *Embedded) DumpTimers() {
	for i, info := range l.timers.snapshot() {
		l.logger.Printf("timer %d, timeout %d", i, info.Timeout)
	}
}

// Trigger requests another pass right away. It may be called from any
// context, including interrupt handlers.
func (l *Embedded) Trigger() {
	l.gate.set()
}

// TimeMS returns the elapsed time in milliseconds, or 0 without a time base.
func (l *Embedded) TimeMS() uint32 {
	return l.clock.timeMS()
}

// Ticks returns the tick counter. It is 0 unless the loop runs on ticks.
func (l *Embedded) Ticks() uint32 {
	return l.clock.ticks()
}

// TicksForMS converts milliseconds to whole ticks, rounding down. It is 0
// unless the loop runs on ticks.
func (l *Embedded) TicksForMS(ms uint32) uint32 {
	return l.clock.ticksForMS(ms)
}

// Stats returns the loop counters.
func (l *Embedded) Stats() Stats {
	return l.stats
}

// Execute runs passes forever.
func (l *Embedded) Execute() {
	for {
		l.ExecuteOnce()
	}
}

// Run runs passes until ctx is done. Cancellation is delivered as an
// interrupt when the CPU can raise one, so a sleeping loop notices it without
// waiting for an unrelated interrupt.
func (l *Embedded) Run(ctx context.Context) {
	stop := context.AfterFunc(ctx, l.wakeUp)
	defer stop()

	for ctx.Err() == nil {
		l.ExecuteOnce()
	}
}

func (l *Embedded) wakeUp() {
	if raiser, ok := l.cpu.(hal.InterruptRaiser); ok {
		raiser.RaiseInterrupt(l.Trigger)
		return
	}

	l.Trigger()
}

// ExecuteOnce performs a single pass: poll every data source, fire the due
// timers, then either return at once if a pass was requested meanwhile, or
// sleep until the next interrupt.
func (l *Embedded) ExecuteOnce() {
	l.stats.Passes++
	summary := PassSummary{Pass: l.stats.Passes}

	l.invokeHook(HookPosPassStart, summary.Pass, nil)

	l.sources.forEach(func(ds *DataSource) {
		summary.Polled++
		ds.Process(ds)
	})
	l.stats.Polls += uint64(summary.Polled)

	if l.timersSupported() {
		now := l.clock.now()
		summary.Now = now
		summary.TimersFired = l.timers.popDue(now, func(ts *TimerSource) {
			l.fireTimer(ts, now)
		})
		l.stats.TimersFired += uint64(summary.TimersFired)
	}

	summary.Slept = l.idle()

	l.invokeHook(HookPosPassEnd, summary, nil)
}

func (l *Embedded) fireTimer(ts *TimerSource, now uint32) {
	l.invokeHook(HookPosBeforeTimer, ts, now)
	ts.Process(ts)
	l.invokeHook(HookPosAfterTimer, ts, now)
}

// idle masks interrupts and consumes a pending pass request. Without one, it
// hands over to the CPU, which unmasks and sleeps in one step. It reports
// whether the CPU slept.
func (l *Embedded) idle() bool {
	l.cpu.DisableIRQs()

	if l.gate.take() {
		l.cpu.EnableIRQs()
		l.stats.ImmediatePasses++

		return false
	}

	l.stats.Sleeps++
	l.invokeHook(HookPosSleep, nil, nil)
	l.cpu.EnableIRQsAndSleep()
	l.invokeHook(HookPosWake, nil, nil)

	return true
}

func (l *Embedded) invokeHook(pos *hooking.HookPos, item, detail any) {
	if l.NumHooks() == 0 {
		return
	}

	l.InvokeHook(hooking.HookCtx{
		Domain: l,
		Pos:    pos,
		Item:   item,
		Detail: detail,
	})
}

// Package tracing records what a run loop does into a data recorder.
package tracing

import (
	"fmt"
	"reflect"
	"time"

	"github.com/sarchlab/runloop/datarecording"
	"github.com/sarchlab/runloop/hooking"
	"github.com/sarchlab/runloop/runloop"
)

// Names of the tables written by a LoopTracer.
const (
	PassTable  = "loop_passes"
	TimerTable = "loop_timers"
	SleepTable = "loop_sleeps"
)

// PassEntry is a row of the pass table.
type PassEntry struct {
	Pass        uint64
	Now         uint32
	Polled      int
	TimersFired int
	Slept       bool
}

// TimerEntry is a row of the timer table. Each fired timer produces one row.
type TimerEntry struct {
	Pass       uint64
	ID         string
	Name       string
	Deadline   uint32
	FiredAt    uint32
	DurationNS int64
}

// SleepEntry is a row of the sleep table.
type SleepEntry struct {
	Pass       uint64
	StartNS    int64
	DurationNS int64
}

// LoopTracer is a hook that turns loop activity into recorded rows.
type LoopTracer struct {
	recorder datarecording.DataRecorder
	now      func() time.Time

	pass       uint64
	timer      TimerEntry
	timerStart time.Time
	sleepStart time.Time
}

// NewLoopTracer creates a tracer and the tables it writes to.
func NewLoopTracer(recorder datarecording.DataRecorder) *LoopTracer {
	recorder.CreateTable(PassTable, PassEntry{})
	recorder.CreateTable(TimerTable, TimerEntry{})
	recorder.CreateTable(SleepTable, SleepEntry{})

	return &LoopTracer{
		recorder: recorder,
		now:      time.Now,
	}
}

// CollectTrace attaches the tracer to a loop. Attaching the same tracer twice
// panics.
func CollectTrace(domain hooking.Hookable, tracer *LoopTracer) {
	for _, hook := range domain.Hooks() {
		if hook == tracer {
			panic(fmt.Sprintf("domain already has tracer %s",
				reflect.TypeOf(tracer)))
		}
	}

	domain.AcceptHook(tracer)
}

// Func records the activity at the hook position.
func (t *LoopTracer) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case runloop.HookPosPassStart:
		t.pass = ctx.Item.(uint64)
	case runloop.HookPosBeforeTimer:
		t.startTimer(ctx.Item.(*runloop.TimerSource), ctx.Detail.(uint32))
	case runloop.HookPosAfterTimer:
		t.endTimer()
	case runloop.HookPosSleep:
		t.sleepStart = t.now()
	case runloop.HookPosWake:
		t.endSleep()
	case runloop.HookPosPassEnd:
		t.endPass(ctx.Item.(runloop.PassSummary))
	}
}

func (t *LoopTracer) startTimer(ts *runloop.TimerSource, now uint32) {
	t.timer = TimerEntry{
		Pass:     t.pass,
		ID:       ts.ID,
		Name:     ts.Name,
		Deadline: ts.Timeout,
		FiredAt:  now,
	}
	t.timerStart = t.now()
}

func (t *LoopTracer) endTimer() {
	t.timer.DurationNS = t.now().Sub(t.timerStart).Nanoseconds()
	t.recorder.InsertData(TimerTable, t.timer)
}

func (t *LoopTracer) endSleep() {
	t.recorder.InsertData(SleepTable, SleepEntry{
		Pass:       t.pass,
		StartNS:    t.sleepStart.UnixNano(),
		DurationNS: t.now().Sub(t.sleepStart).Nanoseconds(),
	})
}

func (t *LoopTracer) endPass(summary runloop.PassSummary) {
	t.recorder.InsertData(PassTable, PassEntry{
		Pass:        summary.Pass,
		Now:         summary.Now,
		Polled:      summary.Polled,
		TimersFired: summary.TimersFired,
		Slept:       summary.Slept,
	})
}

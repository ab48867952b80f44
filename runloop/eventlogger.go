package runloop

import (
	"log"

	"github.com/sarchlab/runloop/hooking"
)

// EventLogger is a hook that prints loop activity.
type EventLogger struct {
	logger      *log.Logger
	logSleeping bool
}

// NewEventLogger returns a new EventLogger which will write in to the logger.
// Only timer firings are logged unless LogSleeping is enabled.
func NewEventLogger(logger *log.Logger) *EventLogger {
	h := new(EventLogger)

	h.logger = logger

	return h
}

// LogSleeping makes the logger also report when the CPU sleeps and wakes.
func (h *EventLogger) LogSleeping() *EventLogger {
	h.logSleeping = true
	return h
}

// Func writes the event information into the logger.
func (h *EventLogger) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case HookPosBeforeTimer:
		ts, ok := ctx.Item.(*TimerSource)
		if !ok {
			return
		}

		h.logger.Printf("%d, timer %s (%s) fired, deadline %d",
			ctx.Detail, ts.ID, ts.Name, ts.Timeout)
	case HookPosSleep:
		if h.logSleeping {
			h.logger.Printf("sleep")
		}
	case HookPosWake:
		if h.logSleeping {
			h.logger.Printf("wake")
		}
	}
}

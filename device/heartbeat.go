package device

import (
	"log"

	"github.com/sarchlab/runloop/runloop"
)

// Heartbeat toggles the board's LED from a timer that re-arms itself.
type Heartbeat struct {
	loop     *runloop.Embedded
	logger   *log.Logger
	timer    *runloop.TimerSource
	periodMS uint32

	ledOn   bool
	toggles uint64
	onBeat  func(ledOn bool)
}

// StartHeartbeat arms a heartbeat every periodMS milliseconds. It fails with
// runloop.ErrNoTimeBase when the loop has no time base.
func (d *Device) StartHeartbeat(
	periodMS uint32,
	onBeat func(ledOn bool),
) (*Heartbeat, error) {
	h := &Heartbeat{
		loop:     d.loop,
		logger:   d.logger,
		periodMS: periodMS,
		onBeat:   onBeat,
	}
	h.timer = runloop.NewTimerSource("heartbeat", h.beat)

	h.loop.SetTimer(h.timer, periodMS)
	err := h.loop.AddTimer(h.timer)
	if err != nil {
		return nil, err
	}

	return h, nil
}

func (h *Heartbeat) beat(ts *runloop.TimerSource) {
	h.ledOn = !h.ledOn
	h.toggles++

	if h.onBeat != nil {
		h.onBeat(h.ledOn)
	}

	h.loop.SetTimer(ts, h.periodMS)

	err := h.loop.AddTimer(ts)
	if err != nil {
		h.logger.Printf("heartbeat: %v", err)
	}
}

// Stop cancels the heartbeat.
func (h *Heartbeat) Stop() {
	h.loop.RemoveTimer(h.timer)
}

// LEDOn tells if the LED is lit.
func (h *Heartbeat) LEDOn() bool {
	return h.ledOn
}

// Toggles returns how many times the LED changed.
func (h *Heartbeat) Toggles() uint64 {
	return h.toggles
}

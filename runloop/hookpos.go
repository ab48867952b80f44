package runloop

import "github.com/sarchlab/runloop/hooking"

// HookPosPassStart is invoked at the start of every pass. The item is the
// pass number, starting at 1.
var HookPosPassStart = &hooking.HookPos{Name: "PassStart"}

// HookPosBeforeTimer is invoked before a due timer's callback. The item is the
// *TimerSource and the detail is the time sampled for the pass.
var HookPosBeforeTimer = &hooking.HookPos{Name: "BeforeTimer"}

// HookPosAfterTimer is invoked after a due timer's callback returns.
var HookPosAfterTimer = &hooking.HookPos{Name: "AfterTimer"}

// HookPosSleep is invoked right before the CPU enters the low-power wait.
// Interrupts are masked at this point, so hooks must neither block nor raise
// interrupts.
var HookPosSleep = &hooking.HookPos{Name: "Sleep"}

// HookPosWake is invoked after the CPU leaves the low-power wait.
var HookPosWake = &hooking.HookPos{Name: "Wake"}

// HookPosPassEnd is invoked at the end of every pass. The item is a
// PassSummary.
var HookPosPassEnd = &hooking.HookPos{Name: "PassEnd"}

// PassSummary describes a completed pass.
type PassSummary struct {
	Pass        uint64
	Now         uint32
	Polled      int
	TimersFired int
	Slept       bool
}

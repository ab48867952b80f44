package runloop

import "errors"

// ErrTimerAlreadyQueued is returned by AddTimer when the same TimerSource is
// already pending. The queue is left unchanged.
var ErrTimerAlreadyQueued = errors.New("runloop: timer to add already in list")

// ErrNoTimeBase is returned by AddTimer on a loop built without a time base.
var ErrNoTimeBase = errors.New("runloop: no time base configured")

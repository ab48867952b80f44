package runloop

// A TimerSource is a one-shot deferred callback.
//
// Timeout is the absolute deadline in the loop's time unit (ticks or
// milliseconds); SetTimer computes it from a relative timeout. Change it
// through SetTimer only while the timer is queued. While queued,
// the TimerSource belongs to the loop's timer queue. It is removed from the
// queue before Process runs, so Process may arm it again.
type TimerSource struct {
	ID      string
	Name    string
	Timeout uint32
	Process func(ts *TimerSource)

	next *TimerSource
}

// NewTimerSource creates a TimerSource with the given process callback.
func NewTimerSource(name string, process func(ts *TimerSource)) *TimerSource {
	return &TimerSource{
		Name:    name,
		Process: process,
	}
}

// TimerInfo is a snapshot of a pending timer.
type TimerInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Timeout uint32 `json:"timeout"`
}

// timerQueue keeps pending timers sorted by ascending deadline. Timers with
// equal deadlines stay in insertion order.
type timerQueue struct {
	head *TimerSource
	len  int
}

func (q *timerQueue) reset() {
	for ts := q.head; ts != nil; {
		next := ts.next
		ts.next = nil
		ts = next
	}

	*q = timerQueue{}
}

// insert links ts in deadline order. It returns false, leaving the queue
// untouched, if ts is already queued.
func (q *timerQueue) insert(ts *TimerSource) bool {
	var at **TimerSource

	link := &q.head
	for ; *link != nil; link = &(*link).next {
		if *link == ts {
			return false
		}

		if at == nil && ts.Timeout < (*link).Timeout {
			at = link
		}
	}

	if at == nil {
		at = link
	}

	ts.next = *at
	*at = ts
	q.len++

	return true
}

func (q *timerQueue) remove(ts *TimerSource) bool {
	for link := &q.head; *link != nil; link = &(*link).next {
		if *link != ts {
			continue
		}

		*link = ts.next
		ts.next = nil
		q.len--

		return true
	}

	return false
}

// popDue unlinks and fires every timer whose deadline is not after now, in
// deadline order. The head is re-inspected after each callback, since a
// callback may add or remove timers.
func (q *timerQueue) popDue(now uint32, fire func(ts *TimerSource)) int {
	fired := 0

	for q.head != nil && q.head.Timeout <= now {
		ts := q.head
		q.head = ts.next
		ts.next = nil
		q.len--

		fire(ts)
		fired++
	}

	return fired
}

func (q *timerQueue) snapshot() []TimerInfo {
	infos := make([]TimerInfo, 0, q.len)
	for ts := q.head; ts != nil; ts = ts.next {
		infos = append(infos, TimerInfo{
			ID:      ts.ID,
			Name:    ts.Name,
			Timeout: ts.Timeout,
		})
	}

	return infos
}

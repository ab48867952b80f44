package runloop

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("timerQueue", func() {
	var (
		queue *timerQueue
		fired []string
	)

	makeTimer := func(name string, timeout uint32) *TimerSource {
		ts := NewTimerSource(name, func(ts *TimerSource) {
			fired = append(fired, ts.Name)
		})
		ts.Timeout = timeout

		return ts
	}

	fire := func(ts *TimerSource) {
		ts.Process(ts)
	}

	BeforeEach(func() {
		queue = &timerQueue{}
		fired = nil
	})

	It("should keep timers sorted by deadline", func() {
		queue.insert(makeTimer("c", 30))
		queue.insert(makeTimer("a", 10))
		queue.insert(makeTimer("b", 20))

		Expect(queue.popDue(100, fire)).To(Equal(3))
		Expect(fired).To(Equal([]string{"a", "b", "c"}))
		Expect(queue.len).To(Equal(0))
	})

	It("should break ties by insertion order", func() {
		queue.insert(makeTimer("x", 10))
		queue.insert(makeTimer("early", 5))
		queue.insert(makeTimer("y", 10))
		queue.insert(makeTimer("z", 10))

		queue.popDue(10, fire)

		Expect(fired).To(Equal([]string{"early", "x", "y", "z"}))
	})

	It("should reject a timer that is already queued", func() {
		a := makeTimer("a", 10)
		b := makeTimer("b", 20)
		queue.insert(a)
		queue.insert(b)

		Expect(queue.insert(b)).To(BeFalse())
		Expect(queue.len).To(Equal(2))
		Expect(queue.snapshot()).To(HaveLen(2))
	})

	It("should reject a queued timer even if its deadline changed", func() {
		a := makeTimer("a", 10)
		b := makeTimer("b", 20)
		queue.insert(a)
		queue.insert(b)

		b.Timeout = 5

		Expect(queue.insert(b)).To(BeFalse())
		Expect(queue.len).To(Equal(2))
	})

	It("should treat equal values with different identity as different timers", func() {
		queue.insert(makeTimer("same", 10))

		Expect(queue.insert(makeTimer("same", 10))).To(BeTrue())
		Expect(queue.len).To(Equal(2))
	})

	It("should remove by identity", func() {
		a := makeTimer("a", 10)
		b := makeTimer("b", 20)
		queue.insert(a)
		queue.insert(b)

		Expect(queue.remove(a)).To(BeTrue())
		Expect(queue.remove(a)).To(BeFalse())

		queue.popDue(100, fire)

		Expect(fired).To(Equal([]string{"b"}))
	})

	It("should leave the queue unchanged when removing an unknown timer", func() {
		queue.insert(makeTimer("a", 10))

		Expect(queue.remove(makeTimer("b", 10))).To(BeFalse())
		Expect(queue.len).To(Equal(1))
	})

	It("should stop at the first timer that is not due", func() {
		queue.insert(makeTimer("a", 10))
		queue.insert(makeTimer("b", 11))

		Expect(queue.popDue(10, fire)).To(Equal(1))
		Expect(fired).To(Equal([]string{"a"}))
		Expect(queue.head.Name).To(Equal("b"))
	})

	It("should unlink a timer before its callback runs", func() {
		var rearmed bool
		ts := NewTimerSource("self", nil)
		ts.Process = func(ts *TimerSource) {
			if rearmed {
				return
			}

			rearmed = true
			ts.Timeout = 50
			Expect(queue.insert(ts)).To(BeTrue())
		}
		ts.Timeout = 10
		queue.insert(ts)

		queue.popDue(20, fire)

		Expect(rearmed).To(BeTrue())
		Expect(queue.len).To(Equal(1))
		Expect(queue.head.Timeout).To(Equal(uint32(50)))
	})

	It("should pick up timers a callback makes due", func() {
		queue.insert(NewTimerSource("first", func(*TimerSource) {
			fired = append(fired, "first")
			queue.insert(makeTimer("added", 15))
		}))
		queue.head.Timeout = 10
		queue.insert(makeTimer("later", 20))

		queue.popDue(20, fire)

		Expect(fired).To(Equal([]string{"first", "added", "later"}))
	})

	It("should fire in non-decreasing deadline order for any insertion order", func() {
		type entry struct {
			timeout uint32
			seq     int
		}

		var got []entry
		for i := 0; i < 200; i++ {
			seq := i
			ts := NewTimerSource("", func(ts *TimerSource) {
				got = append(got, entry{timeout: ts.Timeout, seq: seq})
			})
			ts.Timeout = uint32(rand.Intn(20))
			Expect(queue.insert(ts)).To(BeTrue())
		}

		queue.popDue(1000, fire)

		Expect(got).To(HaveLen(200))
		for i := 1; i < len(got); i++ {
			Expect(got[i].timeout).To(BeNumerically(">=", got[i-1].timeout))
			if got[i].timeout == got[i-1].timeout {
				Expect(got[i].seq).To(BeNumerically(">", got[i-1].seq))
			}
		}
	})
})

package tracing

import (
	"io"
	"log"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/runloop/hooking"
	"github.com/sarchlab/runloop/runloop"
)

type idleCPU struct{}

func (idleCPU) DisableIRQs()        {}
func (idleCPU) EnableIRQs()         {}
func (idleCPU) EnableIRQsAndSleep() {}

type fakeClock struct {
	ms uint32
}

func (c *fakeClock) NowMS() uint32 { return c.ms }

var _ = Describe("LoopTracer", func() {
	var (
		mockCtrl *gomock.Controller
		recorder *MockDataRecorder
		tracer   *LoopTracer
		wall     time.Time
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		recorder = NewMockDataRecorder(mockCtrl)

		recorder.EXPECT().CreateTable(PassTable, PassEntry{})
		recorder.EXPECT().CreateTable(TimerTable, TimerEntry{})
		recorder.EXPECT().CreateTable(SleepTable, SleepEntry{})

		tracer = NewLoopTracer(recorder)

		wall = time.Unix(1000, 0)
		tracer.now = func() time.Time {
			wall = wall.Add(time.Microsecond)
			return wall
		}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should record a fired timer with its callback duration", func() {
		ts := runloop.NewTimerSource("heartbeat", nil)
		ts.ID = "7"
		ts.Timeout = 51

		recorder.EXPECT().InsertData(TimerTable, TimerEntry{
			Pass:       3,
			ID:         "7",
			Name:       "heartbeat",
			Deadline:   51,
			FiredAt:    60,
			DurationNS: 1000,
		})

		tracer.Func(hooking.HookCtx{Pos: runloop.HookPosPassStart, Item: uint64(3)})
		tracer.Func(hooking.HookCtx{
			Pos: runloop.HookPosBeforeTimer, Item: ts, Detail: uint32(60),
		})
		tracer.Func(hooking.HookCtx{
			Pos: runloop.HookPosAfterTimer, Item: ts, Detail: uint32(60),
		})
	})

	It("should record sleeps", func() {
		recorder.EXPECT().InsertData(SleepTable, SleepEntry{
			Pass:       2,
			StartNS:    time.Unix(1000, 1000).UnixNano(),
			DurationNS: 1000,
		})

		tracer.Func(hooking.HookCtx{Pos: runloop.HookPosPassStart, Item: uint64(2)})
		tracer.Func(hooking.HookCtx{Pos: runloop.HookPosSleep})
		tracer.Func(hooking.HookCtx{Pos: runloop.HookPosWake})
	})

	It("should record pass summaries", func() {
		recorder.EXPECT().InsertData(PassTable, PassEntry{
			Pass: 4, Now: 12, Polled: 2, TimersFired: 1, Slept: true,
		})

		tracer.Func(hooking.HookCtx{
			Pos: runloop.HookPosPassEnd,
			Item: runloop.PassSummary{
				Pass: 4, Now: 12, Polled: 2, TimersFired: 1, Slept: true,
			},
		})
	})

	It("should ignore positions it does not know", func() {
		tracer.Func(hooking.HookCtx{Pos: &hooking.HookPos{Name: "Other"}})
	})

	It("should refuse to be attached twice", func() {
		loop := runloop.MakeBuilder().
			WithCPU(idleCPU{}).
			WithLogger(log.New(io.Discard, "", 0)).
			Build()

		CollectTrace(loop, tracer)

		Expect(func() { CollectTrace(loop, tracer) }).To(Panic())
		Expect(loop.NumHooks()).To(Equal(1))
	})

	It("should trace a running loop", func() {
		clock := &fakeClock{ms: 100}
		loop := runloop.MakeBuilder().
			WithCPU(idleCPU{}).
			WithMillisecondClock(clock).
			WithLogger(log.New(io.Discard, "", 0)).
			Build()
		CollectTrace(loop, tracer)

		ts := runloop.NewTimerSource("t", func(*runloop.TimerSource) {})
		loop.SetTimer(ts, 0)
		Expect(loop.AddTimer(ts)).To(Succeed())
		loop.AddDataSource(runloop.NewDataSource("poll",
			func(*runloop.DataSource) { clock.ms++ }))

		var timers []TimerEntry
		var passes []PassEntry
		recorder.EXPECT().
			InsertData(TimerTable, gomock.Any()).
			Do(func(_ string, entry any) {
				timers = append(timers, entry.(TimerEntry))
			})
		recorder.EXPECT().
			InsertData(SleepTable, gomock.Any()).
			Times(2)
		recorder.EXPECT().
			InsertData(PassTable, gomock.Any()).
			Do(func(_ string, entry any) {
				passes = append(passes, entry.(PassEntry))
			}).
			Times(2)

		loop.ExecuteOnce()
		loop.ExecuteOnce()

		Expect(timers).To(HaveLen(1))
		Expect(timers[0].Pass).To(Equal(uint64(1)))
		Expect(timers[0].Deadline).To(Equal(uint32(101)))
		Expect(timers[0].FiredAt).To(Equal(uint32(101)))
		Expect(passes).To(Equal([]PassEntry{
			{Pass: 1, Now: 101, Polled: 1, TimersFired: 1, Slept: true},
			{Pass: 2, Now: 102, Polled: 1, TimersFired: 0, Slept: true},
		}))
	})
})

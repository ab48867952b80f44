package device

import (
	"log"
	"os"
	"time"

	"github.com/rs/xid"

	"github.com/sarchlab/runloop/datarecording"
	"github.com/sarchlab/runloop/hal/simhal"
	"github.com/sarchlab/runloop/monitoring"
	"github.com/sarchlab/runloop/runloop"
	"github.com/sarchlab/runloop/tracing"
	"github.com/sarchlab/runloop/uart"
)

// Builder can be used to build a device.
type Builder struct {
	timeBase     runloop.TimeBase
	tickPeriodMS uint32
	manualClock  bool
	wakeInterval time.Duration
	monitorOn    bool
	monitorPort  int
	openBrowser  bool
	recordOn     bool
	outputPath   string
	logger       *log.Logger
	logEvents    bool
}

// MakeBuilder creates a builder for a free running device on a 10 ms tick,
// without monitoring or recording.
func MakeBuilder() Builder {
	return Builder{
		timeBase:     runloop.TimeBaseTick,
		tickPeriodMS: 10,
	}
}

// WithTimeBase selects the loop's time base.
func (b Builder) WithTimeBase(tb runloop.TimeBase) Builder {
	b.timeBase = tb
	return b
}

// WithTickPeriodMS sets the period of the board's tick interrupt.
func (b Builder) WithTickPeriodMS(ms uint32) Builder {
	b.tickPeriodMS = ms
	return b
}

// WithManualClock makes the board advance only when told to.
func (b Builder) WithManualClock() Builder {
	b.manualClock = true
	return b
}

// WithWakeInterval adds periodic bare wakeups to a free running board.
func (b Builder) WithWakeInterval(d time.Duration) Builder {
	b.wakeInterval = d
	return b
}

// WithMonitoring starts a monitoring server on the given port. Port 0 picks a
// random port.
func (b Builder) WithMonitoring(port int) Builder {
	b.monitorOn = true
	b.monitorPort = port
	return b
}

// WithBrowser opens the monitor in a web browser.
func (b Builder) WithBrowser() Builder {
	b.openBrowser = true
	return b
}

// WithRecording traces the loop into a SQLite file. An empty path derives the
// file name from the device ID.
func (b Builder) WithRecording(path string) Builder {
	b.recordOn = true
	b.outputPath = path
	return b
}

// WithLogger sets the logger of the device and its loop.
func (b Builder) WithLogger(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

// WithEventLogging logs timer firings, sleeps and wakeups.
func (b Builder) WithEventLogging() Builder {
	b.logEvents = true
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.openBrowser && !b.monitorOn {
		panic("browser cannot be opened when monitoring is disabled")
	}

	if b.manualClock && b.wakeInterval > 0 {
		panic("wake interval requires a free running clock")
	}
}

// Build builds the device.
func (b Builder) Build() *Device {
	b.parametersMustBeValid()

	d := &Device{
		id:     xid.New().String(),
		logger: b.logger,
	}

	if d.logger == nil {
		d.logger = log.New(os.Stderr, "runloop: ", log.LstdFlags)
	}

	boardBuilder := simhal.MakeBuilder().WithTickPeriodMS(b.tickPeriodMS)
	if !b.manualClock {
		boardBuilder = boardBuilder.
			WithFreeRunningClock().
			WithWakeInterval(b.wakeInterval)
	}
	d.board = boardBuilder.Build()

	loopBuilder := runloop.MakeBuilder().
		WithCPU(d.board).
		WithLogger(d.logger)
	switch b.timeBase {
	case runloop.TimeBaseTick:
		loopBuilder = loopBuilder.WithTickTimer(d.board)
	case runloop.TimeBaseMillisecond:
		loopBuilder = loopBuilder.WithMillisecondClock(d.board)
	}
	d.loop = loopBuilder.Build()

	if b.logEvents {
		eventLogger := runloop.NewEventLogger(d.logger)
		eventLogger.LogSleeping()
		d.loop.AcceptHook(eventLogger)
	}

	if b.recordOn {
		b.buildRecording(d)
	}

	d.port = uart.NewPort(d.board, d.logger)

	if b.monitorOn {
		b.buildMonitor(d)
	}

	return d
}

func (b Builder) buildRecording(d *Device) {
	outputPath := b.outputPath
	if outputPath == "" {
		outputPath = "runloop_device_" + d.id
	}

	d.dataRecorder = datarecording.New(outputPath)
	d.tracer = tracing.NewLoopTracer(d.dataRecorder)
	tracing.CollectTrace(d.loop, d.tracer)
}

func (b Builder) buildMonitor(d *Device) {
	d.monitor = monitoring.NewMonitor()
	if b.monitorPort != 0 {
		d.monitor = d.monitor.WithPortNumber(b.monitorPort)
	}

	if b.openBrowser {
		d.monitor = d.monitor.WithBrowser()
	}

	d.monitor.RegisterLoop(d.loop, d.board)
	d.monitorURL = d.monitor.StartServer()
}

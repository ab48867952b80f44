// Package device puts a simulated board, a run loop and the optional
// monitoring and recording services together.
package device

import (
	"context"
	"log"
	"time"

	"github.com/sarchlab/runloop/datarecording"
	"github.com/sarchlab/runloop/hal/simhal"
	"github.com/sarchlab/runloop/monitoring"
	"github.com/sarchlab/runloop/runloop"
	"github.com/sarchlab/runloop/tracing"
	"github.com/sarchlab/runloop/uart"
)

// Device is a simulated microcontroller running an embedded run loop.
type Device struct {
	id     string
	logger *log.Logger

	board        *simhal.Board
	loop         *runloop.Embedded
	port         *uart.Port
	dataRecorder datarecording.DataRecorder
	tracer       *tracing.LoopTracer
	monitor      *monitoring.Monitor
	monitorURL   string
}

// ID returns the device ID.
func (d *Device) ID() string { return d.id }

// Board returns the simulated board.
func (d *Device) Board() *simhal.Board { return d.board }

// Loop returns the run loop.
func (d *Device) Loop() *runloop.Embedded { return d.loop }

// Port returns the UART.
func (d *Device) Port() *uart.Port { return d.port }

// DataRecorder returns the data recorder, or nil without recording.
func (d *Device) DataRecorder() datarecording.DataRecorder { return d.dataRecorder }

// Monitor returns the monitor, or nil without monitoring.
func (d *Device) Monitor() *monitoring.Monitor { return d.monitor }

// MonitorURL returns the address of the monitoring server.
func (d *Device) MonitorURL() string { return d.monitorURL }

// Run starts the board's clock and runs the loop until ctx is done.
func (d *Device) Run(ctx context.Context) {
	d.board.Start()
	defer d.board.Stop()

	d.loop.Run(ctx)
}

// Terminate flushes the recording and stops the monitoring server. The loop
// must not be running.
func (d *Device) Terminate() {
	if d.dataRecorder != nil {
		d.dataRecorder.Close()
	}

	if d.monitor != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		err := d.monitor.StopServer(ctx)
		if err != nil {
			d.logger.Printf("stop monitor: %v", err)
		}
	}
}

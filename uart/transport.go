package uart

import (
	"errors"
	"sync/atomic"

	"github.com/sarchlab/runloop/runloop"
)

// ErrSendInProgress is returned when a block is sent before the previous one
// completed.
var ErrSendInProgress = errors.New("uart: send in progress")

// Loop is the part of the run loop a transport needs.
type Loop interface {
	AddDataSource(ds *runloop.DataSource)
	RemoveDataSource(ds *runloop.DataSource) bool
	Trigger()
}

// BlockHandler receives a completed block. The slice is only valid during the
// call.
type BlockHandler func(block []byte)

// Transport services a Port from the run loop. The port's interrupt handlers
// only record what happened and request a pass. The transport's data source
// does the actual work on the loop's thread.
type Transport struct {
	port *Port
	loop Loop
	ds   *runloop.DataSource

	rxBuf     []byte
	onBlock   BlockHandler
	onSent    func()
	rxReady   atomic.Bool
	txDone    atomic.Bool
	ctsWake   atomic.Bool
	closing   atomic.Bool
	sending   bool
	blocks    uint64
	sentCount uint64
	wakeups   uint64
}

// NewTransport creates a transport that receives blocks of blockSize bytes.
// It registers its data source with loop and arms the first receive.
func NewTransport(
	port *Port,
	loop Loop,
	blockSize int,
	onBlock BlockHandler,
) *Transport {
	if blockSize <= 0 {
		panic("uart: block size must be positive")
	}

	t := &Transport{
		port:    port,
		loop:    loop,
		rxBuf:   make([]byte, blockSize),
		onBlock: onBlock,
	}
	t.ds = runloop.NewDataSource("uart", t.process)

	port.SetBlockReceived(t.blockReceived)
	port.SetBlockSent(t.blockSent)

	loop.AddDataSource(t.ds)
	port.ReceiveBlock(t.rxBuf)

	return t
}

// OnSent sets a callback called on the loop's thread after a send completes.
func (t *Transport) OnSent(f func()) {
	t.onSent = f
}

// DataSource returns the data source servicing the port.
func (t *Transport) DataSource() *runloop.DataSource {
	return t.ds
}

func (t *Transport) blockReceived() {
	t.rxReady.Store(true)
	t.loop.Trigger()
}

func (t *Transport) ctsRaised() {
	t.ctsWake.Store(true)
	t.loop.Trigger()
}

func (t *Transport) blockSent() {
	t.txDone.Store(true)
	t.loop.Trigger()
}

// Send transmits a block. Only one block may be in flight.
func (t *Transport) Send(block []byte) error {
	if t.sending {
		return ErrSendInProgress
	}

	t.sending = true
	t.port.SendBlock(block)

	return nil
}

// Sending tells if a block is in flight.
func (t *Transport) Sending() bool {
	return t.sending
}

// SetSleep lets the port sleep or wakes it up.
func (t *Transport) SetSleep(sleep bool) {
	t.port.SetSleep(sleep)
}

// WakeOnCTS makes the transport wake a sleeping port when the remote side
// raises CTS.
func (t *Transport) WakeOnCTS() {
	t.port.SetCTSHandler(t.ctsRaised)
}

// Wakeups returns how many times CTS woke the port.
func (t *Transport) Wakeups() uint64 {
	return t.wakeups
}

// Close stops the transport. Its data source removes itself during the next
// pass. Close may be called from any goroutine; it wakes the loop through the
// port's interrupt.
func (t *Transport) Close() {
	t.closing.Store(true)
	t.port.raiser.RaiseInterrupt(t.loop.Trigger)
}

// BlocksReceived returns the number of blocks handed to the block handler.
func (t *Transport) BlocksReceived() uint64 {
	return t.blocks
}

// BlocksSent returns the number of completed sends.
func (t *Transport) BlocksSent() uint64 {
	return t.sentCount
}

func (t *Transport) process(ds *runloop.DataSource) {
	if t.closing.Load() {
		t.loop.RemoveDataSource(ds)
		t.port.SetBlockReceived(nil)
		t.port.SetBlockSent(nil)
		t.port.SetCTSHandler(nil)

		return
	}

	if t.ctsWake.Swap(false) {
		t.wakeups++
		t.port.SetSleep(false)
	}

	if t.txDone.Swap(false) {
		t.sending = false
		t.sentCount++

		if t.onSent != nil {
			t.onSent()
		}
	}

	if t.rxReady.Swap(false) {
		t.blocks++

		if t.onBlock != nil {
			t.onBlock(t.rxBuf)
		}

		t.port.ReceiveBlock(t.rxBuf)
	}
}

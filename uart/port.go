// Package uart simulates a UART driven by DMA block transfers and provides a
// transport that services it from the run loop.
package uart

import (
	"log"
	"sync"

	"github.com/sarchlab/runloop/hal"
)

// Port is a simulated UART. Transfers complete in interrupt context, where
// the block received and block sent handlers are called.
//
// While the port sleeps, RTS is asserted and incoming bytes are held by the
// remote side until the port wakes up again.
type Port struct {
	raiser hal.InterruptRaiser
	logger *log.Logger

	mu       sync.Mutex
	baud     uint32
	sleeping bool
	incoming []byte
	rxBuf    []byte
	rxArmed  bool
	outgoing []byte

	rxDone hal.InterruptHandler
	txDone hal.InterruptHandler
	ctsIRQ hal.InterruptHandler
}

// NewPort creates a port whose interrupts are raised on raiser.
func NewPort(raiser hal.InterruptRaiser, logger *log.Logger) *Port {
	return &Port{
		raiser: raiser,
		logger: logger,
		baud:   115200,
	}
}

// SetBlockReceived sets the handler called when a receive completes.
func (p *Port) SetBlockReceived(handler hal.InterruptHandler) {
	p.mu.Lock()
	p.rxDone = handler
	p.mu.Unlock()
}

// SetBlockSent sets the handler called when a send completes.
func (p *Port) SetBlockSent(handler hal.InterruptHandler) {
	p.mu.Lock()
	p.txDone = handler
	p.mu.Unlock()
}

// SetCTSHandler sets the handler called when the remote side raises CTS to
// send while the port sleeps. A nil handler disables the interrupt.
func (p *Port) SetCTSHandler(handler hal.InterruptHandler) {
	p.mu.Lock()
	p.ctsIRQ = handler
	p.mu.Unlock()
}

// SetBaud changes the baud rate.
func (p *Port) SetBaud(baud uint32) {
	p.mu.Lock()
	p.baud = baud
	p.mu.Unlock()

	p.logger.Printf("uart: set baud %d", baud)
}

// Baud returns the baud rate.
func (p *Port) Baud() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.baud
}

// SetSleep asserts RTS while sleep is true. Bytes that arrive meanwhile are
// held back. Waking up delivers a pending receive if enough bytes arrived.
func (p *Port) SetSleep(sleep bool) {
	p.mu.Lock()
	p.sleeping = sleep
	p.mu.Unlock()

	if !sleep {
		p.tryReceive()
	}
}

// Sleeping tells if RTS is asserted.
func (p *Port) Sleeping() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.sleeping
}

// SendBlock transmits data. The block sent handler is called once the whole
// block is on the wire. It must not be called with interrupts masked.
func (p *Port) SendBlock(data []byte) {
	block := make([]byte, len(data))
	copy(block, data)

	p.raiser.RaiseInterrupt(func() {
		p.mu.Lock()
		p.outgoing = append(p.outgoing, block...)
		handler := p.txDone
		p.mu.Unlock()

		if handler != nil {
			handler()
		}
	})
}

// ReceiveBlock arms a receive that fills buf. The block received handler is
// called once buf is full. It must not be called with interrupts masked.
func (p *Port) ReceiveBlock(buf []byte) {
	p.mu.Lock()
	p.rxBuf = buf
	p.rxArmed = true
	p.mu.Unlock()

	p.tryReceive()
}

// Feed puts bytes on the wire toward the port, as the remote side would. If
// the port sleeps, the CTS interrupt is raised instead of receiving.
func (p *Port) Feed(data []byte) {
	p.mu.Lock()
	p.incoming = append(p.incoming, data...)
	cts := p.ctsIRQ
	if !p.sleeping {
		cts = nil
	}
	p.mu.Unlock()

	if cts != nil {
		p.raiser.RaiseInterrupt(cts)
		return
	}

	p.tryReceive()
}

// TakeOutput returns the bytes the port has sent so far and forgets them.
func (p *Port) TakeOutput() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := p.outgoing
	p.outgoing = nil

	return out
}

func (p *Port) tryReceive() {
	p.mu.Lock()
	if !p.rxArmed || p.sleeping || len(p.incoming) < len(p.rxBuf) {
		p.mu.Unlock()
		return
	}

	n := copy(p.rxBuf, p.incoming)
	p.incoming = p.incoming[n:]
	p.rxArmed = false
	handler := p.rxDone
	p.mu.Unlock()

	p.raiser.RaiseInterrupt(handler)
}

package device

import (
	"github.com/sarchlab/runloop/uart"
)

// StartEcho sends back every block received on the UART.
func (d *Device) StartEcho(blockSize int) *uart.Transport {
	var t *uart.Transport

	t = uart.NewTransport(d.port, d.loop, blockSize, func(block []byte) {
		err := t.Send(block)
		if err != nil {
			d.logger.Printf("echo: %v", err)
		}
	})

	return t
}

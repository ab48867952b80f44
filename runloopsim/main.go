// Command runloopsim runs a simulated device driven by the embedded run loop.
package main

import "github.com/sarchlab/runloop/runloopsim/cmd"

func main() {
	cmd.Execute()
}

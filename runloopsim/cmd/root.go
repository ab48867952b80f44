// Package cmd provides the command-line interface of runloopsim.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "runloopsim",
	Short: "runloopsim runs a simulated device on an embedded run loop.",
	Long: `runloopsim runs a simulated microcontroller whose firmware is ` +
		`driven by a cooperative run loop. The device blinks a heartbeat ` +
		`LED from a timer and echoes what it receives on its UART.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

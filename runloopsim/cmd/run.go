package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sarchlab/runloop/device"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulated device.",
	Long: "Run the simulated device. Every flag can also be set through a " +
		"RUNLOOP_* environment variable or a .env file.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		err := loadEnv(cmd.Flags())
		if err != nil {
			return err
		}

		c, err := readConfig(cmd.Flags())
		if err != nil {
			return err
		}

		logger := log.New(cmd.ErrOrStderr(), "runloop: ", log.LstdFlags)

		return runDevice(cmd.Context(), c, logger)
	},
}

func init() {
	registerFlags(runCmd.Flags())
	rootCmd.AddCommand(runCmd)
}

func buildDevice(c config, logger *log.Logger) *device.Device {
	b := device.MakeBuilder().
		WithTimeBase(c.timeBase).
		WithTickPeriodMS(c.tickPeriodMS).
		WithLogger(logger)

	if c.monitorPort >= 0 {
		b = b.WithMonitoring(c.monitorPort)
		if c.openBrowser {
			b = b.WithBrowser()
		}
	}

	switch c.record {
	case "":
	case "auto":
		b = b.WithRecording("")
	default:
		b = b.WithRecording(c.record)
	}

	if c.logEvents {
		b = b.WithEventLogging()
	}

	return b.Build()
}

func runDevice(ctx context.Context, c config, logger *log.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.duration)
		defer cancel()
	}

	dev := buildDevice(c, logger)
	defer dev.Terminate()

	if c.heartbeatMS > 0 {
		_, err := dev.StartHeartbeat(c.heartbeatMS, func(ledOn bool) {
			logger.Printf("LED %t", ledOn)
		})
		if err != nil {
			return fmt.Errorf("heartbeat: %w", err)
		}
	}

	if c.echoBlock > 0 {
		dev.StartEcho(c.echoBlock)
	}

	logger.Printf("device %s running, time base %s", dev.ID(), c.timeBase)
	dev.Run(ctx)

	stats := dev.Loop().Stats()
	logger.Printf("%d passes, %d timers fired, %d sleeps",
		stats.Passes, stats.TimersFired, stats.Sleeps)

	return nil
}

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/sarchlab/runloop/runloop"
)

// envFlags maps flags to the environment variables that provide their
// default values.
var envFlags = map[string]string{
	"time-base":      "RUNLOOP_TIME_BASE",
	"tick-period-ms": "RUNLOOP_TICK_PERIOD_MS",
	"duration":       "RUNLOOP_DURATION",
	"monitor-port":   "RUNLOOP_MONITOR_PORT",
	"record":         "RUNLOOP_RECORD",
	"heartbeat-ms":   "RUNLOOP_HEARTBEAT_MS",
}

type config struct {
	timeBase     runloop.TimeBase
	tickPeriodMS uint32
	duration     time.Duration
	monitorPort  int
	openBrowser  bool
	record       string
	heartbeatMS  uint32
	echoBlock    int
	logEvents    bool
}

func registerFlags(flags *pflag.FlagSet) {
	flags.String("time-base", "tick",
		"Time base of the run loop: tick, ms or none.")
	flags.Uint32("tick-period-ms", 10, "Period of the tick interrupt.")
	flags.Duration("duration", 0,
		"How long to run. Zero runs until interrupted.")
	flags.Int("monitor-port", -1,
		"Port of the monitoring server. 0 picks a random port, "+
			"a negative value disables monitoring.")
	flags.Bool("open-browser", false, "Open the monitor in a web browser.")
	flags.String("record", "",
		"Record loop activity into the given SQLite file name. "+
			"Use \"auto\" to generate a name.")
	flags.Uint32("heartbeat-ms", 500, "Heartbeat LED period. Zero disables it.")
	flags.Int("echo-block", 1, "Block size of the UART echo. Zero disables it.")
	flags.Bool("log-events", false, "Log timer firings, sleeps and wakeups.")
}

// loadEnv reads .env files and uses the environment as defaults for flags
// that were not set on the command line.
func loadEnv(flags *pflag.FlagSet, files ...string) error {
	err := godotenv.Load(files...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	for name, env := range envFlags {
		value, ok := os.LookupEnv(env)
		if !ok || flags.Changed(name) {
			continue
		}

		err := flags.Set(name, value)
		if err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
	}

	return nil
}

func parseTimeBase(s string) (runloop.TimeBase, error) {
	switch s {
	case "tick":
		return runloop.TimeBaseTick, nil
	case "ms":
		return runloop.TimeBaseMillisecond, nil
	case "none":
		return runloop.TimeBaseNone, nil
	default:
		return runloop.TimeBaseNone, fmt.Errorf("unknown time base %q", s)
	}
}

func readConfig(flags *pflag.FlagSet) (config, error) {
	c := config{}

	tb, _ := flags.GetString("time-base")
	timeBase, err := parseTimeBase(tb)
	if err != nil {
		return c, err
	}
	c.timeBase = timeBase

	c.tickPeriodMS, _ = flags.GetUint32("tick-period-ms")
	if c.tickPeriodMS == 0 {
		return c, errors.New("tick period must be positive")
	}

	c.duration, _ = flags.GetDuration("duration")
	c.monitorPort, _ = flags.GetInt("monitor-port")
	c.openBrowser, _ = flags.GetBool("open-browser")
	if c.openBrowser && c.monitorPort < 0 {
		return c, errors.New("--open-browser requires --monitor-port")
	}

	c.record, _ = flags.GetString("record")
	c.heartbeatMS, _ = flags.GetUint32("heartbeat-ms")
	c.echoBlock, _ = flags.GetInt("echo-block")
	c.logEvents, _ = flags.GetBool("log-events")

	return c, nil
}

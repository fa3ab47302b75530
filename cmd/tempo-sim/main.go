package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/okian/woodshed/internal/simulator"
	"github.com/okian/woodshed/pkg/logger"
)

// Default configuration constants.
const (
	defaultCount    = 300
	defaultInterval = 500 * time.Millisecond
	defaultBaseBPM  = 80.0
	defaultRampBPM  = 40.0
	defaultJitter   = 2.0
)

func main() {
	var (
		brokerURL      = flag.String("broker", "tcp://localhost:1883", "MQTT broker address")
		topic          = flag.String("topic", "practice/tempo", "Topic to publish readings on")
		count          = flag.Int("count", defaultCount, "Number of readings to publish")
		interval       = flag.Duration("interval", defaultInterval, "Delay between readings")
		baseBPM        = flag.Float64("bpm", defaultBaseBPM, "Starting tempo")
		rampBPM        = flag.Float64("ramp", defaultRampBPM, "Total tempo increase across the run")
		jitter         = flag.Float64("jitter", defaultJitter, "Max random deviation per reading")
		malformedEvery = flag.Int("malformed-every", 0, "Publish a malformed payload every N readings, 0 disables")
		verbose        = flag.Bool("verbose", false, "Enable verbose logging")
		help           = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulator.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &simulator.Config{
		BrokerURL:      *brokerURL,
		Topic:          *topic,
		ClientID:       "tempo-sim-" + uuid.New().String()[:8],
		BaseBPM:        *baseBPM,
		RampBPM:        *rampBPM,
		Jitter:         *jitter,
		Interval:       *interval,
		Count:          *count,
		MalformedEvery: *malformedEvery,
		Verbose:        *verbose,
	}

	if _, err := simulator.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		return
	}
}

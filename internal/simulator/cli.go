package simulator

import (
	"os"
)

// ShowHelp prints usage information for the tempo simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Woodshed Tempo Simulator
========================

Publishes a ramping series of tempo readings to an MQTT broker, the way a
connected metronome would during a practice session.

Usage:
  go run cmd/tempo-sim/main.go [options]

Options:
  -broker string
        MQTT broker address (default "tcp://localhost:1883")
  -topic string
        Topic to publish readings on (default "practice/tempo")
  -count int
        Number of readings to publish (default 300)
  -interval duration
        Delay between readings (default 500ms)
  -bpm float
        Starting tempo (default 80)
  -ramp float
        Total tempo increase across the run (default 40)
  -jitter float
        Max random deviation per reading (default 2)
  -malformed-every int
        Publish a malformed payload every N readings, 0 disables (default 0)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Simulate a half-hour warmup against a local broker
  go run cmd/tempo-sim/main.go -count 3600 -interval 500ms

  # Steady tempo with occasional garbage payloads
  go run cmd/tempo-sim/main.go -ramp 0 -malformed-every 25
`)
}

package simulator

import "time"

// Config holds configuration for the tempo simulator.
type Config struct {
	BrokerURL      string        // MQTT broker address
	Topic          string        // Topic to publish tempo readings on
	ClientID       string        // MQTT client identifier
	BaseBPM        float64       // Starting tempo
	RampBPM        float64       // Total tempo increase across the run
	Jitter         float64       // Max random deviation per reading
	Interval       time.Duration // Delay between readings
	Count          int           // Number of readings to publish
	MalformedEvery int           // Publish a malformed payload every N readings, 0 disables
	Verbose        bool          // Enable verbose logging
}

// Stats holds simulator run statistics.
type Stats struct {
	Published int
	Malformed int
	Failed    int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

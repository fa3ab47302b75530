// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"time"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DBPath locates the SQLite database file.
	DBPath string `koanf:"db_path"`

	// BrokerURL is the MQTT broker address.
	BrokerURL string `koanf:"broker_url"`

	// ClientID identifies this process to the broker. Empty means a
	// random id is generated.
	ClientID string `koanf:"client_id"`

	// TempoTopic is the MQTT topic carrying tempo readings.
	TempoTopic string `koanf:"tempo_topic"`

	// AdmissionWindowMin is the interval in minutes after which an
	// unchanged tempo is logged again.
	AdmissionWindowMin int `koanf:"admission_window_min"`

	// LiveFeedBuffer bounds each live feed subscriber channel.
	LiveFeedBuffer int `koanf:"live_feed_buffer"`

	// StatsIntervalSec controls how often stats gauges are refreshed.
	StatsIntervalSec int `koanf:"stats_interval_sec"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		DBPath:             "practice.db",
		BrokerURL:          "tcp://localhost:1883",
		TempoTopic:         "practice/tempo",
		AdmissionWindowMin: 5,
		LiveFeedBuffer:     16,
		StatsIntervalSec:   5,
	}
}

// AdmissionWindow returns the admission window as a duration.
func (c *Config) AdmissionWindow() time.Duration {
	return time.Duration(c.AdmissionWindowMin) * time.Minute
}

// StatsInterval returns the stats refresh interval as a duration.
func (c *Config) StatsInterval() time.Duration {
	return time.Duration(c.StatsIntervalSec) * time.Second
}

package simulator

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/woodshed/internal/adapters/mq/broker"
	"github.com/okian/woodshed/pkg/logger"
)

// Run publishes the configured tempo ramp to the broker and reports run
// statistics. It stops early when ctx is canceled.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Get().Named("simulator")

	client, err := broker.NewMQTTClient(
		broker.WithBrokerURL(cfg.BrokerURL),
		broker.WithClientID(cfg.ClientID),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	defer client.Close()

	log.Info(ctx, "publishing tempo readings",
		logger.String("broker", cfg.BrokerURL),
		logger.String("topic", cfg.Topic),
		logger.Int("count", cfg.Count),
	)

	stats := &Stats{StartTime: time.Now()}
	gen := NewGenerator(cfg)

	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; i < cfg.Count; i++ {
		select {
		case <-ctx.Done():
			finish(stats)
			return stats, ctx.Err()
		case <-ticker.C:
		}

		reading := gen.Next()
		if err := client.Publish(ctx, cfg.Topic, reading.Payload); err != nil {
			stats.Failed++
			log.Warn(ctx, "publish failed", logger.Error(err))
			continue
		}

		stats.Published++
		if reading.Malformed {
			stats.Malformed++
		}
		if cfg.Verbose {
			log.Info(ctx, "published reading", logger.String("payload", string(reading.Payload)))
		}
	}

	finish(stats)
	log.Info(ctx, "simulation complete",
		logger.Int("published", stats.Published),
		logger.Int("malformed", stats.Malformed),
		logger.Int("failed", stats.Failed),
		logger.String("duration", stats.Duration.String()),
	)
	return stats, nil
}

func finish(stats *Stats) {
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
}

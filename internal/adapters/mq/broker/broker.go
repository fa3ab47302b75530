// Package broker defines the pub/sub subscription contract for telemetry.
//
// Implementations bridge an external broker into an ordered message
// channel. The production implementation speaks MQTT; tests substitute an
// in-process fake behind the same interfaces.
package broker

import "context"

// Message is one inbound payload from the subscribed topic.
type Message struct {
	Topic   string
	Payload []byte
}

// Subscriber delivers messages from a single topic subscription.
type Subscriber interface {
	// Subscribe attaches to topic and returns a channel carrying messages
	// in delivery order. The channel closes when the underlying connection
	// ends; that closure is the consumer's end of life, not a signal to
	// retry.
	Subscribe(ctx context.Context, topic string) (<-chan Message, error)

	// Close disconnects from the broker and closes the message channel.
	Close()
}

// Publisher sends payloads to a topic. Used by the device simulator.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

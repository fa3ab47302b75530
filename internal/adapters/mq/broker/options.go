// Package broker defines the pub/sub subscription contract for telemetry.
package broker

import "time"

// Option applies a configuration option to the MQTTClient.
type Option func(*MQTTClient)

// WithBrokerURL sets the broker address, e.g. "tcp://localhost:1883".
func WithBrokerURL(url string) Option {
	return func(c *MQTTClient) {
		if url != "" {
			c.url = url
		}
	}
}

// WithClientID overrides the generated client id.
func WithClientID(id string) Option {
	return func(c *MQTTClient) {
		if id != "" {
			c.clientID = id
		}
	}
}

// WithKeepAlive sets the MQTT keep-alive interval.
func WithKeepAlive(interval time.Duration) Option {
	return func(c *MQTTClient) {
		if interval > 0 {
			c.keepAlive = interval
		}
	}
}

// WithConnectTimeout bounds connect and subscribe handshakes.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(c *MQTTClient) {
		if timeout > 0 {
			c.connectTimeout = timeout
		}
	}
}

// WithQoS sets the MQTT quality of service for subscribe and publish.
func WithQoS(qos byte) Option {
	return func(c *MQTTClient) {
		if qos <= 2 {
			c.qos = qos
		}
	}
}

// WithChannelBuffer sets the inbound message buffer between the paho
// callback and the subscription channel.
func WithChannelBuffer(size int) Option {
	return func(c *MQTTClient) {
		if size > 0 {
			c.buffer = size
		}
	}
}

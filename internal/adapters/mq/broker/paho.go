package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// Default MQTT configuration constants.
const (
	defaultBrokerURL      = "tcp://localhost:1883"
	defaultKeepAlive      = 5 * time.Second
	defaultConnectTimeout = 10 * time.Second
	defaultQoS            = 1 // at-least-once, matching the telemetry contract
	defaultChannelBuffer  = 256
	disconnectQuiesceMS   = 250
	clientIDSuffixLen     = 8
)

// MQTTClient implements Subscriber and Publisher over paho.
type MQTTClient struct {
	url            string
	clientID       string
	keepAlive      time.Duration
	connectTimeout time.Duration
	qos            byte
	buffer         int

	mu         sync.Mutex
	client     mqtt.Client
	done       chan struct{}
	closed     bool
	subscribed bool
}

// NewMQTTClient connects to the broker with configuration options. The
// connection does not auto-reconnect: a lost connection closes the
// subscription channel and the client is finished.
func NewMQTTClient(opts ...Option) (*MQTTClient, error) {
	c := &MQTTClient{
		url:            defaultBrokerURL,
		clientID:       "woodshed-" + uuid.NewString()[:clientIDSuffixLen],
		keepAlive:      defaultKeepAlive,
		connectTimeout: defaultConnectTimeout,
		qos:            defaultQoS,
		buffer:         defaultChannelBuffer,
		done:           make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	mopts := mqtt.NewClientOptions().
		AddBroker(c.url).
		SetClientID(c.clientID).
		SetKeepAlive(c.keepAlive).
		SetConnectTimeout(c.connectTimeout).
		SetAutoReconnect(false).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			c.connectionLost()
		})

	client := mqtt.NewClient(mopts)
	token := client.Connect()
	if !token.WaitTimeout(c.connectTimeout) {
		return nil, fmt.Errorf("%w: connect to %s timed out", ErrConnect, c.url)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: connect to %s: %w", ErrConnect, c.url, err)
	}

	c.client = client
	return c, nil
}

// Subscribe attaches to topic and bridges inbound publishes onto an ordered
// channel. Paho invokes the message handler sequentially per subscription,
// so channel delivery preserves transport order.
func (c *MQTTClient) Subscribe(ctx context.Context, topic string) (<-chan Message, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if c.subscribed {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAlreadySubscribed, topic)
	}
	c.subscribed = true
	c.mu.Unlock()

	inbox := make(chan Message, c.buffer)
	handler := func(_ mqtt.Client, m mqtt.Message) {
		select {
		case inbox <- Message{Topic: m.Topic(), Payload: m.Payload()}:
		case <-c.done:
		}
	}

	token := c.client.Subscribe(topic, c.qos, handler)
	if !token.WaitTimeout(c.connectTimeout) {
		c.clearSubscribed()
		return nil, fmt.Errorf("%w: subscribe to %s timed out", ErrSubscribe, topic)
	}
	if err := token.Error(); err != nil {
		c.clearSubscribed()
		return nil, fmt.Errorf("%w: subscribe to %s: %w", ErrSubscribe, topic, err)
	}

	// The forwarding goroutine is the only sender on out, so it alone may
	// close it when the connection or context ends.
	out := make(chan Message)
	go func() {
		defer close(out)
		for {
			select {
			case <-c.done:
				return
			case <-ctx.Done():
				return
			case m := <-inbox:
				select {
				case out <- m:
				case <-c.done:
					return
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// clearSubscribed releases the single-subscription slot after a failed
// subscribe so a retry is not refused as a duplicate.
func (c *MQTTClient) clearSubscribed() {
	c.mu.Lock()
	c.subscribed = false
	c.mu.Unlock()
}

// Publish sends payload to topic and waits for broker acknowledgement.
func (c *MQTTClient) Publish(ctx context.Context, topic string, payload []byte) error {
	token := c.client.Publish(topic, c.qos, false, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("%w: publish to %s: %w", ErrPublish, topic, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: publish to %s: %w", ErrPublish, topic, ctx.Err())
	}
}

// Close disconnects from the broker and ends any subscription channel.
func (c *MQTTClient) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	c.client.Disconnect(disconnectQuiesceMS)
}

// connectionLost ends the subscription channel without reconnecting; a lost
// connection is end of life for this client.
func (c *MQTTClient) connectionLost() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
}

package broker

import (
	"context"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	. "github.com/smartystreets/goconvey/convey"
)

// stubToken is an already-resolved paho token carrying a fixed error.
type stubToken struct {
	err  error
	done chan struct{}
}

func newStubToken(err error) *stubToken {
	done := make(chan struct{})
	close(done)
	return &stubToken{err: err, done: done}
}

func (t *stubToken) Wait() bool                     { return true }
func (t *stubToken) WaitTimeout(time.Duration) bool { return true }
func (t *stubToken) Done() <-chan struct{}          { return t.done }
func (t *stubToken) Error() error                   { return t.err }

// stubMQTT answers Subscribe without a broker; every other method of the
// embedded interface stays unused.
type stubMQTT struct {
	mqtt.Client
	subscribeErr error
	subscribes   int
}

func (s *stubMQTT) Subscribe(string, byte, mqtt.MessageHandler) mqtt.Token {
	s.subscribes++
	return newStubToken(s.subscribeErr)
}

func newStubClient(stub *stubMQTT) *MQTTClient {
	return &MQTTClient{
		qos:            defaultQoS,
		buffer:         defaultChannelBuffer,
		connectTimeout: defaultConnectTimeout,
		done:           make(chan struct{}),
		client:         stub,
	}
}

func TestSubscribeRetry(t *testing.T) {
	Convey("Given a client whose first subscribe is refused", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		stub := &stubMQTT{subscribeErr: errors.New("broker refused")}
		c := newStubClient(stub)

		_, err := c.Subscribe(ctx, "practice/tempo")
		So(errors.Is(err, ErrSubscribe), ShouldBeTrue)

		Convey("When subscribing again after the failure", func() {
			stub.subscribeErr = nil
			msgs, err := c.Subscribe(ctx, "practice/tempo")

			Convey("Then the retry reaches the broker instead of being refused as a duplicate", func() {
				So(err, ShouldBeNil)
				So(msgs, ShouldNotBeNil)
				So(stub.subscribes, ShouldEqual, 2)
			})
		})
	})

	Convey("Given a client with an established subscription", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		c := newStubClient(&stubMQTT{})

		_, err := c.Subscribe(ctx, "practice/tempo")
		So(err, ShouldBeNil)

		Convey("When subscribing a second time", func() {
			_, err := c.Subscribe(ctx, "practice/tempo")

			Convey("Then the duplicate is refused", func() {
				So(errors.Is(err, ErrAlreadySubscribed), ShouldBeTrue)
			})
		})
	})
}

package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	broker "github.com/okian/woodshed/internal/adapters/mq/broker"
	service "github.com/okian/woodshed/internal/app"
	"github.com/okian/woodshed/pkg/logger"
	"github.com/okian/woodshed/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// fakeSubscriber stands in for the MQTT connection.
type fakeSubscriber struct {
	msgs      chan broker.Message
	closeOnce sync.Once
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{msgs: make(chan broker.Message, 64)}
}

func (f *fakeSubscriber) Subscribe(_ context.Context, _ string) (<-chan broker.Message, error) {
	return f.msgs, nil
}

func (f *fakeSubscriber) Close() {
	f.closeOnce.Do(func() { close(f.msgs) })
}

func (f *fakeSubscriber) send(payload string) {
	f.msgs <- broker.Message{Topic: "practice/tempo", Payload: []byte(payload)}
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service with injected dependencies", t, func() {
		sub := newFakeSubscriber()
		svc := service.New(
			service.WithDBPath(t.TempDir()+"/practice.db"),
			service.WithSubscriber(sub),
		)
		defer svc.Stop()

		ctx := context.Background()

		Convey("When the service has not started", func() {
			Convey("Then the register and live feed are already usable", func() {
				_, ok := svc.ActivePiece(ctx)
				So(ok, ShouldBeFalse)

				feed, cancel := svc.SubscribeTempo()
				So(feed, ShouldNotBeNil)
				cancel()
			})

			Convey("Then stats report it as stopped", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)
			})

			Convey("Then store-backed calls refuse cleanly", func() {
				_, err := svc.CreateFullRegiment(ctx, []string{"Scales"})
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)

				_, err = svc.PracticeHistory(ctx)
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})

		Convey("When starting the service", func() {
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)

				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})

		// Marking before Start exercises the constructor-supplied logger.
		Convey("When marking a piece active", func() {
			svc.MarkActivePiece(ctx, 12)
			id, ok := svc.ActivePiece(ctx)

			Convey("Then it is reported back", func() {
				So(ok, ShouldBeTrue)
				So(id, ShouldEqual, 12)
			})
		})
	})
}

func TestService_ActivePieceGauge(t *testing.T) {
	Convey("Given a fresh service with no active piece", t, func() {
		svc := service.New()
		ctx := context.Background()

		Convey("When stats run before and after a piece is marked", func() {
			svc.GetStats()
			So(activePieceGauge(t), ShouldEqual, 0)

			svc.MarkActivePiece(ctx, 7)
			svc.GetStats()

			Convey("Then the gauge follows the register", func() {
				So(activePieceGauge(t), ShouldEqual, 1)
			})
		})
	})
}

// activePieceGauge reads the active-piece gauge off the global registry.
func activePieceGauge(t *testing.T) float64 {
	t.Helper()

	families, err := metrics.GetRegistry().Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() == "woodshed_practice_active_piece" {
			return fam.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatal("active piece gauge not registered")
	return 0
}

func TestService_Options(t *testing.T) {
	Convey("Given service options", t, func() {
		Convey("When constructing with defaults", func() {
			svc := service.New()

			Convey("Then the service is usable", func() {
				So(svc, ShouldNotBeNil)
			})
		})

		Convey("When constructing with custom options", func() {
			svc := service.New(
				service.WithDBPath("custom.db"),
				service.WithBrokerURL("tcp://broker.local:1883"),
				service.WithClientID("woodshed-test"),
				service.WithTopic("esp32/midi"),
				service.WithAdmissionWindow(2*time.Minute),
				service.WithHubBuffer(8),
			)

			Convey("Then the service is usable", func() {
				So(svc, ShouldNotBeNil)
			})
		})
	})
}

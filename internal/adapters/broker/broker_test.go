package broker_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tkarimi/residual/internal/adapters/broker"
	"github.com/tkarimi/residual/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseMode(t *testing.T) {
	Convey("Given delivery mode strings", t, func() {
		Convey("When parsing the known modes", func() {
			amo, err := broker.ParseMode("at_most_once")
			So(err, ShouldBeNil)
			So(amo, ShouldEqual, broker.AtMostOnce)

			alo, err := broker.ParseMode("at_least_once")
			So(err, ShouldBeNil)
			So(alo, ShouldEqual, broker.AtLeastOnce)
		})

		Convey("When parsing an unknown mode", func() {
			_, err := broker.ParseMode("exactly_once")
			So(errors.Is(err, broker.ErrUnknownMode), ShouldBeTrue)
		})

		Convey("When naming modes for logs", func() {
			So(broker.AtMostOnce.String(), ShouldEqual, "at_most_once")
			So(broker.AtLeastOnce.String(), ShouldEqual, "at_least_once")
		})
	})
}

func TestKafkaPublisherLifecycle(t *testing.T) {
	Convey("Given a Kafka publisher", t, func() {
		So(logger.Init(), ShouldBeNil)

		p := broker.NewKafkaPublisher(
			broker.WithBrokers([]string{"localhost:9092"}),
		)
		So(p, ShouldNotBeNil)

		Convey("When closing it", func() {
			So(p.Close(), ShouldBeNil)

			Convey("Then publishing afterwards should fail with ErrClosed", func() {
				err := p.Publish(context.Background(), "y-true", []byte(`{"id":1,"body":2}`))
				So(errors.Is(err, broker.ErrClosed), ShouldBeTrue)
			})

			Convey("And closing again should be a no-op", func() {
				So(p.Close(), ShouldBeNil)
			})
		})
	})
}

func TestKafkaSubscriberLifecycle(t *testing.T) {
	Convey("Given a Kafka subscriber", t, func() {
		So(logger.Init(), ShouldBeNil)

		s := broker.NewKafkaSubscriber(
			broker.WithBrokers([]string{"localhost:9092"}),
			broker.WithGroupID("test-group"),
			broker.WithMode(broker.AtLeastOnce),
		)
		So(s, ShouldNotBeNil)

		Convey("When closing it before any subscription", func() {
			So(s.Close(), ShouldBeNil)

			Convey("Then subscribing afterwards should fail with ErrClosed", func() {
				err := s.Subscribe(context.Background(), "y-true", func(context.Context, broker.Delivery) error {
					return nil
				})
				So(errors.Is(err, broker.ErrClosed), ShouldBeTrue)
			})

			Convey("And closing again should be a no-op", func() {
				So(s.Close(), ShouldBeNil)
			})
		})
	})
}

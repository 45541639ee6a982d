package queue_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/tkarimi/residual/internal/adapters/mq/queue"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryQueue(t *testing.T) {
	Convey("Given an in-memory merge queue", t, func() {
		ctx := context.Background()

		Convey("When enqueueing and dequeueing deliveries", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(16))
			defer func() { _ = q.Close() }()

			for i := 0; i < 3; i++ {
				ok := q.Enqueue(ctx, queue.Delivery{
					Topic: "y-true",
					Value: []byte(fmt.Sprintf(`{"id":%d,"body":1.0}`, i)),
				})
				So(ok, ShouldBeTrue)
			}

			Convey("Then deliveries should come out in arrival order", func() {
				So(q.Len(ctx), ShouldEqual, 3)
				out := q.Dequeue(ctx)
				for i := 0; i < 3; i++ {
					d := <-out
					So(string(d.Value), ShouldContainSubstring, fmt.Sprintf(`"id":%d`, i))
				}
			})
		})

		Convey("When the queue is full", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(1))
			defer func() { _ = q.Close() }()

			So(q.Enqueue(ctx, queue.Delivery{Topic: "y-true"}), ShouldBeTrue)

			Convey("Then further enqueues should be rejected", func() {
				So(q.Enqueue(ctx, queue.Delivery{Topic: "y-pred"}), ShouldBeFalse)
			})
		})

		Convey("When the queue is closed", func() {
			q := queue.NewInMemoryQueue()
			So(q.Enqueue(ctx, queue.Delivery{Topic: "y-true"}), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)

			Convey("Then enqueues should be rejected", func() {
				So(q.Enqueue(ctx, queue.Delivery{Topic: "y-pred"}), ShouldBeFalse)
			})

			Convey("And the dequeue channel should drain and close", func() {
				out := q.Dequeue(ctx)
				d, open := <-out
				So(open, ShouldBeTrue)
				So(d.Topic, ShouldEqual, "y-true")

				select {
				case _, open := <-out:
					So(open, ShouldBeFalse)
				case <-time.After(time.Second):
					t.Fatal("dequeue channel did not close")
				}
			})

			Convey("And closing twice should be a no-op", func() {
				So(q.Close(), ShouldBeNil)
			})
		})

		Convey("When the dequeue context is cancelled", func() {
			q := queue.NewInMemoryQueue()
			defer func() { _ = q.Close() }()

			dctx, cancel := context.WithCancel(ctx)
			out := q.Dequeue(dctx)
			cancel()
			So(q.Enqueue(ctx, queue.Delivery{Topic: "y-true"}), ShouldBeTrue)

			Convey("Then the consumer channel should close", func() {
				// An already-buffered delivery may still slip through before
				// cancellation is observed.
				deadline := time.After(time.Second)
				for {
					select {
					case _, open := <-out:
						if !open {
							So(open, ShouldBeFalse)
							return
						}
					case <-deadline:
						t.Fatal("dequeue channel did not close after cancel")
					}
				}
			})
		})
	})
}

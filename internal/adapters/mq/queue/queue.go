// Package queue merges the correlator's broker subscriptions into one stream.
//
// Both topic readers enqueue here and a single goroutine drains the channel,
// which is what keeps message handling strictly sequential: one delivery is
// fully processed before the next is dispatched.
package queue

import (
	"context"
	"sync"

	"github.com/tkarimi/residual/internal/adapters/broker"
	"github.com/tkarimi/residual/pkg/metrics"
)

const defaultCapacity = 4096

// Delivery is the payload type flowing through the queue.
type Delivery = broker.Delivery

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a delivery. Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, d Delivery) bool

	// Dequeue returns a channel receiving deliveries in arrival order.
	// The channel closes when the queue closes.
	Dequeue(ctx context.Context) <-chan Delivery

	// Len returns the current number of buffered deliveries.
	Len(ctx context.Context) int

	// Close stops the queue; no further enqueues are accepted.
	Close() error
}

// InMemoryQueue implements Queue with a buffered channel.
type InMemoryQueue struct {
	deliveries chan Delivery
	capacity   int
	mu         sync.RWMutex
	closed     bool
}

// NewInMemoryQueue creates a merge queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.deliveries = make(chan Delivery, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)
	return q
}

// Enqueue adds a delivery to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, d Delivery) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError("closed")
		return false
	}

	select {
	case q.deliveries <- d:
		metrics.RecordQueueEnqueue()
		q.updateGauges()
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError("context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError("queue_full")
		return false
	}
}

// Dequeue returns a channel receiving deliveries as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Delivery {
	out := make(chan Delivery)
	go func() {
		defer close(out)
		for d := range q.deliveries {
			select {
			case out <- d:
				metrics.RecordQueueDequeue()
				q.updateGauges()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of buffered deliveries.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	return len(q.deliveries)
}

// Close stops the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.deliveries)
	return nil
}

func (q *InMemoryQueue) updateGauges() {
	size := len(q.deliveries)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}

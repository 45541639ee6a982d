// Package broker connects the pipeline to its message broker.
//
// Topics stand in for the named durable queues of the original deployment:
// one for ground truth, one for predictions, one for feature vectors consumed
// by the external predictor.
package broker

import (
	"context"
	"fmt"
)

// Publisher writes durable messages to named topics.
type Publisher interface {
	// Publish writes one durable message. It does not retry: a delivery
	// failure is returned to the caller, which is expected to abort.
	Publish(ctx context.Context, topic string, payload []byte) error
	Close() error
}

// Delivery is one message received from a subscription.
type Delivery struct {
	Topic string
	Value []byte
}

// Handler processes one delivery. Under at-least-once mode a non-nil error
// leaves the message uncommitted.
type Handler func(ctx context.Context, d Delivery) error

// Subscriber consumes named topics, one background reader per topic.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}

// Mode is the subscription delivery contract.
type Mode int

const (
	// AtMostOnce commits offsets before handling, the legacy auto-ack
	// behavior: a crash mid-handle loses the message.
	AtMostOnce Mode = iota
	// AtLeastOnce commits only after the handler returns nil: a crash
	// mid-handle redelivers.
	AtLeastOnce
)

// ParseMode maps the config strings to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "at_most_once":
		return AtMostOnce, nil
	case "at_least_once":
		return AtLeastOnce, nil
	default:
		return AtMostOnce, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// String names the mode for logs.
func (m Mode) String() string {
	if m == AtLeastOnce {
		return "at_least_once"
	}
	return "at_most_once"
}

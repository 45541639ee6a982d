// Package correlator pairs ground-truth and prediction messages by id and
// persists the absolute error of every completed pair.
package correlator

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/tkarimi/residual/internal/adapters/broker"
	"github.com/tkarimi/residual/internal/adapters/mq/queue"
	"github.com/tkarimi/residual/internal/domain/model"
	"github.com/tkarimi/residual/internal/domain/pending"
	"github.com/tkarimi/residual/pkg/logger"
	"github.com/tkarimi/residual/pkg/metrics"
)

// Appender persists completed correlations.
type Appender interface {
	Append(ctx context.Context, rec model.ErrorRecord) error
}

// Service consumes the two topics and correlates their messages.
//
// Both subscriptions feed one bounded merge queue; a single goroutine drains
// it, so every message is fully handled before the next is dispatched. No
// handler error stops the loop: malformed input and append failures are
// logged, counted, and skipped.
type Service struct {
	mu sync.Mutex

	sub   broker.Subscriber
	store pending.Store
	out   Appender
	merge queue.Queue

	topicTruth string
	topicPred  string
	queueSize  int
	mode       broker.Mode

	started bool
	drained chan struct{}

	log logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithTopics sets the ground-truth and prediction topic names.
func WithTopics(groundTruth, prediction string) Option {
	return func(s *Service) {
		if groundTruth != "" {
			s.topicTruth = groundTruth
		}
		if prediction != "" {
			s.topicPred = prediction
		}
	}
}

// WithQueueSize bounds the merge queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDeliveryMode sets the delivery mode the subscriptions run under. It
// decides what happens when the merge queue rejects a delivery: under
// at-most-once the delivery is dropped with a warning, under at-least-once
// the handler returns an error so the offset stays uncommitted and the
// broker redelivers.
//
// Note the acknowledgement window: under at-least-once a delivery is
// committable once buffered in the merge queue, not once correlated. A crash
// between enqueue and handling still loses the buffered deliveries.
func WithDeliveryMode(mode broker.Mode) Option {
	return func(s *Service) {
		s.mode = mode
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New constructs a correlator service.
func New(sub broker.Subscriber, store pending.Store, out Appender, opts ...Option) *Service {
	s := &Service{
		sub:        sub,
		store:      store,
		out:        out,
		topicTruth: "y-true",
		topicPred:  "y-pred",
		queueSize:  4096,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("correlator")
	}
	return s
}

// Start subscribes to both topics and begins draining the merge queue.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// The closure captures this generation's queue rather than reading
	// s.merge, so a reader goroutine straggling across a Stop/Start cycle
	// cannot race the reassignment.
	merge := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	drained := make(chan struct{})
	s.merge = merge
	s.drained = drained

	enqueue := func(ctx context.Context, d broker.Delivery) error {
		if !merge.Enqueue(ctx, d) {
			if s.mode == broker.AtLeastOnce {
				// Leave the offset uncommitted; the broker redelivers.
				return fmt.Errorf("%w: %s", ErrQueueFull, d.Topic)
			}
			s.log.Warn(ctx, "merge queue rejected delivery, dropping",
				logger.String("topic", d.Topic))
		}
		return nil
	}
	for _, topic := range []string{s.topicTruth, s.topicPred} {
		if err := s.sub.Subscribe(ctx, topic, enqueue); err != nil {
			return err
		}
	}

	go s.drain(ctx, merge, drained)

	s.started = true
	s.log.Info(ctx, "correlator started",
		logger.String("topicGroundTruth", s.topicTruth),
		logger.String("topicPrediction", s.topicPred),
	)
	return nil
}

// drain handles deliveries strictly one at a time.
func (s *Service) drain(ctx context.Context, merge queue.Queue, drained chan struct{}) {
	defer close(drained)
	for d := range merge.Dequeue(ctx) {
		s.Handle(ctx, d)
	}
}

// Handle processes one delivery end to end.
func (s *Service) Handle(ctx context.Context, d broker.Delivery) {
	msg, err := model.DecodeMessage(d.Value)
	if err != nil {
		metrics.RecordMalformedMessage()
		s.log.Warn(ctx, "discarding message",
			logger.String("topic", d.Topic),
			logger.Error(err),
		)
		return
	}
	if msg.Kind != model.KindScalar {
		metrics.RecordMalformedMessage()
		s.log.Warn(ctx, "discarding non-scalar message",
			logger.String("topic", d.Topic),
			logger.String("id", msg.ID),
		)
		return
	}

	role := pending.GroundTruth
	if d.Topic == s.topicPred {
		role = pending.Prediction
	}

	pair, done := s.store.Put(ctx, msg.ID, role, msg.Scalar)
	if !done {
		s.log.Debug(ctx, "half pair pending",
			logger.String("id", msg.ID),
			logger.String("role", role.String()),
		)
		return
	}

	rec := model.ErrorRecord{
		ID:            pair.ID,
		GroundTruth:   pair.GroundTruth,
		Prediction:    pair.Prediction,
		AbsoluteError: math.Abs(pair.GroundTruth - pair.Prediction),
	}
	if err := s.out.Append(ctx, rec); err != nil {
		s.log.Error(ctx, "failed to append error record",
			logger.String("id", rec.ID),
			logger.Error(err),
		)
		return
	}
	metrics.RecordPairMatched()
	s.log.Info(ctx, "recorded absolute error",
		logger.String("id", rec.ID),
		logger.Float64("groundTruth", rec.GroundTruth),
		logger.Float64("prediction", rec.Prediction),
		logger.Float64("absoluteError", rec.AbsoluteError),
	)
}

// PendingLen reports the number of incomplete pairs, for stats and tests.
func (s *Service) PendingLen() int {
	return s.store.Len()
}

// Stop closes the subscriptions and waits for the drain loop to finish the
// deliveries already buffered.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	_ = s.sub.Close()
	_ = s.merge.Close()
	<-s.drained

	s.started = false
	s.log.Info(context.Background(), "correlator stopped")
}

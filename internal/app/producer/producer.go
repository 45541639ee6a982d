// Package producer implements the sampling stage of the pipeline.
//
// Each tick it draws a random dataset row and publishes two durable messages
// sharing one correlation id: the ground-truth target and the feature vector
// for the external predictor.
package producer

import (
	"context"
	"time"

	"github.com/tkarimi/residual/internal/adapters/broker"
	"github.com/tkarimi/residual/internal/domain/dataset"
	"github.com/tkarimi/residual/internal/domain/ident"
	"github.com/tkarimi/residual/internal/domain/model"
	"github.com/tkarimi/residual/pkg/logger"
	"github.com/tkarimi/residual/pkg/loop"
	"github.com/tkarimi/residual/pkg/metrics"
)

const defaultInterval = 10 * time.Second

// Service publishes sampled ground truth and features on a fixed interval.
type Service struct {
	pub    broker.Publisher
	data   *dataset.Dataset
	minter ident.Minter

	topicTruth    string
	topicFeatures string
	interval      time.Duration

	log logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithTopics sets the ground-truth and features topic names.
func WithTopics(groundTruth, features string) Option {
	return func(s *Service) {
		if groundTruth != "" {
			s.topicTruth = groundTruth
		}
		if features != "" {
			s.topicFeatures = features
		}
	}
}

// WithInterval sets the delay between ticks.
func WithInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.interval = interval
		}
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

// New constructs a producer service.
func New(pub broker.Publisher, data *dataset.Dataset, minter ident.Minter, opts ...Option) *Service {
	s := &Service{
		pub:           pub,
		data:          data,
		minter:        minter,
		topicTruth:    "y-true",
		topicFeatures: "features",
		interval:      defaultInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("producer")
	}
	return s
}

// Run publishes until ctx is cancelled or a publish fails. A delivery failure
// is not retried: the error aborts the loop and reaches the caller.
func (s *Service) Run(ctx context.Context) error {
	s.log.Info(ctx, "producer started",
		logger.String("topicGroundTruth", s.topicTruth),
		logger.String("topicFeatures", s.topicFeatures),
		logger.Int("datasetRows", s.data.Len()),
		logger.String("interval", s.interval.String()),
	)
	return loop.Until(ctx, s.interval, s.Tick)
}

// Tick performs one sample-and-publish cycle. Ground truth goes out before
// the features; nothing downstream depends on that order.
func (s *Service) Tick(ctx context.Context) error {
	sample := s.data.Sample()
	id := s.minter.Next()

	truth, err := model.EncodeScalar(id, sample.Target)
	if err != nil {
		return err
	}
	if err := s.pub.Publish(ctx, s.topicTruth, truth); err != nil {
		return err
	}
	s.log.Debug(ctx, "published ground truth",
		logger.String("id", id),
		logger.Float64("target", sample.Target),
	)

	features, err := model.EncodeVector(id, sample.Features)
	if err != nil {
		return err
	}
	if err := s.pub.Publish(ctx, s.topicFeatures, features); err != nil {
		return err
	}
	s.log.Debug(ctx, "published features",
		logger.String("id", id),
		logger.Int("dimensions", len(sample.Features)),
	)

	metrics.RecordSamplePublished()
	return nil
}

// Close releases the broker connection.
func (s *Service) Close() error {
	return s.pub.Close()
}

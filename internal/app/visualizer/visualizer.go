// Package visualizer regenerates the error-distribution plot on an interval.
package visualizer

import (
	"context"
	"errors"
	"time"

	"github.com/tkarimi/residual/internal/adapters/errorlog"
	"github.com/tkarimi/residual/pkg/logger"
	"github.com/tkarimi/residual/pkg/loop"
	"github.com/tkarimi/residual/pkg/metrics"
)

const defaultInterval = 10 * time.Second

// Source yields the absolute-error column to plot.
type Source interface {
	Errors(ctx context.Context) ([]float64, error)
}

// Plotter renders values to the image at path.
type Plotter interface {
	Render(values []float64, path string) error
}

// Service re-reads the log and overwrites the plot each tick. It keeps no
// state between ticks; every render is a full recomputation.
type Service struct {
	source   Source
	plotter  Plotter
	plotPath string
	interval time.Duration

	log logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithInterval sets the delay between renders.
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

// New constructs a visualizer service.
func New(source Source, plotter Plotter, plotPath string, opts ...Option) *Service {
	s := &Service{
		source:   source,
		plotter:  plotter,
		plotPath: plotPath,
		interval: defaultInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("visualizer")
	}
	return s
}

// Run renders until ctx is cancelled. Failures never abort the loop; the
// next tick retries from scratch.
func (s *Service) Run(ctx context.Context) error {
	s.log.Info(ctx, "visualizer started",
		logger.String("plotPath", s.plotPath),
		logger.String("interval", s.interval.String()),
	)
	return loop.Every(ctx, s.interval, "visualizer", s.Tick)
}

// Tick performs one read-and-render cycle.
func (s *Service) Tick(ctx context.Context) error {
	start := time.Now()

	values, err := s.source.Errors(ctx)
	if err != nil {
		// Expected before the first correlation completes.
		if errors.Is(err, errorlog.ErrLogMissing) || errors.Is(err, errorlog.ErrNoRecords) {
			s.log.Debug(ctx, "no error records yet", logger.Error(err))
			return nil
		}
		return err
	}

	if err := s.plotter.Render(values, s.plotPath); err != nil {
		return err
	}

	metrics.ObserveRenderDuration(time.Since(start).Seconds())
	s.log.Debug(ctx, "rendered error distribution",
		logger.Int("records", len(values)),
		logger.Float64("seconds", time.Since(start).Seconds()),
	)
	return nil
}

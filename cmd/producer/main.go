// Command producer samples the dataset on an interval and publishes a
// ground-truth value and a feature vector per tick, both stamped with a
// fresh correlation id.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tkarimi/residual/internal/adapters/broker"
	"github.com/tkarimi/residual/internal/app/producer"
	"github.com/tkarimi/residual/internal/config"
	"github.com/tkarimi/residual/internal/domain/dataset"
	"github.com/tkarimi/residual/internal/domain/ident"
	"github.com/tkarimi/residual/pkg/logger"
	"github.com/tkarimi/residual/pkg/metrics"
)

// HTTP server timeout constants for the optional metrics listener.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since the logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	data, err := newDataset(cfg)
	if err != nil {
		log.Error(ctx, "failed to load dataset", logger.Error(err))
		return
	}

	minter, err := newMinter(cfg)
	if err != nil {
		log.Error(ctx, "invalid id_scheme", logger.String("id_scheme", cfg.IDScheme), logger.Error(err))
		return
	}

	pub := broker.NewKafkaPublisher(
		broker.WithBrokers(cfg.Brokers),
		broker.WithLogger(log),
	)

	svc := producer.New(pub, data, minter,
		producer.WithTopics(cfg.TopicGroundTruth, cfg.TopicFeatures),
		producer.WithInterval(cfg.ProduceInterval),
		producer.WithLogger(log),
	)
	defer func() {
		if err := svc.Close(); err != nil {
			log.Error(ctx, "failed to close publisher", logger.Error(err))
		}
	}()

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr)
	}

	log.Info(ctx, "starting producer",
		logger.String("topicGroundTruth", cfg.TopicGroundTruth),
		logger.String("topicFeatures", cfg.TopicFeatures),
		logger.String("interval", cfg.ProduceInterval.String()),
		logger.Int("datasetSize", data.Len()),
	)

	if err := svc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error(ctx, "producer stopped with error", logger.Error(err))
		return
	}

	log.Info(ctx, "producer stopped")
}

// newDataset loads the configured CSV or falls back to the synthetic set.
func newDataset(cfg *config.Config) (*dataset.Dataset, error) {
	if cfg.DatasetPath != "" {
		return dataset.New(dataset.WithCSVPath(cfg.DatasetPath))
	}
	return dataset.New()
}

// newMinter selects the correlation id scheme.
func newMinter(cfg *config.Config) (ident.Minter, error) {
	switch cfg.IDScheme {
	case config.IDSchemeUUID:
		return ident.NewUUID(), nil
	case config.IDSchemeCounter:
		return ident.NewCounter(cfg.ProducerTag), nil
	case config.IDSchemeWallclock:
		return ident.NewWallclock(), nil
	default:
		return nil, fmt.Errorf("%w: unknown id_scheme %q", config.ErrInvalidConfig, cfg.IDScheme)
	}
}

// serveMetrics exposes /metrics and /healthz until ctx is done.
func serveMetrics(ctx context.Context, addr string) {
	log := logger.Get()

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(ctx, "metrics server shutdown failed", logger.Error(err))
		}
	}()

	log.Info(ctx, "starting metrics server", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error(ctx, "metrics server failed", logger.Error(err))
	}
}

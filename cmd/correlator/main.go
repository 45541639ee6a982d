// Command correlator subscribes to the ground-truth and prediction topics,
// pairs messages by correlation id, and appends the absolute error of each
// completed pair to the CSV error log.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tkarimi/residual/internal/adapters/broker"
	"github.com/tkarimi/residual/internal/adapters/errorlog"
	"github.com/tkarimi/residual/internal/app/correlator"
	"github.com/tkarimi/residual/internal/config"
	"github.com/tkarimi/residual/internal/domain/pending"
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

	mode, err := broker.ParseMode(cfg.DeliveryMode)
	if err != nil {
		log.Error(ctx, "invalid delivery_mode", logger.String("delivery_mode", cfg.DeliveryMode), logger.Error(err))
		return
	}

	sub := broker.NewKafkaSubscriber(
		broker.WithBrokers(cfg.Brokers),
		broker.WithGroupID(cfg.GroupID),
		broker.WithMode(mode),
		broker.WithLogger(log),
	)

	store := pending.NewMemoryStore(
		pending.WithMaxSize(cfg.PendingMaxSize),
		pending.WithTTL(cfg.PendingTTL),
		pending.WithEvictionCallback(func(id, reason string) {
			log.Warn(ctx, "evicted pending entry",
				logger.String("id", id),
				logger.String("reason", reason),
			)
		}),
	)

	out, err := errorlog.NewWriter(cfg.ErrorLogPath)
	if err != nil {
		log.Error(ctx, "failed to open error log", logger.String("path", cfg.ErrorLogPath), logger.Error(err))
		return
	}
	defer func() {
		if err := out.Close(); err != nil {
			log.Error(ctx, "failed to close error log", logger.Error(err))
		}
	}()

	svc := correlator.New(sub, store, out,
		correlator.WithTopics(cfg.TopicGroundTruth, cfg.TopicPrediction),
		correlator.WithQueueSize(cfg.QueueSize),
		correlator.WithDeliveryMode(mode),
		correlator.WithLogger(log),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start correlator", logger.Error(err))
		return
	}
	defer svc.Stop()

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr)
	}

	log.Info(ctx, "correlator running",
		logger.String("topicGroundTruth", cfg.TopicGroundTruth),
		logger.String("topicPrediction", cfg.TopicPrediction),
		logger.String("deliveryMode", mode.String()),
		logger.String("errorLogPath", cfg.ErrorLogPath),
	)

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down correlator...")
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

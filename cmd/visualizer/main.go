// Command visualizer re-reads the CSV error log on an interval and renders
// the absolute-error distribution (histogram plus density estimate) to a PNG.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tkarimi/residual/internal/adapters/errorlog"
	"github.com/tkarimi/residual/internal/adapters/render"
	"github.com/tkarimi/residual/internal/app/visualizer"
	"github.com/tkarimi/residual/internal/config"
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

	svc := visualizer.New(
		errorlog.NewReader(cfg.ErrorLogPath),
		render.NewRenderer(render.WithBins(cfg.PlotBins)),
		cfg.PlotPath,
		visualizer.WithInterval(cfg.RenderInterval),
		visualizer.WithLogger(log),
	)

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr)
	}

	log.Info(ctx, "starting visualizer",
		logger.String("errorLogPath", cfg.ErrorLogPath),
		logger.String("plotPath", cfg.PlotPath),
		logger.Int("bins", cfg.PlotBins),
		logger.String("interval", cfg.RenderInterval.String()),
	)

	if err := svc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error(ctx, "visualizer stopped with error", logger.Error(err))
		return
	}

	log.Info(ctx, "visualizer stopped")
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

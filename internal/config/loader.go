package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if RESIDUAL_CONFIG is set
//  3. env (prefix RESIDUAL_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("RESIDUAL_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: RESIDUAL_BROKERS, RESIDUAL_PENDING_TTL, ...
	// Keys map RESIDUAL_PENDING_MAX_SIZE -> pending_max_size (flat keys,
	// underscores preserved to match koanf tags).
	envProvider := env.Provider("RESIDUAL_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "residual_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Brokers) == 0 {
		return fmt.Errorf("%w: brokers must not be empty", ErrInvalidConfig)
	}
	if c.TopicGroundTruth == "" || c.TopicPrediction == "" || c.TopicFeatures == "" {
		return fmt.Errorf("%w: topic names must not be empty", ErrInvalidConfig)
	}
	switch c.DeliveryMode {
	case DeliveryAtMostOnce, DeliveryAtLeastOnce:
	default:
		return fmt.Errorf("%w: unknown delivery_mode %q", ErrInvalidConfig, c.DeliveryMode)
	}
	switch c.IDScheme {
	case IDSchemeUUID, IDSchemeCounter, IDSchemeWallclock:
	default:
		return fmt.Errorf("%w: unknown id_scheme %q", ErrInvalidConfig, c.IDScheme)
	}
	if c.ProduceInterval <= 0 || c.RenderInterval <= 0 {
		return fmt.Errorf("%w: intervals must be positive", ErrInvalidConfig)
	}
	if c.PendingMaxSize <= 0 {
		return fmt.Errorf("%w: pending_max_size must be positive", ErrInvalidConfig)
	}
	if c.PendingTTL <= 0 {
		return fmt.Errorf("%w: pending_ttl must be positive", ErrInvalidConfig)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	if c.PlotBins <= 0 {
		return fmt.Errorf("%w: plot_bins must be positive", ErrInvalidConfig)
	}
	if c.ErrorLogPath == "" || c.PlotPath == "" {
		return fmt.Errorf("%w: error_log_path and plot_path must not be empty", ErrInvalidConfig)
	}
	return nil
}

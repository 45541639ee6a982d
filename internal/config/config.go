// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - Defaults come from New; file and env layers override them in Load.
// - External errors are wrapped via this package's sentinel kinds.
package config

import "time"

// Delivery modes for the correlator's broker subscriptions.
const (
	DeliveryAtMostOnce  = "at_most_once"
	DeliveryAtLeastOnce = "at_least_once"
)

// Correlation id schemes for the producer.
const (
	IDSchemeUUID      = "uuid"
	IDSchemeCounter   = "counter"
	IDSchemeWallclock = "wallclock"
)

// Config contains configuration shared by the three pipeline processes.
// Each process reads the subset it needs.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Brokers lists Kafka bootstrap addresses.
	Brokers []string `koanf:"brokers"`

	// Topic names for the three streams.
	TopicGroundTruth string `koanf:"topic_ground_truth"`
	TopicPrediction  string `koanf:"topic_prediction"`
	TopicFeatures    string `koanf:"topic_features"`

	// GroupID is the correlator's consumer group.
	GroupID string `koanf:"group_id"`

	// DeliveryMode selects the subscription contract: at_most_once commits
	// offsets before handling, at_least_once after.
	DeliveryMode string `koanf:"delivery_mode"`

	// ProduceInterval is the delay between producer ticks.
	ProduceInterval time.Duration `koanf:"produce_interval"`

	// RenderInterval is the delay between visualizer ticks.
	RenderInterval time.Duration `koanf:"render_interval"`

	// DatasetPath optionally points at a CSV dataset (last column is the
	// target). Empty means the built-in synthetic dataset.
	DatasetPath string `koanf:"dataset_path"`

	// ErrorLogPath is the append-only CSV of completed correlations.
	ErrorLogPath string `koanf:"error_log_path"`

	// PlotPath is the PNG the visualizer overwrites each tick.
	PlotPath string `koanf:"plot_path"`

	// PlotBins is the histogram bin count.
	PlotBins int `koanf:"plot_bins"`

	// PendingMaxSize bounds the correlator's pending-match store.
	PendingMaxSize int `koanf:"pending_max_size"`

	// PendingTTL expires pending entries whose partner never arrives.
	PendingTTL time.Duration `koanf:"pending_ttl"`

	// QueueSize bounds the in-memory merge queue feeding the handler.
	QueueSize int `koanf:"queue_size"`

	// IDScheme selects the correlation id minter: uuid, counter, wallclock.
	IDScheme string `koanf:"id_scheme"`

	// ProducerTag distinguishes producers under the counter scheme.
	ProducerTag string `koanf:"producer_tag"`

	// MetricsAddr, when non-empty, serves /metrics and /healthz on this
	// address. Empty disables the listener; the pipeline itself opens no ports.
	MetricsAddr string `koanf:"metrics_addr"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Brokers:          []string{"localhost:9092"},
		TopicGroundTruth: "y-true",
		TopicPrediction:  "y-pred",
		TopicFeatures:    "features",
		GroupID:          "residual-correlator",
		DeliveryMode:     DeliveryAtMostOnce,
		ProduceInterval:  10 * time.Second,
		RenderInterval:   10 * time.Second,
		ErrorLogPath:     "logs/metric_log.csv",
		PlotPath:         "logs/error_distribution.png",
		PlotBins:         20,
		PendingMaxSize:   65536,
		PendingTTL:       5 * time.Minute,
		QueueSize:        4096,
		IDScheme:         IDSchemeUUID,
		ProducerTag:      "p0",
		MetricsAddr:      "",
	}
}

// Command smoketest publishes synthetic ground-truth/prediction pairs with
// known errors against a running correlator and verifies that the error log
// records every pair with the right absolute error.
package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/tkarimi/residual/internal/smoketest"
	"github.com/tkarimi/residual/pkg/logger"
)

// Default configuration constants.
const (
	defaultPairs       = 100
	defaultWait        = 15 * time.Second
	defaultTestTimeout = 5 * time.Minute
)

func main() {
	var (
		brokers    = flag.String("brokers", "localhost:9092", "Comma-separated Kafka bootstrap addresses")
		truthTopic = flag.String("truth-topic", "y-true", "Ground-truth topic")
		predTopic  = flag.String("pred-topic", "y-pred", "Prediction topic")
		pairs      = flag.Int("pairs", defaultPairs, "Number of pairs to publish")
		wait       = flag.Duration("wait", defaultWait, "Time to wait for the correlator before verifying")
		logPath    = flag.String("log", "logs/metric_log.csv", "Error log CSV to verify against")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	cfg := smoketest.Config{
		Brokers:          strings.Split(*brokers, ","),
		TopicGroundTruth: *truthTopic,
		TopicPrediction:  *predTopic,
		Pairs:            *pairs,
		Wait:             *wait,
		LogPath:          *logPath,
	}

	if err := smoketest.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("smoke test failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// Package smoketest drives the pipeline end to end against a live broker:
// it publishes synthetic ground-truth/prediction pairs with known errors,
// waits for the correlator, then verifies the log file.
package smoketest

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/tkarimi/residual/internal/adapters/broker"
	"github.com/tkarimi/residual/internal/adapters/errorlog"
	"github.com/tkarimi/residual/internal/domain/ident"
	"github.com/tkarimi/residual/internal/domain/model"
	"github.com/tkarimi/residual/pkg/logger"
)

// Comparison tolerance for recorded errors.
const epsilon = 1e-9

// Config drives one smoke test run.
type Config struct {
	Brokers          []string
	TopicGroundTruth string
	TopicPrediction  string
	Pairs            int
	Wait             time.Duration
	LogPath          string
}

// ExpectedPair is one published correlation and its expected absolute error.
type ExpectedPair struct {
	ID            string
	GroundTruth   float64
	Prediction    float64
	AbsoluteError float64
}

// Run publishes, waits, and verifies. It returns an error when any expected
// record is missing or carries the wrong absolute error.
func Run(ctx context.Context, cfg Config) error {
	log := logger.Get().Named("smoketest")

	log.Info(ctx, "starting smoke test",
		logger.Int("pairs", cfg.Pairs),
		logger.String("wait", cfg.Wait.String()),
		logger.String("logPath", cfg.LogPath),
	)

	expected, err := publishPairs(ctx, cfg)
	if err != nil {
		return fmt.Errorf("publish pairs: %w", err)
	}

	log.Info(ctx, "published pairs, waiting for the correlator")
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(cfg.Wait):
	}

	records, err := errorlog.NewReader(cfg.LogPath).Records(ctx)
	if err != nil {
		return fmt.Errorf("read error log: %w", err)
	}

	if err := Verify(records, expected); err != nil {
		return err
	}

	log.Info(ctx, "smoke test passed", logger.Int("verified", len(expected)))
	return nil
}

// publishPairs sends both halves of every pair, prediction deliberately
// before ground truth for half of them to exercise order independence.
func publishPairs(ctx context.Context, cfg Config) ([]ExpectedPair, error) {
	pub := broker.NewKafkaPublisher(broker.WithBrokers(cfg.Brokers))
	defer func() { _ = pub.Close() }()

	minter := ident.NewUUID()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	expected := make([]ExpectedPair, cfg.Pairs)
	for i := range expected {
		truth := 100 + rng.Float64()*100
		pred := truth + rng.NormFloat64()*10
		pair := ExpectedPair{
			ID:            minter.Next(),
			GroundTruth:   truth,
			Prediction:    pred,
			AbsoluteError: math.Abs(truth - pred),
		}
		expected[i] = pair

		truthMsg, err := model.EncodeScalar(pair.ID, pair.GroundTruth)
		if err != nil {
			return nil, err
		}
		predMsg, err := model.EncodeScalar(pair.ID, pair.Prediction)
		if err != nil {
			return nil, err
		}

		first, second := cfg.TopicGroundTruth, cfg.TopicPrediction
		firstMsg, secondMsg := truthMsg, predMsg
		if i%2 == 1 {
			first, second = second, first
			firstMsg, secondMsg = secondMsg, firstMsg
		}
		if err := pub.Publish(ctx, first, firstMsg); err != nil {
			return nil, err
		}
		if err := pub.Publish(ctx, second, secondMsg); err != nil {
			return nil, err
		}
	}
	return expected, nil
}

// Verify checks that every expected pair appears in records exactly once
// with the right absolute error.
func Verify(records []model.ErrorRecord, expected []ExpectedPair) error {
	byID := make(map[string][]model.ErrorRecord, len(records))
	for _, rec := range records {
		byID[rec.ID] = append(byID[rec.ID], rec)
	}

	for _, want := range expected {
		got, ok := byID[want.ID]
		if !ok {
			return fmt.Errorf("%w: id %s", ErrRecordMissing, want.ID)
		}
		if len(got) != 1 {
			return fmt.Errorf("%w: id %s appears %d times", ErrDuplicateRecord, want.ID, len(got))
		}
		if math.Abs(got[0].AbsoluteError-want.AbsoluteError) > epsilon {
			return fmt.Errorf("%w: id %s got %v want %v",
				ErrWrongError, want.ID, got[0].AbsoluteError, want.AbsoluteError)
		}
	}
	return nil
}

// Package loop runs a function on a fixed interval under context control.
//
// The pipeline's long-running stages are all "do work, sleep, repeat" loops.
// Expressing them through Every keeps cancellation explicit and lets tests run
// iterations with a tiny interval instead of wall-clock sleeps.
package loop

import (
	"context"
	"time"

	"github.com/tkarimi/residual/pkg/logger"
)

// Func is one loop iteration. A returned error is logged; it does not stop the loop.
type Func func(ctx context.Context) error

// Every runs fn immediately, then once per interval, until ctx is cancelled.
// It returns ctx.Err() after cancellation.
func Every(ctx context.Context, interval time.Duration, name string, fn Func) error {
	log := logger.Get().Named(name)

	run := func() {
		if err := fn(ctx); err != nil {
			log.Warn(ctx, "iteration failed", logger.Error(err))
		}
	}

	run()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			run()
		}
	}
}

// Until is like Every but stops and returns the first error fn reports.
// The producer uses it: a failed publish aborts the whole loop.
func Until(ctx context.Context, interval time.Duration, fn Func) error {
	if err := fn(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				return err
			}
		}
	}
}

// Package ident mints correlation ids for message pairs.
//
// The default is a random UUID. The wallclock minter reproduces the legacy
// sub-second-timestamp scheme; it collides under fast publish rates or with
// more than one producer and exists only for wire compatibility.
package ident

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Minter produces correlation ids.
type Minter interface {
	Next() string
}

// UUID mints random UUIDv4 ids.
type UUID struct{}

// NewUUID returns the default collision-resistant minter.
func NewUUID() *UUID {
	return &UUID{}
}

// Next returns a fresh UUID string.
func (u *UUID) Next() string {
	return uuid.New().String()
}

// Counter mints "<tag>-<n>" ids from a monotonic counter, so ids stay unique
// across producers that carry distinct tags.
type Counter struct {
	tag string
	n   atomic.Uint64
}

// NewCounter returns a counter minter for the given producer tag.
func NewCounter(tag string) *Counter {
	return &Counter{tag: tag}
}

// Next returns the next counter id.
func (c *Counter) Next() string {
	return fmt.Sprintf("%s-%d", c.tag, c.n.Add(1))
}

// Wallclock mints the current unix time with microsecond precision as a bare
// decimal, identical to the legacy producer's ids.
type Wallclock struct {
	now func() time.Time
}

// NewWallclock returns the legacy-compatible minter.
func NewWallclock() *Wallclock {
	return &Wallclock{now: time.Now}
}

// Next returns the current timestamp id.
func (w *Wallclock) Next() string {
	t := w.now()
	sec := float64(t.UnixMicro()) / 1e6
	return strconv.FormatFloat(sec, 'f', 6, 64)
}

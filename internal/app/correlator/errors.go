package correlator

import "errors"

var (
	// ErrQueueFull reports a delivery the merge queue could not buffer.
	// Returned to the subscription under at-least-once mode so the
	// offset stays uncommitted.
	ErrQueueFull = errors.New("merge queue full")
)

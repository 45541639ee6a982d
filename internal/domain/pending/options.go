package pending

import "time"

// Option applies a configuration option to the memory store.
type Option func(*memoryStore)

// WithMaxSize bounds the number of incomplete entries kept in memory.
func WithMaxSize(size int) Option {
	return func(s *memoryStore) {
		if size > 0 {
			s.maxSize = size
		}
	}
}

// WithTTL sets how long a lone half may wait for its partner.
func WithTTL(ttl time.Duration) Option {
	return func(s *memoryStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source. Tests use it to drive expiry.
func WithClock(now func() time.Time) Option {
	return func(s *memoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithEvictionCallback observes dropped entries; reason is "capacity" or
// "expired".
func WithEvictionCallback(fn func(id, reason string)) Option {
	return func(s *memoryStore) {
		if fn != nil {
			s.onEvict = fn
		}
	}
}

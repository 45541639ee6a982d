// Package pending holds the half-arrived correlation pairs.
package pending

import (
	"context"
	"sync"
	"time"

	"github.com/tkarimi/residual/pkg/metrics"
)

// Role marks which half of a correlation a value belongs to.
type Role int

const (
	// GroundTruth is the target value sampled by the producer.
	GroundTruth Role = iota
	// Prediction is the value the external predictor published.
	Prediction
)

// String names a role for logs.
func (r Role) String() string {
	if r == GroundTruth {
		return "ground_truth"
	}
	return "prediction"
}

// Pair is a completed correlation: both halves for one id.
type Pair struct {
	ID          string
	GroundTruth float64
	Prediction  float64
}

// Store tracks partially arrived pairs keyed by correlation id.
//
// Put upserts one half and reports completion: when the opposite half was
// already present the entry is removed and the full Pair returned with true.
// An entry exists only while incomplete. The store is bounded: the oldest
// entry is dropped when capacity is reached, and entries past their TTL are
// expired, so a half whose partner never arrives cannot grow memory forever.
type Store interface {
	Put(ctx context.Context, id string, role Role, value float64) (Pair, bool)
	Len() int
}

// node is one pending entry in the insertion-ordered list (head = newest).
type node struct {
	id         string
	truth      float64
	prediction float64
	hasTruth   bool
	hasPred    bool
	insertedAt time.Time
	next       *node
}

func (n *node) reset() {
	*n = node{}
}

// memoryStore implements Store with a map plus a singly linked list ordered
// by insertion time, evicting from the tail (oldest first).
type memoryStore struct {
	mu       sync.Mutex
	entries  map[string]*node
	head     *node
	maxSize  int
	ttl      time.Duration
	now      func() time.Time
	onEvict  func(id, reason string)
	nodePool sync.Pool
}

// Default bounds for the pending store.
const (
	defaultMaxSize = 65536
	defaultTTL     = 5 * time.Minute
)

// NewMemoryStore creates a bounded in-memory pending store.
func NewMemoryStore(opts ...Option) Store {
	s := &memoryStore{
		entries: make(map[string]*node),
		maxSize: defaultMaxSize,
		ttl:     defaultTTL,
		now:     time.Now,
		onEvict: func(string, string) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.nodePool = sync.Pool{
		New: func() interface{} {
			return &node{}
		},
	}
	return s
}

// Put upserts one half of the pair for id and reports completion.
func (s *memoryStore) Put(ctx context.Context, id string, role Role, value float64) (Pair, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepExpiredLocked()

	n, exists := s.entries[id]
	if !exists {
		if len(s.entries) >= s.maxSize {
			s.evictOldestLocked()
		}
		n = s.nodePool.Get().(*node)
		n.id = id
		n.insertedAt = s.now()
		n.next = s.head
		s.head = n
		s.entries[id] = n
	}

	// Same-role re-delivery overwrites; it never completes a pair by itself.
	switch role {
	case GroundTruth:
		n.truth = value
		n.hasTruth = true
	case Prediction:
		n.prediction = value
		n.hasPred = true
	}

	if n.hasTruth && n.hasPred {
		pair := Pair{ID: n.id, GroundTruth: n.truth, Prediction: n.prediction}
		s.removeLocked(n)
		metrics.UpdatePendingEntries(len(s.entries))
		return pair, true
	}

	metrics.UpdatePendingEntries(len(s.entries))
	return Pair{}, false
}

// Len returns the number of incomplete entries.
func (s *memoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// removeLocked unlinks n and returns it to the pool. Caller holds s.mu.
func (s *memoryStore) removeLocked(n *node) {
	delete(s.entries, n.id)
	if s.head == n {
		s.head = n.next
	} else {
		cur := s.head
		for cur != nil && cur.next != n {
			cur = cur.next
		}
		if cur != nil {
			cur.next = n.next
		}
	}
	n.reset()
	s.nodePool.Put(n)
}

// evictOldestLocked drops the tail entry. Caller holds s.mu.
func (s *memoryStore) evictOldestLocked() {
	if s.head == nil {
		return
	}
	var prev *node
	cur := s.head
	for cur.next != nil {
		prev = cur
		cur = cur.next
	}
	id := cur.id
	delete(s.entries, id)
	if prev == nil {
		s.head = nil
	} else {
		prev.next = nil
	}
	cur.reset()
	s.nodePool.Put(cur)
	metrics.RecordPendingEviction("capacity")
	s.onEvict(id, "capacity")
}

// sweepExpiredLocked drops entries older than the TTL. The list is ordered by
// insertion, so expired entries form a suffix starting somewhere after head.
// Caller holds s.mu.
func (s *memoryStore) sweepExpiredLocked() {
	if s.ttl <= 0 || s.head == nil {
		return
	}
	cutoff := s.now().Add(-s.ttl)

	var prev *node
	cur := s.head
	for cur != nil && cur.insertedAt.After(cutoff) {
		prev = cur
		cur = cur.next
	}
	if cur == nil {
		return
	}
	if prev == nil {
		s.head = nil
	} else {
		prev.next = nil
	}
	for cur != nil {
		next := cur.next
		delete(s.entries, cur.id)
		metrics.RecordPendingEviction("expired")
		s.onEvict(cur.id, "expired")
		cur.reset()
		s.nodePool.Put(cur)
		cur = next
	}
}

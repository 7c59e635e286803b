package idempotency

import (
	"context"
	"sync"
	"time"

	clockport "github.com/globetrotter/trip-planner-api/internal/ports/out/clock"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/idempotency"
)

// Store keeps idempotency records in process memory.
//
// Records older than the configured TTL (measured from Record.CreatedAt) are
// treated as absent and dropped on the next lookup. A zero TTL keeps records
// for the life of the process.
type Store struct {
	mu      sync.Mutex
	records map[idempotency.Fingerprint]idempotency.Record

	clk clockport.Clock
	ttl time.Duration
}

func NewStore() *Store {
	return &Store{records: make(map[idempotency.Fingerprint]idempotency.Record)}
}

// NewStoreWithTTL returns a store whose records expire ttl after creation.
func NewStoreWithTTL(clk clockport.Clock, ttl time.Duration) *Store {
	s := NewStore()
	s.clk = clk
	s.ttl = ttl
	return s
}

func (s *Store) Get(_ context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[fp]
	if !ok {
		return idempotency.Record{}, false, nil
	}
	if s.expired(rec) {
		delete(s.records, fp)
		return idempotency.Record{}, false, nil
	}
	return cloneRecord(rec), true, nil
}

func (s *Store) Put(_ context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.CreatedAt.IsZero() && s.clk != nil {
		rec.CreatedAt = s.clk.Now()
	}
	s.records[fp] = cloneRecord(rec)
	return nil
}

func (s *Store) expired(rec idempotency.Record) bool {
	if s.ttl <= 0 || s.clk == nil {
		return false
	}
	return s.clk.Now().Sub(rec.CreatedAt) > s.ttl
}

func cloneRecord(rec idempotency.Record) idempotency.Record {
	if rec.Body != nil {
		rec.Body = append([]byte(nil), rec.Body...)
	}
	return rec
}

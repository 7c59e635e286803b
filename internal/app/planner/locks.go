package planner

import (
	"sync"

	"github.com/globetrotter/trip-planner-api/internal/domain"
)

// tripLocks serializes itinerary mutations per trip. Entries are dropped once
// no goroutine holds or waits for them.
type tripLocks struct {
	mu    sync.Mutex
	locks map[domain.TripID]*tripLock
}

type tripLock struct {
	sync.Mutex
	refs int
}

func newTripLocks() *tripLocks {
	return &tripLocks{locks: make(map[domain.TripID]*tripLock)}
}

// lock blocks until the trip is free and returns the matching unlock.
func (l *tripLocks) lock(id domain.TripID) func() {
	l.mu.Lock()
	tl, ok := l.locks[id]
	if !ok {
		tl = &tripLock{}
		l.locks[id] = tl
	}
	tl.refs++
	l.mu.Unlock()

	tl.Lock()
	return func() {
		tl.Unlock()
		l.mu.Lock()
		tl.refs--
		if tl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *tripLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

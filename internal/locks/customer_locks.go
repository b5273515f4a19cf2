// Package locks serializes lifecycle-mutating work per customer. Archive,
// restore, ship and delete must never interleave on one customer, and the
// ingestion-driven status recompute must not run while an archive is
// reading the same working directory. Different customers never contend.
package locks

import (
	"sync"

	"pack-backend/internal/apperrors"
)

type CustomerLocks struct {
	mu   sync.Mutex
	busy map[int]bool
}

func NewCustomerLocks() *CustomerLocks {
	return &CustomerLocks{busy: make(map[int]bool)}
}

// Acquire takes the exclusive lock for one customer. It never blocks: a
// customer already in-flight yields a Conflict error so the caller can
// surface a retryable busy signal instead of queueing indefinitely. The
// returned release func must run on every exit path.
func (l *CustomerLocks) Acquire(customerID int) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.busy[customerID] {
		return nil, apperrors.Conflict("customer %d has an operation in progress, retry later", customerID)
	}
	l.busy[customerID] = true

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.busy, customerID)
			l.mu.Unlock()
		})
	}
	return release, nil
}

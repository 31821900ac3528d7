// Package ledger caches the outcome of successful payments by idempotency
// key. Only successes are ever recorded: a failed payment attempt leaves no
// trace, so the caller may fix the request and retry with the same key.
package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/skyreserve/booking-service/internal/domain"
)

// Ledger is the idempotency store. Lock serializes concurrent payment
// attempts on the same key; at most one of them mutates booking state, the
// rest observe its cached receipt.
type Ledger interface {
	Lock(ctx context.Context, key string) (func(), error)
	Get(ctx context.Context, key string) (*domain.Receipt, bool, error)
	Put(ctx context.Context, key string, receipt *domain.Receipt) error
}

type memoryEntry struct {
	receipt  *domain.Receipt
	storedAt time.Time
}

// MemoryLedger is the single-process implementation. Deployments running
// more than one instance must use RedisLedger instead, or duplicate charges
// become possible.
type MemoryLedger struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	locks     map[string]*sync.Mutex
	retention time.Duration
	now       func() time.Time
}

func NewMemoryLedger(retention time.Duration) *MemoryLedger {
	return &MemoryLedger{
		entries:   make(map[string]memoryEntry),
		locks:     make(map[string]*sync.Mutex),
		retention: retention,
		now:       time.Now,
	}
}

func (l *MemoryLedger) Lock(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}

func (l *MemoryLedger) Get(_ context.Context, key string) (*domain.Receipt, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok {
		return nil, false, nil
	}
	if l.now().Sub(entry.storedAt) > l.retention {
		delete(l.entries, key)
		return nil, false, nil
	}
	return entry.receipt, true, nil
}

func (l *MemoryLedger) Put(_ context.Context, key string, receipt *domain.Receipt) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries[key] = memoryEntry{receipt: receipt, storedAt: l.now()}
	l.purgeLocked()
	return nil
}

// purgeLocked drops entries past retention. Called opportunistically on
// every Put so the map cannot grow without bound.
func (l *MemoryLedger) purgeLocked() {
	cutoff := l.now().Add(-l.retention)
	for key, entry := range l.entries {
		if entry.storedAt.Before(cutoff) {
			delete(l.entries, key)
			delete(l.locks, key)
		}
	}
}

// Stats reports the number of live keys, for monitoring.
func (l *MemoryLedger) Stats() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clear empties the ledger. Test helper.
func (l *MemoryLedger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[string]memoryEntry)
	l.locks = make(map[string]*sync.Mutex)
}

var _ Ledger = (*MemoryLedger)(nil)

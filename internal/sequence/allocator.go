// Package sequence allocates year-scoped reference numbers for civic
// records: BR for residents, DR for document requests, VA for voter
// applications, and BID/BC/CR for issued documents.
package sequence

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MaxSequenceStore reads the highest allocated sequence number for a
// series prefix within a year. Implementations query the backing store
// for identifiers matching "PREFIX-YEAR-%".
type MaxSequenceStore interface {
	MaxSequence(ctx context.Context, prefix string, year int) (int64, error)
}

// Allocator produces references of the form PREFIX-YYYY-NNNNNNNNNN.
//
// Allocation is serialized per series with a mutex so two in-process
// callers cannot compute the same next number. The store read itself is
// still "max existing + 1", so deployments must route all writers for a
// series through a single process.
type Allocator struct {
	store MaxSequenceStore
	now   func() time.Time

	mu     sync.Mutex
	series map[string]*sync.Mutex
}

// NewAllocator constructs an Allocator over the given store.
func NewAllocator(store MaxSequenceStore) *Allocator {
	return &Allocator{
		store:  store,
		now:    time.Now,
		series: make(map[string]*sync.Mutex),
	}
}

// WithClock overrides the time source. Used by tests.
func (a *Allocator) WithClock(now func() time.Time) *Allocator {
	a.now = now
	return a
}

// Next returns the next reference for the series prefix in the current
// year: max existing sequence + 1, or 1 when the year has no records.
func (a *Allocator) Next(ctx context.Context, prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("sequence: prefix required")
	}

	lock := a.seriesLock(prefix)
	lock.Lock()
	defer lock.Unlock()

	year := a.now().Year()
	max, err := a.store.MaxSequence(ctx, prefix, year)
	if err != nil {
		return "", fmt.Errorf("sequence: read max for %s: %w", prefix, err)
	}

	return Format(prefix, year, max+1), nil
}

// Format renders a reference from its parts, zero-padding the sequence
// to 10 digits.
func Format(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%010d", prefix, year, seq)
}

func (a *Allocator) seriesLock(prefix string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	lock, ok := a.series[prefix]
	if !ok {
		lock = &sync.Mutex{}
		a.series[prefix] = lock
	}
	return lock
}

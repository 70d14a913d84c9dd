package sequence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	mu   sync.Mutex
	max  map[string]int64
	err  error
	hits int
}

func (s *stubStore) MaxSequence(ctx context.Context, prefix string, year int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits++
	if s.err != nil {
		return 0, s.err
	}
	return s.max[prefix], nil
}

func fixedClock(year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, 6, 15, 12, 0, 0, 0, time.UTC)
	}
}

func TestNextFirstOfYear(t *testing.T) {
	store := &stubStore{max: map[string]int64{}}
	alloc := NewAllocator(store).WithClock(fixedClock(2025))

	ref, err := alloc.Next(context.Background(), "BID")
	require.NoError(t, err)
	assert.Equal(t, "BID-2025-0000000001", ref)
}

func TestNextIncrementsExistingMax(t *testing.T) {
	store := &stubStore{max: map[string]int64{"DR": 41}}
	alloc := NewAllocator(store).WithClock(fixedClock(2025))

	ref, err := alloc.Next(context.Background(), "DR")
	require.NoError(t, err)
	assert.Equal(t, "DR-2025-0000000042", ref)
}

func TestNextPropagatesStoreError(t *testing.T) {
	store := &stubStore{err: errors.New("connection lost")}
	alloc := NewAllocator(store).WithClock(fixedClock(2025))

	_, err := alloc.Next(context.Background(), "BR")
	require.Error(t, err)
}

func TestNextRequiresPrefix(t *testing.T) {
	alloc := NewAllocator(&stubStore{max: map[string]int64{}})
	_, err := alloc.Next(context.Background(), "")
	require.Error(t, err)
}

func TestNextSerializesPerSeries(t *testing.T) {
	// The store returns a stale max unless callers are serialized; with the
	// per-series lock every caller observes the previous caller's write.
	store := &seqStore{max: map[string]int64{}}
	alloc := NewAllocator(store).WithClock(fixedClock(2025))

	const workers = 16
	refs := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ref, err := alloc.Next(context.Background(), "VA")
			if err != nil {
				t.Error(err)
				return
			}
			refs <- ref
		}()
	}
	wg.Wait()
	close(refs)

	seen := map[string]bool{}
	for ref := range refs {
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
	assert.Len(t, seen, workers)
}

// seqStore mimics a backing store where each allocated reference is
// written back, so MaxSequence reflects committed allocations.
type seqStore struct {
	mu  sync.Mutex
	max map[string]int64
}

func (s *seqStore) MaxSequence(ctx context.Context, prefix string, year int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.max[prefix]
	s.max[prefix] = current + 1
	return current, nil
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "CR-2024-0000001230", Format("CR", 2024, 1230))
}

package chat

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRetention struct {
	mu      sync.Mutex
	cutoffs []time.Time
	deleted int64
	err     error

	started chan struct{} // closed on first call, if set
	block   chan struct{} // first call blocks until closed, if set
	calls   int
}

func (f *fakeRetention) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	f.calls++
	first := f.calls == 1
	f.cutoffs = append(f.cutoffs, cutoff)
	f.mu.Unlock()

	if first && f.started != nil {
		close(f.started)
	}
	if first && f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return 0, f.err
	}
	return f.deleted, nil
}

func (f *fakeRetention) recorded() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Time(nil), f.cutoffs...)
}

func TestSweeperComputesCutoffFromClock(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeRetention{deleted: 2}
	s := NewSweeper(store, SweeperConf{Clock: func() time.Time { return now }})

	s.sweepOnce(context.Background())

	cutoffs := store.recorded()
	require.Len(t, cutoffs, 1)
	assert.True(t, now.Add(-RetentionAge).Equal(cutoffs[0]))
}

// agedRetention holds message timestamps and deletes the ones older than
// the cutoff it is handed, like the real store does.
type agedRetention struct {
	mu   sync.Mutex
	msgs []time.Time
}

func (f *agedRetention) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.msgs[:0]
	var n int64
	for _, ts := range f.msgs {
		if ts.Before(cutoff) {
			n++
		} else {
			kept = append(kept, ts)
		}
	}
	f.msgs = kept
	return n, nil
}

func (f *agedRetention) remaining() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Time(nil), f.msgs...)
}

func TestSweeperDeletesOnlyExpiredMessages(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	fresh := now.Add(-23 * time.Hour)
	store := &agedRetention{msgs: []time.Time{
		now.Add(-25 * time.Hour), // past the retention age, must go
		fresh,                    // still inside the window, must stay
	}}
	s := NewSweeper(store, SweeperConf{Clock: func() time.Time { return now }})

	s.sweepOnce(context.Background())

	left := store.remaining()
	require.Len(t, left, 1)
	assert.True(t, fresh.Equal(left[0]))

	// a second sweep with an unchanged clock deletes nothing more
	s.sweepOnce(context.Background())
	assert.Len(t, store.remaining(), 1)
}

func TestSweeperRunTicks(t *testing.T) {
	store := &fakeRetention{}
	s := NewSweeper(store, SweeperConf{Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	s.Run(ctx) // returns on ctx cancellation

	assert.GreaterOrEqual(t, len(store.recorded()), 1)
}

func TestSweeperStoreFailureDoesNotStopIt(t *testing.T) {
	store := &fakeRetention{err: fmt.Errorf("mongo down")}
	s := NewSweeper(store, SweeperConf{})

	// a failed sweep is logged and simply retried on the next tick
	s.sweepOnce(context.Background())
	s.sweepOnce(context.Background())

	assert.Len(t, store.recorded(), 2)
}

func TestSweeperSkipsOverlappingRun(t *testing.T) {
	store := &fakeRetention{
		started: make(chan struct{}),
		block:   make(chan struct{}),
	}
	s := NewSweeper(store, SweeperConf{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.sweepOnce(context.Background())
	}()

	<-store.started
	// second tick fires while the first sweep is still in the store
	s.sweepOnce(context.Background())

	close(store.block)
	wg.Wait()

	assert.Len(t, store.recorded(), 1, "overlapping sweep must be skipped, not queued")
}

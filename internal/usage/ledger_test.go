package usage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myaiplug/saasify/pkg/models"
)

// memStore is a map-backed Store for tests. Its own mutex only keeps
// the map safe; per-owner serialization is the ledger's job.
type memStore struct {
	mu   sync.Mutex
	recs map[string]models.UsageRecord
}

func newMemStore() *memStore {
	return &memStore{recs: make(map[string]models.UsageRecord)}
}

func (s *memStore) GetUsage(_ context.Context, ownerID string) (models.UsageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[ownerID]
	if !ok {
		return models.UsageRecord{OwnerID: ownerID}, nil
	}
	return rec, nil
}

func (s *memStore) PutUsage(_ context.Context, rec models.UsageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.OwnerID] = rec
	return nil
}

func TestLedger_Get_FreshOwnerIsZero(t *testing.T) {
	l := NewLedger(newMemStore(), nil)

	rec, err := l.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, rec.GenerationsUsed)
	assert.False(t, rec.PaidTier)
}

func TestLedger_RequiresOwner(t *testing.T) {
	l := NewLedger(newMemStore(), nil)
	ctx := context.Background()

	_, err := l.Get(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = l.Increment(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = l.Upgrade(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLedger_Increment(t *testing.T) {
	l := NewLedger(newMemStore(), nil)
	ctx := context.Background()

	n, err := l.Increment(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = l.Increment(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rec, err := l.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.GenerationsUsed)
}

func TestLedger_Increment_ConcurrentNoLostUpdates(t *testing.T) {
	l := NewLedger(newMemStore(), nil)
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := l.Increment(ctx, "u1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, err := l.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, workers, rec.GenerationsUsed)
}

func TestLedger_Upgrade(t *testing.T) {
	l := NewLedger(newMemStore(), nil)
	ctx := context.Background()

	_, err := l.Increment(ctx, "u1")
	require.NoError(t, err)

	rec, err := l.Upgrade(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, rec.PaidTier)
	assert.Equal(t, 1, rec.GenerationsUsed, "upgrade must not touch the counter")

	// Upgrading twice stays paid.
	rec, err = l.Upgrade(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, rec.PaidTier)
}

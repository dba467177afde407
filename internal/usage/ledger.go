package usage

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/myaiplug/saasify/pkg/models"
)

// ErrUnauthorized means no owner identity was resolved for the call.
// Callers recover by prompting authentication, not by retrying.
var ErrUnauthorized = errors.New("no resolved owner")

// Store is the persistence the ledger needs. Both operations are
// idempotent on retry; no cross-key transactions are assumed.
type Store interface {
	GetUsage(ctx context.Context, ownerID string) (models.UsageRecord, error)
	PutUsage(ctx context.Context, rec models.UsageRecord) error
}

const lockStripes = 32

// Ledger tracks free-quota consumption and paid-tier status per owner.
// The read-modify-write in Increment and Upgrade is serialized per
// owner through striped locks, so racing sessions never lose updates.
type Ledger struct {
	store Store
	log   *slog.Logger
	locks [lockStripes]sync.Mutex
}

func NewLedger(store Store, log *slog.Logger) *Ledger {
	if log == nil {
		log = slog.Default()
	}
	return &Ledger{store: store, log: log}
}

func (l *Ledger) ownerLock(ownerID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(ownerID))
	return &l.locks[h.Sum32()%lockStripes]
}

// Get reads the current counters. A never-seen owner yields a zero
// record, materialized lazily on first write.
func (l *Ledger) Get(ctx context.Context, ownerID string) (models.UsageRecord, error) {
	if ownerID == "" {
		return models.UsageRecord{}, ErrUnauthorized
	}
	return l.store.GetUsage(ctx, ownerID)
}

// Increment adds one consumed generation and returns the new count.
// The counter never decreases.
func (l *Ledger) Increment(ctx context.Context, ownerID string) (int, error) {
	if ownerID == "" {
		return 0, ErrUnauthorized
	}

	mu := l.ownerLock(ownerID)
	mu.Lock()
	defer mu.Unlock()

	rec, err := l.store.GetUsage(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to read usage: %w", err)
	}
	rec.OwnerID = ownerID
	rec.GenerationsUsed++
	rec.UpdatedAt = time.Now()
	if err := l.store.PutUsage(ctx, rec); err != nil {
		return 0, fmt.Errorf("failed to persist usage: %w", err)
	}

	l.log.Debug("usage incremented", "owner", ownerID, "count", rec.GenerationsUsed)
	return rec.GenerationsUsed, nil
}

// Upgrade marks the owner as paid tier. The flag never reverts here;
// only a confirmed payment reaches this path.
func (l *Ledger) Upgrade(ctx context.Context, ownerID string) (models.UsageRecord, error) {
	if ownerID == "" {
		return models.UsageRecord{}, ErrUnauthorized
	}

	mu := l.ownerLock(ownerID)
	mu.Lock()
	defer mu.Unlock()

	rec, err := l.store.GetUsage(ctx, ownerID)
	if err != nil {
		return models.UsageRecord{}, fmt.Errorf("failed to read usage: %w", err)
	}
	rec.OwnerID = ownerID
	rec.PaidTier = true
	rec.UpdatedAt = time.Now()
	if err := l.store.PutUsage(ctx, rec); err != nil {
		return models.UsageRecord{}, fmt.Errorf("failed to persist upgrade: %w", err)
	}

	l.log.Info("owner upgraded to paid tier", "owner", ownerID)
	return rec, nil
}

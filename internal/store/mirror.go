package store

import (
	"context"

	"github.com/myaiplug/saasify/internal/store/localcache"
	"github.com/myaiplug/saasify/pkg/models"
)

// HistoryMirror routes history persistence: owners write to the
// durable store, anonymous sessions fall back to the local cache.
type HistoryMirror struct {
	db    *DB
	cache *localcache.Cache
}

func NewHistoryMirror(db *DB, cache *localcache.Cache) *HistoryMirror {
	return &HistoryMirror{db: db, cache: cache}
}

func (m *HistoryMirror) SaveCreation(ctx context.Context, ownerID string, c *models.Creation) error {
	if ownerID == "" {
		return m.saveLocal(c)
	}
	saved := c.Clone()
	saved.OwnerID = ownerID
	return m.db.SaveCreation(ctx, saved)
}

func (m *HistoryMirror) LoadCreations(ctx context.Context, ownerID string) ([]*models.Creation, error) {
	if ownerID == "" {
		return m.cache.Load()
	}
	return m.db.ListCreations(ctx, ownerID)
}

// saveLocal upserts into the cached list: an existing id is updated in
// place, a new creation is prepended.
func (m *HistoryMirror) saveLocal(c *models.Creation) error {
	list, err := m.cache.Load()
	if err != nil {
		return err
	}

	updated := false
	for i, existing := range list {
		if existing.ID == c.ID {
			list[i] = c.Clone()
			updated = true
			break
		}
	}
	if !updated {
		list = append([]*models.Creation{c.Clone()}, list...)
	}
	return m.cache.Save(list)
}

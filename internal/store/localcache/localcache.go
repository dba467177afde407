package localcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/myaiplug/saasify/pkg/models"
)

// MaxEntries bounds the anonymous history, oldest entries dropped.
const MaxEntries = 20

const cacheFile = "history.json"

// Cache is a JSON-file history used when no owner session exists.
// It mirrors the durable store's list shape, newest first.
type Cache struct {
	dir string
}

func New(dir string) *Cache {
	return &Cache{dir: dir}
}

func (c *Cache) Path() string {
	return filepath.Join(c.dir, cacheFile)
}

type entry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Load returns the cached history. A missing file means an empty
// history, not an error.
func (c *Cache) Load() ([]*models.Creation, error) {
	data, err := os.ReadFile(c.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", cacheFile, err)
	}

	creations := make([]*models.Creation, 0, len(entries))
	for _, e := range entries {
		creations = append(creations, &models.Creation{
			ID:        e.ID,
			Name:      e.Name,
			Content:   e.Content,
			UpdatedAt: e.UpdatedAt,
		})
	}
	return creations, nil
}

// Save writes the history, truncated to MaxEntries from the front
// (the list is newest first, so the oldest entries fall off).
func (c *Cache) Save(creations []*models.Creation) error {
	if err := os.MkdirAll(c.dir, 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	if len(creations) > MaxEntries {
		creations = creations[:MaxEntries]
	}

	entries := make([]entry, 0, len(creations))
	for _, cr := range creations {
		entries = append(entries, entry{
			ID:        cr.ID,
			Name:      cr.Name,
			Content:   cr.Content,
			UpdatedAt: cr.UpdatedAt,
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(c.Path(), data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", cacheFile, err)
	}
	return nil
}

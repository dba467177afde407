package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/myaiplug/saasify/internal/store/localcache"
	"github.com/myaiplug/saasify/pkg/models"
)

func testMirror(t *testing.T) *HistoryMirror {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewHistoryMirror(db, localcache.New(dir))
}

func TestHistoryMirror_AnonymousPrependAndUpdate(t *testing.T) {
	m := testMirror(t)
	ctx := context.Background()

	a := &models.Creation{ID: "a", Name: "A", Content: "<a>", UpdatedAt: time.Now()}
	b := &models.Creation{ID: "b", Name: "B", Content: "<b>", UpdatedAt: time.Now()}

	if err := m.SaveCreation(ctx, "", a); err != nil {
		t.Fatalf("SaveCreation() error = %v", err)
	}
	if err := m.SaveCreation(ctx, "", b); err != nil {
		t.Fatalf("SaveCreation() error = %v", err)
	}

	list, err := m.LoadCreations(ctx, "")
	if err != nil {
		t.Fatalf("LoadCreations() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != "b" || list[1].ID != "a" {
		t.Fatalf("anonymous history order wrong: %v", ids(list))
	}

	// Updating an existing id keeps its position.
	a2 := &models.Creation{ID: "a", Name: "A", Content: "<a edited>", UpdatedAt: time.Now()}
	if err := m.SaveCreation(ctx, "", a2); err != nil {
		t.Fatalf("SaveCreation() update error = %v", err)
	}
	list, _ = m.LoadCreations(ctx, "")
	if list[0].ID != "b" || list[1].ID != "a" {
		t.Errorf("update reordered history: %v", ids(list))
	}
	if list[1].Content != "<a edited>" {
		t.Errorf("Content = %q, want <a edited>", list[1].Content)
	}
}

func TestHistoryMirror_OwnerUsesStore(t *testing.T) {
	m := testMirror(t)
	ctx := context.Background()

	c := &models.Creation{ID: "c1", Name: "C", Content: "<c>", UpdatedAt: time.Now()}
	if err := m.SaveCreation(ctx, "u1", c); err != nil {
		t.Fatalf("SaveCreation() error = %v", err)
	}

	owned, err := m.LoadCreations(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadCreations() error = %v", err)
	}
	if len(owned) != 1 || owned[0].OwnerID != "u1" {
		t.Errorf("owner history = %v, want one entry owned by u1", ids(owned))
	}

	anon, err := m.LoadCreations(ctx, "")
	if err != nil {
		t.Fatalf("LoadCreations() anonymous error = %v", err)
	}
	if len(anon) != 0 {
		t.Errorf("anonymous history leaked owner entries: %v", ids(anon))
	}
}

func ids(list []*models.Creation) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.ID
	}
	return out
}

package templates

import (
	"strings"
	"testing"
)

func TestGalleryIsComplete(t *testing.T) {
	all := All()
	if len(all) != 3 {
		t.Fatalf("expected 3 templates, got %d", len(all))
	}
	for _, tpl := range all {
		if tpl.ID == "" || tpl.Name == "" || tpl.Description == "" {
			t.Errorf("template %q has missing metadata", tpl.ID)
		}
		if !strings.HasPrefix(tpl.Repo, "https://github.com/") {
			t.Errorf("template %q repo is not a github URL: %s", tpl.ID, tpl.Repo)
		}
		if !strings.Contains(tpl.Starter, "<!DOCTYPE html>") {
			t.Errorf("template %q starter is not a full page", tpl.ID)
		}
		if tpl.Prompt() != tpl.Repo {
			t.Errorf("template %q prompt should be its repo URL", tpl.ID)
		}
	}
}

func TestFind(t *testing.T) {
	tpl, ok := Find("  Growth-CRM ")
	if !ok {
		t.Fatal("expected to find growth-crm")
	}
	if tpl.Name != "Growth CRM" {
		t.Errorf("got %q", tpl.Name)
	}

	if _, ok := Find("nonexistent"); ok {
		t.Error("expected miss for unknown id")
	}
}

func TestAllReturnsCopy(t *testing.T) {
	All()[0].Name = "mutated"
	if All()[0].Name == "mutated" {
		t.Error("All must not expose the backing array")
	}
}

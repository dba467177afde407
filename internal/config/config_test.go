package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDir_EnvOverride(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "nested", "cfg")
	t.Setenv("SAASIFY_CONFIG_DIR", tmp)

	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error = %v", err)
	}
	if dir != tmp {
		t.Errorf("Dir() = %q, want %q", dir, tmp)
	}
	if _, err := os.Stat(tmp); err != nil {
		t.Errorf("Dir() did not create directory: %v", err)
	}
}

func TestDBPath(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("SAASIFY_CONFIG_DIR", tmp)

	path, err := DBPath()
	if err != nil {
		t.Fatalf("DBPath() error = %v", err)
	}
	if path != filepath.Join(tmp, "saasify.db") {
		t.Errorf("DBPath() = %q", path)
	}
}

func TestModel_Default(t *testing.T) {
	t.Setenv("SAASIFY_MODEL", "")
	if got := Model(); got != defaultModel {
		t.Errorf("Model() = %q, want %q", got, defaultModel)
	}

	t.Setenv("SAASIFY_MODEL", "gemini-experimental")
	if got := Model(); got != "gemini-experimental" {
		t.Errorf("Model() = %q, want override", got)
	}
}

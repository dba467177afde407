package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

var (
	ErrPathTraversal = fmt.Errorf("path traversal detected")
	ErrAbsolutePath  = fmt.Errorf("absolute paths are not allowed")
)

// ValidateExportPath rejects export destinations that escape the
// working directory. Export filenames come from creation names, which
// are user-influenced.
func ValidateExportPath(path string) error {
	if filepath.IsAbs(path) {
		return ErrAbsolutePath
	}

	cleaned := filepath.Clean(path)
	if strings.HasPrefix(cleaned, "..") || strings.Contains(path, "..") {
		return ErrPathTraversal
	}

	if strings.HasPrefix(filepath.Base(cleaned), "-") {
		return fmt.Errorf("filename cannot start with hyphen")
	}
	return nil
}

// Slug turns a creation name into a safe lowercase filename stem,
// e.g. "Neural Artifact" -> "neural_artifact".
func Slug(name string) string {
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-",
		"*", "", "?", "", "\"", "",
		"<", "", ">", "", "|", "", "\x00", "",
	)
	s := replacer.Replace(name)
	s = strings.TrimLeft(s, ".-")
	s = strings.TrimRight(s, ". ")
	s = strings.ToLower(strings.Join(strings.Fields(s), "_"))
	if s == "" {
		s = "creation"
	}
	return s
}

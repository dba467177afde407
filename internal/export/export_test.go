package export

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/myaiplug/saasify/internal/transform"
	"github.com/myaiplug/saasify/pkg/models"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
<style>
  body { background: #020617; }
</style>
</head>
<body>
<h1>Saasify Demo</h1>
<script>
  console.log("boot");
</script>
</body>
</html>`

func sampleCreation() *models.Creation {
	return &models.Creation{
		ID:      "c1",
		Name:    "Neural Artifact",
		Content: samplePage,
	}
}

func TestWriteHTML(t *testing.T) {
	dir := t.TempDir()
	e := New(&transform.Fake{}, dir)

	path, err := e.WriteHTML(sampleCreation())
	if err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	if filepath.Base(path) != "neural_artifact.html" {
		t.Errorf("unexpected filename: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != samplePage {
		t.Error("exported page differs from creation content")
	}
}

func TestWriteHTMLRejectsEmpty(t *testing.T) {
	e := New(&transform.Fake{}, t.TempDir())

	if _, err := e.WriteHTML(nil); err == nil {
		t.Error("expected error for nil creation")
	}
	if _, err := e.WriteHTML(&models.Creation{Name: "x", Content: "  "}); err == nil {
		t.Error("expected error for blank content")
	}
}

func TestWriteZipSplitsBundle(t *testing.T) {
	dir := t.TempDir()
	e := New(&transform.Fake{}, dir)

	path, err := e.WriteZip(sampleCreation())
	if err != nil {
		t.Fatalf("WriteZip: %v", err)
	}
	if filepath.Base(path) != "neural_artifact_web.zip" {
		t.Errorf("unexpected archive name: %s", path)
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	got := map[string]string{}
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		got[f.Name] = string(data)
	}

	for _, name := range []string{"index.html", "style.css", "main.js", "manifest.json"} {
		if _, ok := got[name]; !ok {
			t.Errorf("archive missing %s", name)
		}
	}
	if !strings.Contains(got["style.css"], "#020617") {
		t.Error("style.css missing extracted rules")
	}
	if !strings.Contains(got["main.js"], "console.log") {
		t.Error("main.js missing extracted script")
	}
	if !strings.Contains(got["index.html"], "Saasify Demo") {
		t.Error("index.html missing body markup")
	}
	if strings.Contains(got["index.html"], "console.log") {
		t.Error("index.html should not inline the extracted script")
	}
	if !strings.Contains(got["index.html"], "cdn.tailwindcss.com") {
		t.Error("index.html missing tailwind loader")
	}
	if !strings.Contains(got["manifest.json"], `"Neural Artifact"`) {
		t.Error("manifest missing creation name")
	}
}

func TestWriteFlutter(t *testing.T) {
	dir := t.TempDir()
	e := New(&transform.Fake{}, dir)

	root, err := e.WriteFlutter(context.Background(), sampleCreation())
	if err != nil {
		t.Fatalf("WriteFlutter: %v", err)
	}
	if filepath.Base(root) != "neural_artifact_flutter" {
		t.Errorf("unexpected project dir: %s", root)
	}

	dart, err := os.ReadFile(filepath.Join(root, "lib", "main.dart"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dart), "flutter") {
		t.Error("main.dart missing flutter import")
	}

	spec, err := os.ReadFile(filepath.Join(root, "pubspec.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(spec), "name: neural_artifact") {
		t.Error("pubspec missing project name")
	}
}

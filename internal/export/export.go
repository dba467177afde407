package export

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/myaiplug/saasify/internal/security"
	"github.com/myaiplug/saasify/internal/transform"
	"github.com/myaiplug/saasify/pkg/models"
)

var (
	styleRe  = regexp.MustCompile(`(?is)<style[^>]*>(.*?)</style>`)
	scriptRe = regexp.MustCompile(`(?is)<script[^>]*>(.*?)</script>`)
	bodyRe   = regexp.MustCompile(`(?is)<body[^>]*>(.*)</body>`)
)

// Exporter writes creations out as standalone pages, deployable web
// bundles and Flutter projects. Flutter conversion goes through the
// transform engine; everything else is local.
type Exporter struct {
	engine transform.Service
	outDir string
}

func New(engine transform.Service, outDir string) *Exporter {
	if outDir == "" {
		outDir = "."
	}
	return &Exporter{engine: engine, outDir: outDir}
}

// WriteHTML saves the creation as a single self-contained page and
// returns the written path.
func (e *Exporter) WriteHTML(c *models.Creation) (string, error) {
	if c == nil || strings.TrimSpace(c.Content) == "" {
		return "", models.ErrEmptyContent
	}

	name := security.Slug(c.Name) + ".html"
	if err := security.ValidateExportPath(name); err != nil {
		return "", err
	}

	path := filepath.Join(e.outDir, name)
	if err := os.MkdirAll(e.outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(c.Content), 0644); err != nil {
		return "", fmt.Errorf("failed to write page: %w", err)
	}
	return path, nil
}

// WriteZip packages the creation as a deployable web bundle: markup
// split into index.html, style.css and main.js, plus a PWA manifest.
// Returns the written archive path, named {slug}_web.zip.
func (e *Exporter) WriteZip(c *models.Creation) (string, error) {
	if c == nil || strings.TrimSpace(c.Content) == "" {
		return "", models.ErrEmptyContent
	}

	slug := security.Slug(c.Name)
	name := slug + "_web.zip"
	if err := security.ValidateExportPath(name); err != nil {
		return "", err
	}

	css := extractAll(styleRe, c.Content)
	js := extractAll(scriptRe, c.Content)
	body := extractBody(c.Content)

	manifest, err := json.MarshalIndent(map[string]string{
		"name":             c.Name,
		"short_name":       slug,
		"start_url":        "index.html",
		"display":          "standalone",
		"background_color": "#020617",
		"theme_color":      "#020617",
	}, "", "  ")
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(e.outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(e.outDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create archive: %w", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	files := []struct {
		name    string
		content string
	}{
		{"index.html", indexPage(c.Name, body)},
		{"style.css", css},
		{"main.js", js},
		{"manifest.json", string(manifest)},
	}
	for _, file := range files {
		fw, err := w.Create(file.name)
		if err != nil {
			return "", fmt.Errorf("failed to add %s: %w", file.name, err)
		}
		if _, err := fw.Write([]byte(file.content)); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", file.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize archive: %w", err)
	}
	return path, nil
}

// WriteFlutter converts the creation through the engine and writes a
// minimal Flutter project under {slug}_flutter/.
func (e *Exporter) WriteFlutter(ctx context.Context, c *models.Creation) (string, error) {
	if c == nil || strings.TrimSpace(c.Content) == "" {
		return "", models.ErrEmptyContent
	}

	dart, err := e.engine.Convert(ctx, c.Content, transform.TargetFlutter)
	if err != nil {
		return "", err
	}

	slug := security.Slug(c.Name)
	if err := security.ValidateExportPath(slug + "_flutter"); err != nil {
		return "", err
	}

	root := filepath.Join(e.outDir, slug+"_flutter")
	if err := os.MkdirAll(filepath.Join(root, "lib"), 0755); err != nil {
		return "", fmt.Errorf("failed to create project directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(root, "lib", "main.dart"), []byte(dart), 0644); err != nil {
		return "", fmt.Errorf("failed to write main.dart: %w", err)
	}
	if err := os.WriteFile(filepath.Join(root, "pubspec.yaml"), []byte(pubspec(slug)), 0644); err != nil {
		return "", fmt.Errorf("failed to write pubspec.yaml: %w", err)
	}
	return root, nil
}

// extractAll concatenates the inner content of every match, preserving
// order.
func extractAll(re *regexp.Regexp, content string) string {
	var b strings.Builder
	for _, m := range re.FindAllStringSubmatch(content, -1) {
		b.WriteString(strings.TrimSpace(m[1]))
		b.WriteString("\n")
	}
	return b.String()
}

// extractBody returns the page body with inline style and script
// blocks removed, since those move into their own files. Pages with no
// body tag are used as-is.
func extractBody(content string) string {
	stripped := styleRe.ReplaceAllString(content, "")
	stripped = scriptRe.ReplaceAllString(stripped, "")
	if m := bodyRe.FindStringSubmatch(stripped); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(stripped)
}

func indexPage(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<link rel="manifest" href="manifest.json">
<script src="https://cdn.tailwindcss.com"></script>
<link rel="stylesheet" href="style.css">
</head>
<body>
%s
<script src="main.js"></script>
</body>
</html>
`, title, body)
}

func pubspec(slug string) string {
	name := strings.ReplaceAll(slug, "-", "_")
	return fmt.Sprintf(`name: %s
description: Generated by MyAiPlug Saasify.
publish_to: "none"
version: 1.0.0+1

environment:
  sdk: ">=3.0.0 <4.0.0"

dependencies:
  flutter:
    sdk: flutter

flutter:
  uses-material-design: true
`, name)
}

package transform

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/myaiplug/saasify/pkg/models"
)

var (
	ErrAPIKeyRequired   = errors.New("API key is required")
	ErrTransformFailed  = errors.New("transform failed")
	ErrIncompleteResult = errors.New("incomplete engine response")
)

// MinRefineLength flags suspiciously short refine results: a model
// that answers with less than this did not return full markup.
const MinRefineLength = 100

// ExportTarget names a conversion output format.
type ExportTarget string

const (
	TargetFlutter ExportTarget = "flutter"
)

// Service is the opaque asynchronous engine that turns prompts and
// instructions into artifact markup. Implementations must be safe for
// use from a single in-flight call at a time; the creation state
// machine serializes callers.
type Service interface {
	// Generate produces a fresh artifact. An empty result means the
	// engine produced no artifact; that is not an error.
	Generate(ctx context.Context, prompt string, image *models.ImageInput) (string, error)

	// Refine rewrites existing artifact markup per the instruction.
	// Absent or suspiciously short results fail with
	// ErrIncompleteResult.
	Refine(ctx context.Context, currentContent, instruction string) (string, error)

	// Component produces a standalone markup snippet from a
	// description, for preview before insertion.
	Component(ctx context.Context, description string) (string, error)

	// Convert translates artifact markup to another target, e.g. a
	// Flutter main.dart.
	Convert(ctx context.Context, content string, target ExportTarget) (string, error)
}

var fenceOpen = regexp.MustCompile("^```[a-zA-Z]*\\s*")

// StripFences removes a wrapping markdown code fence from an engine
// response, tolerating a language tag on the opening fence.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = fenceOpen.ReplaceAllString(s, "")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

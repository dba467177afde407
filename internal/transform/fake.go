package transform

import (
	"context"
	"fmt"

	"github.com/myaiplug/saasify/pkg/models"
)

// Fake is a deterministic in-process Service used by tests and by
// offline runs. Unset hooks fall back to canned markup.
type Fake struct {
	GenerateFunc  func(ctx context.Context, prompt string, image *models.ImageInput) (string, error)
	RefineFunc    func(ctx context.Context, currentContent, instruction string) (string, error)
	ComponentFunc func(ctx context.Context, description string) (string, error)
	ConvertFunc   func(ctx context.Context, content string, target ExportTarget) (string, error)

	Calls int
}

func (f *Fake) Generate(ctx context.Context, prompt string, image *models.ImageInput) (string, error) {
	f.Calls++
	if f.GenerateFunc != nil {
		return f.GenerateFunc(ctx, prompt, image)
	}
	return fmt.Sprintf("<!DOCTYPE html><html><body><h1>%s</h1></body></html>", prompt), nil
}

func (f *Fake) Refine(ctx context.Context, currentContent, instruction string) (string, error) {
	f.Calls++
	if f.RefineFunc != nil {
		return f.RefineFunc(ctx, currentContent, instruction)
	}
	return fmt.Sprintf("%s<!-- refined: %s -->", currentContent, instruction), nil
}

func (f *Fake) Component(ctx context.Context, description string) (string, error) {
	f.Calls++
	if f.ComponentFunc != nil {
		return f.ComponentFunc(ctx, description)
	}
	return fmt.Sprintf("<div class=\"component\">%s</div>", description), nil
}

func (f *Fake) Convert(ctx context.Context, content string, target ExportTarget) (string, error) {
	f.Calls++
	if f.ConvertFunc != nil {
		return f.ConvertFunc(ctx, content, target)
	}
	if target != TargetFlutter {
		return "", models.ErrUnknownTarget
	}
	return "import 'package:flutter/material.dart';\n\nvoid main() => runApp(const SaasifyApp());\n\nclass SaasifyApp extends StatelessWidget {\n  const SaasifyApp({super.key});\n\n  @override\n  Widget build(BuildContext context) => const MaterialApp();\n}\n", nil
}

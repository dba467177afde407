package gemini

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/genai"

	"github.com/myaiplug/saasify/internal/security"
	"github.com/myaiplug/saasify/internal/transform"
	"github.com/myaiplug/saasify/pkg/models"
)

const DefaultModel = "gemini-3-pro-preview"

const systemInstruction = `You are "MyAiPlug: Saasify", an elite growth engineer specializing in pro-audio and WebGL-level GUIs.

### DESIGN SPEC:
- Aesthetics: deep space backgrounds (#020617), 1px precision borders, subtle teal-to-indigo gradients.
- Typography: Inter for UI, JetBrains Mono for data readouts.
- WebGL simulation: use Canvas for all data visualizations.

### OUTPUT RULES:
- Return ONLY raw HTML/JS/CSS unless specifically asked for another format.
- No markdown wrappers outside the code block.
- Use ONLY vanilla JS (no external frameworks).`

const flutterInstruction = "You are an expert Flutter architect."

// Client is a thin wrapper around the official genai client. It only
// focuses on the API calls; gating, retries and state handling live in
// the callers.
type Client struct {
	cli   *genai.Client
	model string
}

func New(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, transform.ErrAPIKeyRequired
	}
	if model == "" {
		model = DefaultModel
	}

	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Client{cli: cli, model: model}, nil
}

func (c *Client) Name() string { return "Gemini:" + c.model }

func (c *Client) Generate(ctx context.Context, prompt string, image *models.ImageInput) (string, error) {
	if err := image.Validate(); err != nil {
		return "", err
	}

	var parts []*genai.Part
	if image != nil {
		raw, err := base64.StdEncoding.DecodeString(image.Data)
		if err != nil {
			return "", fmt.Errorf("%w: %v", models.ErrInvalidImage, err)
		}
		mime := image.Mime
		if mime == "" {
			mime = "image/png"
		}
		parts = append(parts,
			&genai.Part{InlineData: &genai.Blob{Data: raw, MIMEType: mime}},
			&genai.Part{Text: visionPrompt(prompt)},
		)
	} else {
		parts = append(parts, &genai.Part{Text: generatePrompt(prompt)})
	}

	text, err := c.call(ctx, parts, systemInstruction, 0.1)
	if err != nil {
		return "", err
	}
	// An empty response means no artifact was produced; callers branch
	// on presence rather than treating it as a failure.
	return transform.StripFences(text), nil
}

func (c *Client) Refine(ctx context.Context, currentContent, instruction string) (string, error) {
	parts := []*genai.Part{
		{Text: "CURRENT CODE:\n" + currentContent},
		{Text: refinePrompt(instruction)},
	}

	text, err := c.call(ctx, parts, systemInstruction, 0.1)
	if err != nil {
		return "", err
	}
	if len(text) < transform.MinRefineLength {
		return "", transform.ErrIncompleteResult
	}
	return transform.StripFences(text), nil
}

func (c *Client) Component(ctx context.Context, description string) (string, error) {
	parts := []*genai.Part{{Text: componentPrompt(description)}}

	text, err := c.call(ctx, parts, systemInstruction, 0.2)
	if err != nil {
		return "", err
	}
	return transform.StripFences(text), nil
}

func (c *Client) Convert(ctx context.Context, content string, target transform.ExportTarget) (string, error) {
	if target != transform.TargetFlutter {
		return "", models.ErrUnknownTarget
	}
	parts := []*genai.Part{
		{Text: "WEB ARTIFACT:\n" + content},
		{Text: "TASK: Translate this web application into a complete Flutter mobile project. Output main.dart."},
	}

	text, err := c.call(ctx, parts, flutterInstruction, 0.1)
	if err != nil {
		return "", err
	}
	return transform.StripFences(text), nil
}

func (c *Client) call(ctx context.Context, parts []*genai.Part, instruction string, temperature float32) (string, error) {
	resp, err := c.cli.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{Parts: parts}},
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: instruction}}},
			Temperature:       genai.Ptr[float32](temperature),
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", transform.ErrTransformFailed, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

func generatePrompt(prompt string) string {
	if security.IsRepoPrompt(prompt) {
		return fmt.Sprintf("ARCHITECT REPO: %s. Build a sales-ready SaaS with a high-end pro plugin aesthetic and functional visualizers.", prompt)
	}
	return fmt.Sprintf("CONCEPT: %s. Build a MyAiPlug MVP with professional design standards and telemetry components.", prompt)
}

func visionPrompt(prompt string) string {
	core := prompt
	if core == "" {
		core = "Build a high-end interactive SaaS version of this visual layout."
	}
	return fmt.Sprintf("VISUAL BLUEPRINT ANALYSIS: Reconstruct this GUI with absolute precision.\nCore intention: %s", core)
}

func refinePrompt(instruction string) string {
	return fmt.Sprintf("PRO-REFINE REQUEST: %s\n\nIMPORTANT: Return the FULL revised HTML.", instruction)
}

func componentPrompt(description string) string {
	return fmt.Sprintf(`TASK: Generate a high-end standalone UI component for a pro SaaS.
Component description: %s
Tech: Tailwind CSS.
Output: ONLY the <div> snippet with its internal <script> or <style> if needed. No <html> or <body> tags.`, description)
}

package templates

import "strings"

// Template is a curated starting point in the gallery. Repo points at
// the public repository the engine architects a build from; Starter is
// an embedded markup shell that can be opened instantly without an
// engine call.
type Template struct {
	ID          string
	Name        string
	Description string
	Repo        string
	Starter     string
}

// Prompt returns the generation prompt for building this template
// through the engine.
func (t Template) Prompt() string {
	return t.Repo
}

var gallery = []Template{
	{
		ID:          "audio-engine",
		Name:        "AI Audio Engine",
		Description: "Voice synthesis control surface with waveform telemetry.",
		Repo:        "https://github.com/lucidrains/voicebox-pytorch",
		Starter:     starterAudioEngine,
	},
	{
		ID:          "analytics",
		Name:        "Real-time Analytics",
		Description: "Streaming event dashboard with live counters.",
		Repo:        "https://github.com/tinybirdco/analytics-starter-kit",
		Starter:     starterAnalytics,
	},
	{
		ID:          "growth-crm",
		Name:        "Growth CRM",
		Description: "Pipeline board for tracking deals and contacts.",
		Repo:        "https://github.com/twentyhq/twenty",
		Starter:     starterGrowthCRM,
	},
}

// All returns the gallery in display order.
func All() []Template {
	out := make([]Template, len(gallery))
	copy(out, gallery)
	return out
}

// Find looks a template up by id, case-insensitively.
func Find(id string) (Template, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, t := range gallery {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

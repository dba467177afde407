package models

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyPrompt   = errors.New("prompt cannot be empty")
	ErrNoImageData   = errors.New("image data is required")
	ErrInvalidImage  = errors.New("invalid image input")
	ErrEmptyContent  = errors.New("creation has no content")
	ErrUnknownAction = errors.New("unknown archive action")
	ErrUnknownTarget = errors.New("unknown export target")
)

// Creation is the generated single-page artifact a user iterates on.
// Content is the full markup (HTML/CSS/JS) of the artifact.
type Creation struct {
	ID        string
	OwnerID   string
	Name      string
	Content   string
	UpdatedAt time.Time
}

// Clone returns a copy so callers cannot mutate shared state.
func (c *Creation) Clone() *Creation {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// ImageInput is an optional visual reference for generation.
type ImageInput struct {
	Data string // base64 encoded image bytes
	Mime string // e.g. "image/png"
}

func (i *ImageInput) Validate() error {
	if i == nil {
		return nil
	}
	if strings.TrimSpace(i.Data) == "" {
		return ErrNoImageData
	}
	if i.Mime != "" && !strings.HasPrefix(i.Mime, "image/") {
		return ErrInvalidImage
	}
	return nil
}

// ComplexityTier is a coarse classification of request size, shown
// alongside a quote. It never affects gating itself.
type ComplexityTier string

const (
	TierStandard ComplexityTier = "Standard"
	TierDeep     ComplexityTier = "Deep"
	TierElite    ComplexityTier = "Elite"
)

func (t ComplexityTier) String() string { return string(t) }

// CostBreakdown explains how a quote was computed.
type CostBreakdown struct {
	EstimatedTokens int
	MarginPercent   string
	BufferLabel     string
}

// PriceQuote is the advisory price attached to a PaymentRequired
// denial. It is recomputed fresh for every gated request and never
// persisted.
type PriceQuote struct {
	Amount    float64
	Currency  string
	Tier      ComplexityTier
	Breakdown CostBreakdown
}

// UsageRecord tracks an owner's consumption of gated generations.
type UsageRecord struct {
	OwnerID         string
	GenerationsUsed int
	PaidTier        bool
	UpdatedAt       time.Time
}

// DenialReason says why an access decision blocked a request.
type DenialReason string

const (
	ReasonNone            DenialReason = ""
	ReasonNoSession       DenialReason = "no_session"
	ReasonPaymentRequired DenialReason = "payment_required"
)

// Decision is the outcome of gating one mutating request.
// Quote is set only for PaymentRequired denials.
type Decision struct {
	Admitted bool
	Reason   DenialReason
	Quote    *PriceQuote
}

// ArchiveAction is a named refinement applied to a history entry.
type ArchiveAction string

const (
	ActionRemix   ArchiveAction = "remix"
	ActionEdit    ArchiveAction = "edit"
	ActionAnalyze ArchiveAction = "analyze"
	ActionRoadmap ArchiveAction = "roadmap"
)

func ValidActions() []ArchiveAction {
	return []ArchiveAction{ActionRemix, ActionEdit, ActionAnalyze, ActionRoadmap}
}

func (a ArchiveAction) IsValid() bool {
	switch a {
	case ActionRemix, ActionEdit, ActionAnalyze, ActionRoadmap:
		return true
	}
	return false
}

func (a ArchiveAction) String() string { return string(a) }

// Account is an authenticated owner of creations and usage.
type Account struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}

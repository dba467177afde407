package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/myaiplug/saasify/internal/pricing"
	"github.com/myaiplug/saasify/internal/usage"
	"github.com/myaiplug/saasify/pkg/models"
)

// Every owner gets exactly this many free generations; the count is
// never reset, so the allowance is consumed once per account, ever.
const freeGenerations = 1

var ErrPaymentFailed = errors.New("payment not confirmed")

// DeniedError carries a denial decision through an error path so that
// callers can branch on it with errors.As while keeping the quote.
type DeniedError struct {
	Decision models.Decision
}

func (e *DeniedError) Error() string {
	if e.Decision.Reason == models.ReasonPaymentRequired && e.Decision.Quote != nil {
		return fmt.Sprintf("access denied: payment required (%s, $%.2f)",
			e.Decision.Quote.Tier, e.Decision.Quote.Amount)
	}
	return fmt.Sprintf("access denied: %s", e.Decision.Reason)
}

// PaymentResult is the externally confirmed outcome of a payment
// attempt. The gate trusts it; real processor integration sits outside
// this core.
type PaymentResult string

const (
	PaymentConfirmed PaymentResult = "confirmed"
	PaymentFailed    PaymentResult = "failed"
)

// Gate decides whether a mutating request may proceed. It never
// consumes quota itself: the caller increments the ledger only after
// the gated operation succeeds, so failed transforms stay free.
type Gate struct {
	ledger *usage.Ledger
	calc   *pricing.Calculator
	log    *slog.Logger
}

func New(ledger *usage.Ledger, calc *pricing.Calculator, log *slog.Logger) *Gate {
	if log == nil {
		log = slog.Default()
	}
	return &Gate{ledger: ledger, calc: calc, log: log}
}

// Authorize gates one request. PaymentRequired denials carry a quote
// computed fresh from this request's size, so the price shown always
// reflects the work actually being blocked.
func (g *Gate) Authorize(ctx context.Context, ownerID, promptText, existingContent string) (models.Decision, error) {
	if ownerID == "" {
		return models.Decision{Reason: models.ReasonNoSession}, nil
	}

	rec, err := g.ledger.Get(ctx, ownerID)
	if err != nil {
		return models.Decision{}, fmt.Errorf("failed to read usage: %w", err)
	}

	if rec.PaidTier || rec.GenerationsUsed < freeGenerations {
		return models.Decision{Admitted: true}, nil
	}

	quote := g.calc.Quote(promptText, existingContent)
	g.log.Info("request blocked pending payment",
		"owner", ownerID, "tier", quote.Tier, "amount", quote.Amount)
	return models.Decision{
		Reason: models.ReasonPaymentRequired,
		Quote:  &quote,
	}, nil
}

// ConfirmPayment applies an external payment outcome. On confirmation
// the owner becomes paid tier and the caller retries its original
// request through Authorize.
func (g *Gate) ConfirmPayment(ctx context.Context, ownerID string, result PaymentResult) (models.UsageRecord, error) {
	if result != PaymentConfirmed {
		return models.UsageRecord{}, ErrPaymentFailed
	}
	return g.ledger.Upgrade(ctx, ownerID)
}

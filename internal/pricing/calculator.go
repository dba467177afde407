package pricing

import (
	"fmt"
	"math"

	"github.com/myaiplug/saasify/pkg/models"
)

const (
	CurrencyUSD = "USD"
)

// Rates are currency units per million estimation units.
const (
	inputRatePerMillion  = 1.25
	outputRatePerMillion = 5.00

	// Generated artifacts are uniformly large, so output size is a
	// fixed assumption rather than a per-request estimate.
	fixedOutputUnits = 20000

	volatilityBuffer = 1.25
	marginMultiplier = 3.5
	fixedOverhead    = 0.45

	// Perceptual floor: no quote is ever below this.
	priceFloor = 2.99
)

// Complexity tier thresholds on input units. The tier never decreases
// as input units grow.
const (
	deepThreshold  = 8000
	eliteThreshold = 25000
)

type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// Quote computes the price for a gated request from the prompt and the
// content being refined (empty for a fresh generation). It is
// deterministic: identical inputs always produce identical quotes.
func (c *Calculator) Quote(promptText, existingContent string) models.PriceQuote {
	inputUnits := EstimateUnits(promptText, existingContent)

	rawCost := float64(inputUnits)/1_000_000*inputRatePerMillion +
		float64(fixedOutputUnits)/1_000_000*outputRatePerMillion
	protectedCost := rawCost*volatilityBuffer*marginMultiplier + fixedOverhead

	amount := math.Max(priceFloor, protectedCost)
	amount = math.Round(amount*100) / 100

	return models.PriceQuote{
		Amount:   amount,
		Currency: CurrencyUSD,
		Tier:     ClassifyTier(inputUnits),
		Breakdown: models.CostBreakdown{
			EstimatedTokens: inputUnits + fixedOutputUnits,
			MarginPercent:   marginLabel(),
			BufferLabel:     bufferLabel(),
		},
	}
}

// EstimateUnits approximates a token count from character count,
// one unit per four characters, rounded up.
func EstimateUnits(promptText, existingContent string) int {
	chars := len(promptText) + len(existingContent)
	return (chars + 3) / 4
}

// ClassifyTier maps input units to a display tier.
func ClassifyTier(inputUnits int) models.ComplexityTier {
	switch {
	case inputUnits >= eliteThreshold:
		return models.TierElite
	case inputUnits >= deepThreshold:
		return models.TierDeep
	default:
		return models.TierStandard
	}
}

func marginLabel() string {
	return fmt.Sprintf("%.0f%%", (marginMultiplier-1)*100)
}

func bufferLabel() string {
	return fmt.Sprintf("+%.0f%% volatility", (volatilityBuffer-1)*100)
}

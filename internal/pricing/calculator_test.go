package pricing

import (
	"strings"
	"testing"

	"github.com/myaiplug/saasify/pkg/models"
)

func TestEstimateUnits(t *testing.T) {
	tests := []struct {
		name     string
		prompt   string
		existing string
		want     int
	}{
		{"empty", "", "", 0},
		{"one char rounds up", "a", "", 1},
		{"exact multiple", "abcd", "", 1},
		{"five chars", "abcde", "", 2},
		{"prompt plus existing", "ab", "cdefg", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateUnits(tt.prompt, tt.existing); got != tt.want {
				t.Errorf("EstimateUnits() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCalculator_Quote_Floor(t *testing.T) {
	calc := NewCalculator()

	q := calc.Quote("", "")
	if q.Amount != 2.99 {
		t.Errorf("Quote(\"\", \"\").Amount = %.2f, want 2.99", q.Amount)
	}
	if q.Currency != CurrencyUSD {
		t.Errorf("Currency = %s, want %s", q.Currency, CurrencyUSD)
	}
	if q.Tier != models.TierStandard {
		t.Errorf("Tier = %s, want %s", q.Tier, models.TierStandard)
	}
}

func TestCalculator_Quote_Deterministic(t *testing.T) {
	calc := NewCalculator()

	prompt := "build a pro audio plugin dashboard"
	existing := strings.Repeat("<div>", 500)

	a := calc.Quote(prompt, existing)
	b := calc.Quote(prompt, existing)
	if a != b {
		t.Errorf("Quote() not deterministic: %+v vs %+v", a, b)
	}
}

func TestCalculator_Quote_AboveFloor(t *testing.T) {
	calc := NewCalculator()

	// 2,000,000 chars -> 500,000 input units:
	// raw  = 0.5*1.25 + 0.02*5.00 = 0.725
	// prot = 0.725*1.25*3.5 + 0.45 = 3.621875 -> 3.62
	q := calc.Quote("", strings.Repeat("a", 2_000_000))
	if q.Amount != 3.62 {
		t.Errorf("Quote().Amount = %.4f, want 3.62", q.Amount)
	}
	if q.Tier != models.TierElite {
		t.Errorf("Tier = %s, want %s", q.Tier, models.TierElite)
	}
}

func TestCalculator_Quote_Monotonic(t *testing.T) {
	calc := NewCalculator()

	prompt := "refine layout"
	sizes := []int{0, 1_000, 100_000, 1_000_000, 3_000_000}
	prev := -1.0
	for _, n := range sizes {
		q := calc.Quote(prompt, strings.Repeat("x", n))
		if q.Amount < prev {
			t.Errorf("Quote amount decreased at size %d: %.2f < %.2f", n, q.Amount, prev)
		}
		prev = q.Amount
	}
}

func TestClassifyTier(t *testing.T) {
	tests := []struct {
		name  string
		units int
		want  models.ComplexityTier
	}{
		{"zero", 0, models.TierStandard},
		{"below deep", 7999, models.TierStandard},
		{"deep boundary", 8000, models.TierDeep},
		{"below elite", 24999, models.TierDeep},
		{"elite boundary", 25000, models.TierElite},
		{"far elite", 1_000_000, models.TierElite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyTier(tt.units); got != tt.want {
				t.Errorf("ClassifyTier(%d) = %s, want %s", tt.units, got, tt.want)
			}
		})
	}
}

func TestClassifyTier_Monotonic(t *testing.T) {
	prev := models.TierStandard
	rank := map[models.ComplexityTier]int{
		models.TierStandard: 0,
		models.TierDeep:     1,
		models.TierElite:    2,
	}
	for units := 0; units <= 30000; units += 500 {
		got := ClassifyTier(units)
		if rank[got] < rank[prev] {
			t.Fatalf("tier decreased at %d units: %s -> %s", units, prev, got)
		}
		prev = got
	}
}

func TestCalculator_Quote_Breakdown(t *testing.T) {
	calc := NewCalculator()

	q := calc.Quote("abcd", "efgh")
	if q.Breakdown.EstimatedTokens != 2+fixedOutputUnits {
		t.Errorf("EstimatedTokens = %d, want %d", q.Breakdown.EstimatedTokens, 2+fixedOutputUnits)
	}
	if q.Breakdown.MarginPercent != "250%" {
		t.Errorf("MarginPercent = %q, want 250%%", q.Breakdown.MarginPercent)
	}
	if q.Breakdown.BufferLabel != "+25% volatility" {
		t.Errorf("BufferLabel = %q, want +25%% volatility", q.Breakdown.BufferLabel)
	}
}

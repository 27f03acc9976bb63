package pareto

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tokenledger/tokenledger/pkg/models"
)

func dec(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d := decimal.RequireFromString(s)
	return &d
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreFullRow(t *testing.T) {
	rows := []models.LedgerRow{{
		LedgerRowID:                  1,
		InferredProvider:             "claude",
		CanonicalModelGuess:          "claude-sonnet-4-5",
		PricingProvider:              "claude",
		PricingModel:                 "claude-sonnet-4-5",
		PricingInputUSDPerMTok:       dec(t, "1"),
		PricingOutputUSDPerMTok:      dec(t, "3"),
		BenchmarkPriorRowsTotal:      5,
		BenchmarkPriorRowsNonMissing: 4,
	}}
	lat := 1000.0
	q := 0.9
	merged := map[models.MetricKey]models.RuntimeMetric{
		{Provider: "claude", Model: "claude-sonnet-4-5"}: {
			Provider: "claude", Model: "claude-sonnet-4-5",
			LatencyMs: &lat, QualityScore: &q, SourcePath: "snap.json",
		},
	}

	out := Score(rows, merged)
	if len(out) != 1 {
		t.Fatalf("expected 1 row, got %d", len(out))
	}
	r := out[0]

	// cost: avg(1, 3) = 2 -> 1/(1+2) = 1/3
	// latency: 1000ms -> 0.5
	// quality: mean(0.9, 4/5) = 0.85
	// score: 100 * (0.5*0.85 + 0.3/3 + 0.2*0.5) = 62.5
	if !almostEqual(r.ParetoScore, 62.5) {
		t.Errorf("unexpected score: %v", r.ParetoScore)
	}
	if !almostEqual(r.QualityComponent, 0.85) {
		t.Errorf("unexpected quality component: %v", r.QualityComponent)
	}
	if !almostEqual(r.CostComponent, round6(1.0/3.0)) {
		t.Errorf("unexpected cost component: %v", r.CostComponent)
	}
	if !almostEqual(r.LatencyComponent, 0.5) {
		t.Errorf("unexpected latency component: %v", r.LatencyComponent)
	}
	if r.BlendedCostUSDPerMTok == nil || !almostEqual(*r.BlendedCostUSDPerMTok, 2.0) {
		t.Errorf("unexpected blended cost: %v", r.BlendedCostUSDPerMTok)
	}
	if r.BenchmarkQualityScore == nil || !almostEqual(*r.BenchmarkQualityScore, 0.8) {
		t.Errorf("unexpected benchmark quality: %v", r.BenchmarkQualityScore)
	}
	if r.RuntimeSourcePath != "snap.json" {
		t.Errorf("unexpected source path: %q", r.RuntimeSourcePath)
	}
}

func TestScoreEmptyRow(t *testing.T) {
	// No pricing, no priors, no runtime data: every component is zero.
	rows := []models.LedgerRow{{
		LedgerRowID:         1,
		InferredProvider:    "unknown",
		CanonicalModelGuess: "mystery-9000",
	}}

	out := Score(rows, nil)
	r := out[0]
	if r.ParetoScore != 0 {
		t.Errorf("expected zero score, got %v", r.ParetoScore)
	}
	if r.Provider != "unknown" || r.Model != "mystery-9000" {
		t.Errorf("unexpected identity fallback: %+v", r)
	}
	if r.BlendedCostUSDPerMTok != nil || r.BenchmarkQualityScore != nil {
		t.Errorf("expected nil optional fields: %+v", r)
	}
}

func TestScorePerfectRow(t *testing.T) {
	rows := []models.LedgerRow{{
		LedgerRowID:                  1,
		PricingProvider:              "p",
		PricingModel:                 "m",
		InferredProvider:             "p",
		CanonicalModelGuess:          "m",
		PricingInputUSDPerMTok:       dec(t, "0"),
		PricingOutputUSDPerMTok:      dec(t, "0"),
		BenchmarkPriorRowsTotal:      3,
		BenchmarkPriorRowsNonMissing: 3,
	}}
	lat := 0.0
	q := 1.0
	merged := map[models.MetricKey]models.RuntimeMetric{
		{Provider: "p", Model: "m"}: {Provider: "p", Model: "m", LatencyMs: &lat, QualityScore: &q},
	}

	out := Score(rows, merged)
	if !almostEqual(out[0].ParetoScore, 100.0) {
		t.Errorf("expected perfect score 100, got %v", out[0].ParetoScore)
	}
}

func TestScoreSingleSidedCost(t *testing.T) {
	rows := []models.LedgerRow{{
		LedgerRowID:            1,
		PricingProvider:        "p",
		PricingModel:           "m",
		PricingInputUSDPerMTok: dec(t, "4"),
	}}
	out := Score(rows, nil)
	// One present price: average is the price itself.
	if out[0].BlendedCostUSDPerMTok == nil || !almostEqual(*out[0].BlendedCostUSDPerMTok, 4.0) {
		t.Errorf("unexpected blended cost: %v", out[0].BlendedCostUSDPerMTok)
	}
	if !almostEqual(out[0].CostComponent, 0.2) {
		t.Errorf("unexpected cost component: %v", out[0].CostComponent)
	}
}

func TestScoreNegativeLatencyIgnored(t *testing.T) {
	rows := []models.LedgerRow{{
		LedgerRowID:         1,
		PricingProvider:     "p",
		PricingModel:        "m",
		InferredProvider:    "p",
		CanonicalModelGuess: "m",
	}}
	lat := -5.0
	merged := map[models.MetricKey]models.RuntimeMetric{
		{Provider: "p", Model: "m"}: {Provider: "p", Model: "m", LatencyMs: &lat},
	}
	out := Score(rows, merged)
	if out[0].LatencyComponent != 0 {
		t.Errorf("expected zero latency component, got %v", out[0].LatencyComponent)
	}
}

func TestScoreOrdering(t *testing.T) {
	rows := []models.LedgerRow{
		{LedgerRowID: 1, InferredProvider: "zeta", CanonicalModelGuess: "m"},
		{LedgerRowID: 2, InferredProvider: "alpha", CanonicalModelGuess: "m"},
		{
			LedgerRowID:                  3,
			InferredProvider:             "beta",
			CanonicalModelGuess:          "m",
			BenchmarkPriorRowsTotal:      2,
			BenchmarkPriorRowsNonMissing: 2,
		},
	}

	out := Score(rows, nil)
	// The scored row first, then the zero-score ties by provider.
	if out[0].Provider != "beta" {
		t.Fatalf("expected beta first, got %q", out[0].Provider)
	}
	if out[1].Provider != "alpha" || out[2].Provider != "zeta" {
		t.Errorf("expected ties ordered by provider: %q, %q", out[1].Provider, out[2].Provider)
	}
}

func TestScoreNormalizesIdentity(t *testing.T) {
	rows := []models.LedgerRow{{
		LedgerRowID:     1,
		PricingProvider: "Claude",
		PricingModel:    "Claude-Sonnet-4-5",
	}}
	out := Score(rows, nil)
	if out[0].Provider != "claude" || out[0].Model != "claude-sonnet-4-5" {
		t.Errorf("expected normalized identity, got %+v", out[0])
	}
}

func TestRound6(t *testing.T) {
	if got := round6(1.0 / 3.0); got != 0.333333 {
		t.Errorf("round6(1/3) = %v", got)
	}
	if got := round6(62.5); got != 62.5 {
		t.Errorf("round6(62.5) = %v", got)
	}
}

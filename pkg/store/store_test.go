package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tokenledger/tokenledger/pkg/ledger"
	"github.com/tokenledger/tokenledger/pkg/models"
	"github.com/tokenledger/tokenledger/pkg/pareto"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func dec(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d := decimal.RequireFromString(s)
	return &d
}

func testRows(t *testing.T) []models.LedgerRow {
	t.Helper()
	return []models.LedgerRow{
		{
			LedgerRowID:                  1,
			SourceModel:                  "Claude-Sonnet-4-5",
			SourceModelSlug:              "claude-sonnet-4-5",
			InferredProvider:             "claude",
			ProviderMappingRule:          "prefix:claude",
			ProviderMappingConfidence:    99,
			CanonicalModelGuess:          "claude-sonnet-4-5",
			ModelMappingRule:             "pricing:model_exact",
			ModelMappingConfidence:       100,
			PricingProvider:              "claude",
			PricingModel:                 "claude-sonnet-4-5",
			PricingInputUSDPerMTok:       dec(t, "3"),
			PricingOutputUSDPerMTok:      dec(t, "15"),
			BenchmarkRowsTotal:           4,
			BenchmarkRowsNonMissing:      4,
			BenchmarkPriorRowsTotal:      4,
			BenchmarkPriorRowsNonMissing: 4,
			BenchmarkDistinctTotal:       4,
			BenchmarkDistinctNonMissing:  4,
		},
		{
			LedgerRowID:               2,
			SourceModel:               "Mystery-9000",
			SourceModelSlug:           "mystery-9000",
			InferredProvider:          "unknown",
			ProviderMappingRule:       "heuristic:unknown",
			ProviderMappingConfidence: 0,
			CanonicalModelGuess:       "mystery-9000",
			ModelMappingRule:          "unmapped",
			ModelMappingConfidence:    0,
		},
	}
}

func testMetrics() map[models.MetricKey]models.RuntimeMetric {
	lat := 1000.0
	q := 0.9
	return map[models.MetricKey]models.RuntimeMetric{
		{Provider: "claude", Model: "claude-sonnet-4-5"}: {
			Provider: "claude", Model: "claude-sonnet-4-5",
			LatencyMs: &lat, QualityScore: &q, SourcePath: "snap.json",
		},
	}
}

func TestImportAndCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rows := testRows(t)
	if err := s.ImportLedger(ctx, rows, ledger.PriorsAggregation(rows)); err != nil {
		t.Fatal(err)
	}

	n, err := s.LedgerCount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 ledger rows, got %d", n)
	}
}

func TestImportIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rows := testRows(t)
	for i := 0; i < 2; i++ {
		if err := s.ImportLedger(ctx, rows, ledger.PriorsAggregation(rows)); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.LedgerCount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected tables recreated on reimport, got %d rows", n)
	}
}

func TestTopMatchesScorer(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rows := testRows(t)
	merged := testMetrics()
	if err := s.ImportLedger(ctx, rows, ledger.PriorsAggregation(rows)); err != nil {
		t.Fatal(err)
	}
	if err := s.ImportMetrics(ctx, merged); err != nil {
		t.Fatal(err)
	}

	ranked, err := s.Top(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked rows, got %d", len(ranked))
	}
	if ranked[0].Provider != "claude" || ranked[0].Model != "claude-sonnet-4-5" {
		t.Errorf("unexpected top row: %+v", ranked[0])
	}

	// The SQL view must agree with the in-process scorer.
	scored := pareto.Score(rows, merged)
	if math.Abs(ranked[0].ParetoScore-scored[0].ParetoScore) > 1e-6 {
		t.Errorf("view score %v disagrees with scorer %v", ranked[0].ParetoScore, scored[0].ParetoScore)
	}
	if ranked[1].ParetoScore != 0 {
		t.Errorf("expected zero score for the unmapped row, got %v", ranked[1].ParetoScore)
	}
}

func TestTopLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rows := testRows(t)
	if err := s.ImportLedger(ctx, rows, ledger.PriorsAggregation(rows)); err != nil {
		t.Fatal(err)
	}
	if err := s.ImportMetrics(ctx, nil); err != nil {
		t.Fatal(err)
	}

	ranked, err := s.Top(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(ranked) != 1 {
		t.Errorf("expected 1 row with limit 1, got %d", len(ranked))
	}
}

// Package store loads generated ledger artifacts into a SQLite database
// and serves ranked queries through the SQL pareto view. The database is
// regenerated from scratch on every import; nothing is updated in place.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/tokenledger/tokenledger/pkg/ledger"
	"github.com/tokenledger/tokenledger/pkg/models"
	"github.com/tokenledger/tokenledger/pkg/pareto"
)

// Store wraps the ledger SQLite database.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the ledger database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// decimalArg binds an optional decimal as exact text; sqlite's NUMERIC
// affinity coerces it without a float round trip.
func decimalArg(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func floatArg(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func textOrNull(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// ImportLedger recreates the ledger and priors tables and inserts the
// given rows inside one transaction.
func (s *Store) ImportLedger(ctx context.Context, rows []models.LedgerRow, priors []models.PriorsGroup) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, ledger.SchemaSQL()); err != nil {
		return fmt.Errorf("apply ledger schema: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO unified_model_provider_ledger VALUES
		 (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare ledger insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.ExecContext(ctx,
			r.LedgerRowID, r.SourceModel, r.SourceModelSlug,
			r.InferredProvider, r.ProviderMappingRule, r.ProviderMappingConfidence,
			r.CanonicalModelGuess, r.ModelMappingRule, r.ModelMappingConfidence,
			textOrNull(r.PricingProvider), textOrNull(r.PricingModel),
			decimalArg(r.PricingSubscriptionUSDMonth),
			decimalArg(r.PricingInputUSDPerMTok),
			decimalArg(r.PricingOutputUSDPerMTok),
			decimalArg(r.PricingCacheWriteUSDPerMTok),
			decimalArg(r.PricingCacheReadUSDPerMTok),
			decimalArg(r.PricingToolInputUSDPerMTok),
			decimalArg(r.PricingToolOutputUSDPerMTok),
			decimalArg(r.BenchmarkInputUSDPerMTok),
			decimalArg(r.BenchmarkOutputUSDPerMTok),
			r.BenchmarkRowsTotal, r.BenchmarkRowsNonMissing, r.BenchmarkRowsMissing,
			r.BenchmarkPriorRowsTotal, r.BenchmarkPriorRowsNonMissing, r.BenchmarkPriorRowsMissing,
			r.BenchmarkDistinctTotal, r.BenchmarkDistinctNonMissing,
			decimalArg(r.PricingVsBenchmarkInputDelta),
			decimalArg(r.PricingVsBenchmarkOutputDelta),
		)
		if err != nil {
			return fmt.Errorf("insert ledger row %d: %w", r.LedgerRowID, err)
		}
	}

	for i, g := range priors {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO benchmark_priors_aggregation VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			i+1, g.InferredProvider, g.PricingProvider,
			g.ModelsCount, g.MappedModelsCount,
			g.PriorRowsTotal, g.PriorRowsNonMissing, g.PriorRowsMissing,
		)
		if err != nil {
			return fmt.Errorf("insert priors row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger import: %w", err)
	}
	return nil
}

// ImportMetrics recreates the runtime metrics table and the pareto view,
// then inserts the merged metrics.
func (s *Store) ImportMetrics(ctx context.Context, merged map[models.MetricKey]models.RuntimeMetric) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin metrics import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, pareto.ViewSQL()); err != nil {
		return fmt.Errorf("apply pareto view: %w", err)
	}

	for _, m := range merged {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cliproxyapi_runtime_metrics_snapshot
			 (provider, model, latency_ms, quality_score, source_path)
			 VALUES (?, ?, ?, ?, ?)`,
			m.Provider, m.Model, floatArg(m.LatencyMs), floatArg(m.QualityScore), m.SourcePath,
		)
		if err != nil {
			return fmt.Errorf("insert runtime metric %s/%s: %w", m.Provider, m.Model, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit metrics import: %w", err)
	}
	return nil
}

// RankedModel is one row of the SQL pareto view.
type RankedModel struct {
	LedgerRowID int64
	Provider    string
	Model       string
	ParetoScore float64
}

// Top returns the highest-scoring rows of the pareto view.
func (s *Store) Top(ctx context.Context, limit int) ([]RankedModel, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT ledger_row_id, provider, model, pareto_score
		 FROM unified_model_provider_pareto_view
		 ORDER BY pareto_score DESC, provider ASC, model ASC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pareto view: %w", err)
	}
	defer rows.Close()

	var out []RankedModel
	for rows.Next() {
		var r RankedModel
		if err := rows.Scan(&r.LedgerRowID, &r.Provider, &r.Model, &r.ParetoScore); err != nil {
			return nil, fmt.Errorf("scan pareto row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LedgerCount returns the number of imported ledger rows.
func (s *Store) LedgerCount(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM unified_model_provider_ledger`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count ledger rows: %w", err)
	}
	return n, nil
}

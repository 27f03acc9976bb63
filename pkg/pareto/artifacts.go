package pareto

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tokenledger/tokenledger/pkg/models"
)

// CSVHeader is the column order of the pareto CSV artifact.
var CSVHeader = []string{
	"ledger_row_id",
	"provider",
	"model",
	"pareto_score",
	"quality_component",
	"cost_component",
	"latency_component",
	"blended_cost_usd_per_mtok",
	"runtime_latency_ms",
	"runtime_quality_score",
	"benchmark_quality_score",
	"runtime_source_path",
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

// WriteCSV writes the scored pareto view.
func WriteCSV(path string, rows []models.ParetoRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create pareto csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(CSVHeader); err != nil {
		return fmt.Errorf("write pareto csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.LedgerRowID),
			r.Provider,
			r.Model,
			formatFloat(r.ParetoScore),
			formatFloat(r.QualityComponent),
			formatFloat(r.CostComponent),
			formatFloat(r.LatencyComponent),
			formatOptFloat(r.BlendedCostUSDPerMTok),
			formatOptFloat(r.RuntimeLatencyMs),
			formatOptFloat(r.RuntimeQualityScore),
			formatOptFloat(r.BenchmarkQualityScore),
			r.RuntimeSourcePath,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write pareto csv row %d: %w", r.LedgerRowID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush pareto csv: %w", err)
	}
	return f.Close()
}

const viewSQL = `-- Runtime metrics + Pareto scoring view generated by tokenledger.
-- Seed runtime metrics from the runtime metrics snapshot CSV as needed.

DROP TABLE IF EXISTS cliproxyapi_runtime_metrics_snapshot;
CREATE TABLE cliproxyapi_runtime_metrics_snapshot (
  provider TEXT NOT NULL,
  model TEXT NOT NULL,
  latency_ms NUMERIC,
  quality_score NUMERIC,
  source_path TEXT,
  PRIMARY KEY (provider, model)
);

DROP VIEW IF EXISTS unified_model_provider_pareto_view;
CREATE VIEW unified_model_provider_pareto_view AS
SELECT
  l.ledger_row_id,
  COALESCE(NULLIF(l.pricing_provider, ''), l.inferred_provider) AS provider,
  COALESCE(NULLIF(l.pricing_model, ''), l.canonical_model_guess) AS model,
  l.pricing_input_usd_per_mtok,
  l.pricing_output_usd_per_mtok,
  m.latency_ms AS runtime_latency_ms,
  m.quality_score AS runtime_quality_score,
  CASE
    WHEN l.benchmark_prior_rows_total > 0
      THEN CAST(l.benchmark_prior_rows_non_missing AS NUMERIC) / CAST(l.benchmark_prior_rows_total AS NUMERIC)
    ELSE NULL
  END AS benchmark_quality_score,
  (
    100.0 * (
      0.50 * COALESCE(
        (
          COALESCE(m.quality_score, 0.0) +
          COALESCE(
            CASE
              WHEN l.benchmark_prior_rows_total > 0
                THEN CAST(l.benchmark_prior_rows_non_missing AS NUMERIC) / CAST(l.benchmark_prior_rows_total AS NUMERIC)
              ELSE NULL
            END,
            0.0
          )
        ) /
        CASE
          WHEN m.quality_score IS NOT NULL
               AND l.benchmark_prior_rows_total > 0 THEN 2.0
          WHEN m.quality_score IS NOT NULL
               OR l.benchmark_prior_rows_total > 0 THEN 1.0
          ELSE 1.0
        END,
        0.0
      )
      + 0.30 * (
        CASE
          WHEN COALESCE(l.pricing_input_usd_per_mtok, l.pricing_output_usd_per_mtok) IS NULL THEN 0.0
          ELSE 1.0 / (
            1.0 + (
              COALESCE(l.pricing_input_usd_per_mtok, 0.0) +
              COALESCE(l.pricing_output_usd_per_mtok, 0.0)
            ) /
            CASE
              WHEN l.pricing_input_usd_per_mtok IS NOT NULL
                   AND l.pricing_output_usd_per_mtok IS NOT NULL THEN 2.0
              ELSE 1.0
            END
          )
        END
      )
      + 0.20 * (
        CASE
          WHEN m.latency_ms IS NULL THEN 0.0
          ELSE 1.0 / (1.0 + (m.latency_ms / 1000.0))
        END
      )
    )
  ) AS pareto_score
FROM unified_model_provider_ledger l
LEFT JOIN cliproxyapi_runtime_metrics_snapshot m
  ON m.provider = COALESCE(NULLIF(l.pricing_provider, ''), l.inferred_provider)
 AND m.model = COALESCE(NULLIF(l.pricing_model, ''), l.canonical_model_guess);
`

// ViewSQL returns the runtime metrics table and pareto view definition,
// evaluating the same scoring formula in SQL.
func ViewSQL() string {
	return viewSQL
}

// WriteViewSQL writes the pareto SQL view artifact.
func WriteViewSQL(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(viewSQL), 0o644); err != nil {
		return fmt.Errorf("write pareto view sql: %w", err)
	}
	return nil
}

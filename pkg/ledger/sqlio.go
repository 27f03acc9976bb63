package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tokenledger/tokenledger/pkg/models"
)

const schemaSQL = `-- Deterministic unified ledger schema generated by tokenledger.
DROP TABLE IF EXISTS unified_model_provider_ledger;

CREATE TABLE unified_model_provider_ledger (
  ledger_row_id INTEGER PRIMARY KEY,
  source_model TEXT NOT NULL,
  source_model_slug TEXT NOT NULL,
  inferred_provider TEXT NOT NULL,
  provider_mapping_rule TEXT NOT NULL,
  provider_mapping_confidence INTEGER NOT NULL,
  canonical_model_guess TEXT NOT NULL,
  model_mapping_rule TEXT NOT NULL,
  model_mapping_confidence INTEGER NOT NULL,
  pricing_provider TEXT,
  pricing_model TEXT,
  pricing_subscription_usd_month NUMERIC,
  pricing_input_usd_per_mtok NUMERIC,
  pricing_output_usd_per_mtok NUMERIC,
  pricing_cache_write_usd_per_mtok NUMERIC,
  pricing_cache_read_usd_per_mtok NUMERIC,
  pricing_tool_input_usd_per_mtok NUMERIC,
  pricing_tool_output_usd_per_mtok NUMERIC,
  benchmark_input_usd_per_mtok NUMERIC,
  benchmark_output_usd_per_mtok NUMERIC,
  benchmark_rows_total INTEGER NOT NULL,
  benchmark_rows_non_missing INTEGER NOT NULL,
  benchmark_rows_missing INTEGER NOT NULL,
  benchmark_prior_rows_total INTEGER NOT NULL,
  benchmark_prior_rows_non_missing INTEGER NOT NULL,
  benchmark_prior_rows_missing INTEGER NOT NULL,
  benchmark_distinct_total INTEGER NOT NULL,
  benchmark_distinct_non_missing INTEGER NOT NULL,
  pricing_vs_benchmark_input_delta NUMERIC,
  pricing_vs_benchmark_output_delta NUMERIC
);

DROP TABLE IF EXISTS benchmark_priors_aggregation;

CREATE TABLE benchmark_priors_aggregation (
  aggregation_row_id INTEGER PRIMARY KEY,
  inferred_provider TEXT NOT NULL,
  pricing_provider TEXT NOT NULL,
  models_count INTEGER NOT NULL,
  mapped_models_count INTEGER NOT NULL,
  prior_rows_total INTEGER NOT NULL,
  prior_rows_non_missing INTEGER NOT NULL,
  prior_rows_missing INTEGER NOT NULL
);
`

// SchemaSQL returns the DROP/CREATE text for the ledger and priors tables.
func SchemaSQL() string {
	return schemaSQL
}

// WriteSchemaSQL writes the ledger schema artifact.
func WriteSchemaSQL(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(schemaSQL), 0o644); err != nil {
		return fmt.Errorf("write schema sql: %w", err)
	}
	return nil
}

func sqlQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func sqlNumber(d *decimal.Decimal) string {
	if d == nil {
		return "NULL"
	}
	return DecimalString(d)
}

func sqlTextOrNull(value string) string {
	if value == "" {
		return "NULL"
	}
	return sqlQuote(value)
}

// SeedSQL renders the INSERT batches for the ledger rows and their priors
// aggregation.
func SeedSQL(rows []models.LedgerRow) string {
	lines := []string{
		"-- Deterministic unified ledger seed generated by tokenledger.",
		"INSERT INTO unified_model_provider_ledger (",
		"  " + strings.Join(CSVHeader, ",\n  "),
		") VALUES",
	}

	tuples := make([]string, 0, len(rows))
	for _, r := range rows {
		fields := []string{
			fmt.Sprintf("%d", r.LedgerRowID),
			sqlQuote(r.SourceModel),
			sqlQuote(r.SourceModelSlug),
			sqlQuote(r.InferredProvider),
			sqlQuote(r.ProviderMappingRule),
			fmt.Sprintf("%d", r.ProviderMappingConfidence),
			sqlQuote(r.CanonicalModelGuess),
			sqlQuote(r.ModelMappingRule),
			fmt.Sprintf("%d", r.ModelMappingConfidence),
			sqlTextOrNull(r.PricingProvider),
			sqlTextOrNull(r.PricingModel),
			sqlNumber(r.PricingSubscriptionUSDMonth),
			sqlNumber(r.PricingInputUSDPerMTok),
			sqlNumber(r.PricingOutputUSDPerMTok),
			sqlNumber(r.PricingCacheWriteUSDPerMTok),
			sqlNumber(r.PricingCacheReadUSDPerMTok),
			sqlNumber(r.PricingToolInputUSDPerMTok),
			sqlNumber(r.PricingToolOutputUSDPerMTok),
			sqlNumber(r.BenchmarkInputUSDPerMTok),
			sqlNumber(r.BenchmarkOutputUSDPerMTok),
			fmt.Sprintf("%d", r.BenchmarkRowsTotal),
			fmt.Sprintf("%d", r.BenchmarkRowsNonMissing),
			fmt.Sprintf("%d", r.BenchmarkRowsMissing),
			fmt.Sprintf("%d", r.BenchmarkPriorRowsTotal),
			fmt.Sprintf("%d", r.BenchmarkPriorRowsNonMissing),
			fmt.Sprintf("%d", r.BenchmarkPriorRowsMissing),
			fmt.Sprintf("%d", r.BenchmarkDistinctTotal),
			fmt.Sprintf("%d", r.BenchmarkDistinctNonMissing),
			sqlNumber(r.PricingVsBenchmarkInputDelta),
			sqlNumber(r.PricingVsBenchmarkOutputDelta),
		}
		tuples = append(tuples, "("+strings.Join(fields, ", ")+")")
	}
	lines = append(lines, strings.Join(tuples, ",\n")+";")

	lines = append(lines,
		"",
		"INSERT INTO benchmark_priors_aggregation (",
		"  aggregation_row_id,",
		"  inferred_provider,",
		"  pricing_provider,",
		"  models_count,",
		"  mapped_models_count,",
		"  prior_rows_total,",
		"  prior_rows_non_missing,",
		"  prior_rows_missing",
		") VALUES",
	)

	priors := PriorsAggregation(rows)
	priorTuples := make([]string, 0, len(priors))
	for i, g := range priors {
		priorTuples = append(priorTuples, fmt.Sprintf("(%d, %s, %s, %d, %d, %d, %d, %d)",
			i+1,
			sqlQuote(g.InferredProvider),
			sqlQuote(g.PricingProvider),
			g.ModelsCount,
			g.MappedModelsCount,
			g.PriorRowsTotal,
			g.PriorRowsNonMissing,
			g.PriorRowsMissing,
		))
	}
	lines = append(lines, strings.Join(priorTuples, ",\n")+";")

	return strings.Join(lines, "\n") + "\n"
}

// WriteSeedSQL writes the ledger seed artifact.
func WriteSeedSQL(path string, rows []models.LedgerRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(SeedSQL(rows)), 0o644); err != nil {
		return fmt.Errorf("write seed sql: %w", err)
	}
	return nil
}

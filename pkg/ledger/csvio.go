package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tokenledger/tokenledger/pkg/models"
)

// CSVHeader is the column order of the ledger CSV artifact.
var CSVHeader = []string{
	"ledger_row_id",
	"source_model",
	"source_model_slug",
	"inferred_provider",
	"provider_mapping_rule",
	"provider_mapping_confidence",
	"canonical_model_guess",
	"model_mapping_rule",
	"model_mapping_confidence",
	"pricing_provider",
	"pricing_model",
	"pricing_subscription_usd_month",
	"pricing_input_usd_per_mtok",
	"pricing_output_usd_per_mtok",
	"pricing_cache_write_usd_per_mtok",
	"pricing_cache_read_usd_per_mtok",
	"pricing_tool_input_usd_per_mtok",
	"pricing_tool_output_usd_per_mtok",
	"benchmark_input_usd_per_mtok",
	"benchmark_output_usd_per_mtok",
	"benchmark_rows_total",
	"benchmark_rows_non_missing",
	"benchmark_rows_missing",
	"benchmark_prior_rows_total",
	"benchmark_prior_rows_non_missing",
	"benchmark_prior_rows_missing",
	"benchmark_distinct_total",
	"benchmark_distinct_non_missing",
	"pricing_vs_benchmark_input_delta",
	"pricing_vs_benchmark_output_delta",
}

// DecimalString renders an optional decimal for artifacts: empty for nil,
// otherwise exact decimal text with trailing fractional zeros trimmed
// ("3.00" renders as "3", "0.00" as "0").
func DecimalString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	text := d.String()
	if strings.Contains(text, ".") {
		text = strings.TrimRight(text, "0")
		text = strings.TrimRight(text, ".")
	}
	if text == "" || text == "-" {
		return "0"
	}
	return text
}

func record(r models.LedgerRow) []string {
	return []string{
		strconv.Itoa(r.LedgerRowID),
		r.SourceModel,
		r.SourceModelSlug,
		r.InferredProvider,
		r.ProviderMappingRule,
		strconv.Itoa(r.ProviderMappingConfidence),
		r.CanonicalModelGuess,
		r.ModelMappingRule,
		strconv.Itoa(r.ModelMappingConfidence),
		r.PricingProvider,
		r.PricingModel,
		DecimalString(r.PricingSubscriptionUSDMonth),
		DecimalString(r.PricingInputUSDPerMTok),
		DecimalString(r.PricingOutputUSDPerMTok),
		DecimalString(r.PricingCacheWriteUSDPerMTok),
		DecimalString(r.PricingCacheReadUSDPerMTok),
		DecimalString(r.PricingToolInputUSDPerMTok),
		DecimalString(r.PricingToolOutputUSDPerMTok),
		DecimalString(r.BenchmarkInputUSDPerMTok),
		DecimalString(r.BenchmarkOutputUSDPerMTok),
		strconv.Itoa(r.BenchmarkRowsTotal),
		strconv.Itoa(r.BenchmarkRowsNonMissing),
		strconv.Itoa(r.BenchmarkRowsMissing),
		strconv.Itoa(r.BenchmarkPriorRowsTotal),
		strconv.Itoa(r.BenchmarkPriorRowsNonMissing),
		strconv.Itoa(r.BenchmarkPriorRowsMissing),
		strconv.Itoa(r.BenchmarkDistinctTotal),
		strconv.Itoa(r.BenchmarkDistinctNonMissing),
		DecimalString(r.PricingVsBenchmarkInputDelta),
		DecimalString(r.PricingVsBenchmarkOutputDelta),
	}
}

// WriteCSV writes the ledger CSV artifact.
func WriteCSV(path string, rows []models.LedgerRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create ledger csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(CSVHeader); err != nil {
		return fmt.Errorf("write ledger csv header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write(record(r)); err != nil {
			return fmt.Errorf("write ledger csv row %d: %w", r.LedgerRowID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush ledger csv: %w", err)
	}
	return f.Close()
}

// ReadCSV loads ledger rows back from the CSV artifact. The refresh driver
// reads the regenerated ledger output rather than trusting in-memory state,
// so a broken artifact fails fast here.
func ReadCSV(path string) ([]models.LedgerRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ledger csv: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ledger csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("ledger csv %s is empty", path)
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[name] = i
	}
	for _, name := range CSVHeader {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("ledger csv %s missing column %q", path, name)
		}
	}

	rows := make([]models.LedgerRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		get := func(name string) string { return rec[col[name]] }
		getInt := func(name string) (int, error) {
			n, err := strconv.Atoi(get(name))
			if err != nil {
				return 0, fmt.Errorf("ledger csv row %d: column %q: %w", i+2, name, err)
			}
			return n, nil
		}
		getDec := func(name string) (*decimal.Decimal, error) {
			text := get(name)
			if text == "" {
				return nil, nil
			}
			d, err := decimal.NewFromString(text)
			if err != nil {
				return nil, fmt.Errorf("ledger csv row %d: column %q: %w", i+2, name, err)
			}
			return &d, nil
		}

		var r models.LedgerRow
		var firstErr error
		mustInt := func(name string) int {
			n, err := getInt(name)
			if err != nil && firstErr == nil {
				firstErr = err
			}
			return n
		}
		mustDec := func(name string) *decimal.Decimal {
			d, err := getDec(name)
			if err != nil && firstErr == nil {
				firstErr = err
			}
			return d
		}

		r.LedgerRowID = mustInt("ledger_row_id")
		r.SourceModel = get("source_model")
		r.SourceModelSlug = get("source_model_slug")
		r.InferredProvider = get("inferred_provider")
		r.ProviderMappingRule = get("provider_mapping_rule")
		r.ProviderMappingConfidence = mustInt("provider_mapping_confidence")
		r.CanonicalModelGuess = get("canonical_model_guess")
		r.ModelMappingRule = get("model_mapping_rule")
		r.ModelMappingConfidence = mustInt("model_mapping_confidence")
		r.PricingProvider = get("pricing_provider")
		r.PricingModel = get("pricing_model")
		r.PricingSubscriptionUSDMonth = mustDec("pricing_subscription_usd_month")
		r.PricingInputUSDPerMTok = mustDec("pricing_input_usd_per_mtok")
		r.PricingOutputUSDPerMTok = mustDec("pricing_output_usd_per_mtok")
		r.PricingCacheWriteUSDPerMTok = mustDec("pricing_cache_write_usd_per_mtok")
		r.PricingCacheReadUSDPerMTok = mustDec("pricing_cache_read_usd_per_mtok")
		r.PricingToolInputUSDPerMTok = mustDec("pricing_tool_input_usd_per_mtok")
		r.PricingToolOutputUSDPerMTok = mustDec("pricing_tool_output_usd_per_mtok")
		r.BenchmarkInputUSDPerMTok = mustDec("benchmark_input_usd_per_mtok")
		r.BenchmarkOutputUSDPerMTok = mustDec("benchmark_output_usd_per_mtok")
		r.BenchmarkRowsTotal = mustInt("benchmark_rows_total")
		r.BenchmarkRowsNonMissing = mustInt("benchmark_rows_non_missing")
		r.BenchmarkRowsMissing = mustInt("benchmark_rows_missing")
		r.BenchmarkPriorRowsTotal = mustInt("benchmark_prior_rows_total")
		r.BenchmarkPriorRowsNonMissing = mustInt("benchmark_prior_rows_non_missing")
		r.BenchmarkPriorRowsMissing = mustInt("benchmark_prior_rows_missing")
		r.BenchmarkDistinctTotal = mustInt("benchmark_distinct_total")
		r.BenchmarkDistinctNonMissing = mustInt("benchmark_distinct_non_missing")
		r.PricingVsBenchmarkInputDelta = mustDec("pricing_vs_benchmark_input_delta")
		r.PricingVsBenchmarkOutputDelta = mustDec("pricing_vs_benchmark_output_delta")

		if firstErr != nil {
			return nil, firstErr
		}
		rows = append(rows, r)
	}
	return rows, nil
}

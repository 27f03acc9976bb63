// Package bench reads normalized benchmark rows and aggregates them into
// per-model statistics, including the benchmark-derived price signals.
package bench

import (
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tokenledger/tokenledger/pkg/models"
	"github.com/tokenledger/tokenledger/pkg/slug"
)

// The two designated price benchmarks. Every other benchmark row counts as
// a "prior" observation.
const (
	InputPriceBenchmark  = "Input Price"
	OutputPriceBenchmark = "Output Price"
)

// IsPriceBenchmark reports whether a benchmark name designates a price row.
func IsPriceBenchmark(name string) bool {
	return name == InputPriceBenchmark || name == OutputPriceBenchmark
}

// priceMissing matches normalized price-cell text that carries no value.
var priceMissing = map[string]bool{"": true, "na": true, "null": true}

var parenRE = regexp.MustCompile(`\s*\([^)]*\)`)

// ParsePrice extracts an exact decimal from a benchmark price cell:
// currency symbols, thousands separators and parenthetical annotations are
// stripped. Unparsable or missing cells return nil, never an error.
func ParsePrice(text string) *decimal.Decimal {
	raw := strings.TrimSpace(text)
	if priceMissing[slug.Normalize(raw)] {
		return nil
	}
	raw = strings.ReplaceAll(raw, "$", "")
	raw = strings.ReplaceAll(raw, ",", "")
	raw = strings.TrimSpace(raw)
	raw = parenRE.ReplaceAllString(raw, "")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &d
}

// ReadNormalizedCSV loads normalized benchmark rows from the seed CSV
// artifact, preserving input order.
func ReadNormalizedCSV(path string) ([]models.NormalizedRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open normalized csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read normalized csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("normalized csv %s is empty", path)
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[name] = i
	}
	for _, required := range []string{"benchmark", "model", "value_primary", "is_missing"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("normalized csv %s missing column %q", path, required)
		}
	}

	cell := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}
	intCell := func(record []string, name string) int {
		n, _ := strconv.Atoi(cell(record, name))
		return n
	}

	rows := make([]models.NormalizedRow, 0, len(records)-1)
	for _, record := range records[1:] {
		isMissing, err := strconv.Atoi(cell(record, "is_missing"))
		if err != nil {
			return nil, fmt.Errorf("normalized csv %s: bad is_missing value %q: %w", path, cell(record, "is_missing"), err)
		}
		rows = append(rows, models.NormalizedRow{
			RowID:              intCell(record, "row_id"),
			Benchmark:          cell(record, "benchmark"),
			NotesConfiguration: cell(record, "notes_configuration"),
			Model:              cell(record, "model"),
			RawValue:           cell(record, "raw_value"),
			ValuePrimary:       cell(record, "value_primary"),
			ValueSecondary:     cell(record, "value_secondary"),
			SplitKind:          cell(record, "split_kind"),
			IsMissing:          isMissing,
			SourceRowIndex:     intCell(record, "source_row_index"),
			SourceColIndex:     intCell(record, "source_col_index"),
			SourceColName:      cell(record, "source_col_name"),
		})
	}
	return rows, nil
}

type accumulator struct {
	stats               models.ModelStats
	benchmarksAll       map[string]struct{}
	benchmarksNonMissed map[string]struct{}
}

// Aggregate folds benchmark rows into one ModelStats per distinct source
// model. Every field is independent of input order except the two price
// signals, where the last non-missing parsable price-benchmark row wins.
func Aggregate(rows []models.NormalizedRow) map[string]models.ModelStats {
	grouped := make(map[string]*accumulator)

	for _, row := range rows {
		model := strings.TrimSpace(row.Model)
		benchmark := strings.TrimSpace(row.Benchmark)

		acc, ok := grouped[model]
		if !ok {
			acc = &accumulator{
				stats: models.ModelStats{
					SourceModel:     model,
					SourceModelSlug: slug.Normalize(model),
				},
				benchmarksAll:       make(map[string]struct{}),
				benchmarksNonMissed: make(map[string]struct{}),
			}
			grouped[model] = acc
		}

		acc.stats.BenchmarkRowsTotal++
		acc.benchmarksAll[benchmark] = struct{}{}
		if row.IsMissing != 0 {
			acc.stats.BenchmarkRowsMissing++
		} else {
			acc.stats.BenchmarkRowsNonMissing++
			acc.benchmarksNonMissed[benchmark] = struct{}{}
		}

		if !IsPriceBenchmark(benchmark) {
			acc.stats.BenchmarkPriorRowsTotal++
			if row.IsMissing != 0 {
				acc.stats.BenchmarkPriorRowsMissing++
			} else {
				acc.stats.BenchmarkPriorRowsNonMissing++
			}
		}

		if row.IsMissing == 0 {
			switch benchmark {
			case InputPriceBenchmark:
				if parsed := ParsePrice(row.ValuePrimary); parsed != nil {
					acc.stats.BenchmarkInputUSDPerMTok = parsed
				}
			case OutputPriceBenchmark:
				if parsed := ParsePrice(row.ValuePrimary); parsed != nil {
					acc.stats.BenchmarkOutputUSDPerMTok = parsed
				}
			}
		}
	}

	out := make(map[string]models.ModelStats, len(grouped))
	for model, acc := range grouped {
		acc.stats.BenchmarkDistinctTotal = len(acc.benchmarksAll)
		acc.stats.BenchmarkDistinctNonMissing = len(acc.benchmarksNonMissed)
		out[model] = acc.stats
	}
	return out
}

package models

import "github.com/shopspring/decimal"

// NormalizedRow is one (benchmark, model) cell of the source pipe table
// after missing-token classification and slash splitting.
type NormalizedRow struct {
	RowID              int
	Benchmark          string
	NotesConfiguration string
	Model              string
	RawValue           string
	ValuePrimary       string
	ValueSecondary     string
	SplitKind          string // "none" or "slash"
	IsMissing          int    // 0 or 1
	SourceRowIndex     int
	SourceColIndex     int
	SourceColName      string
}

// ModelStats aggregates the benchmark observations for one source model.
// The two benchmark prices come from the last non-missing price-benchmark
// row seen for the model; everything else is order independent.
type ModelStats struct {
	SourceModel                  string
	SourceModelSlug              string
	BenchmarkRowsTotal           int
	BenchmarkRowsNonMissing      int
	BenchmarkRowsMissing         int
	BenchmarkPriorRowsTotal      int
	BenchmarkPriorRowsNonMissing int
	BenchmarkPriorRowsMissing    int
	BenchmarkDistinctTotal       int
	BenchmarkDistinctNonMissing  int
	BenchmarkInputUSDPerMTok     *decimal.Decimal
	BenchmarkOutputUSDPerMTok    *decimal.Decimal
}

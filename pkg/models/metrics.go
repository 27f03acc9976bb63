package models

// MetricKey joins runtime metrics against ledger rows. Both halves are
// normalized slugs.
type MetricKey struct {
	Provider string
	Model    string
}

// RuntimeMetric is one latency/quality observation for a provider+model
// pair, scraped from an external runtime snapshot file. QualityScore is
// normalized to [0, 1].
type RuntimeMetric struct {
	Provider     string
	Model        string
	LatencyMs    *float64
	QualityScore *float64
	SourcePath   string
}

// Key returns the join key for the metric.
func (m RuntimeMetric) Key() MetricKey {
	return MetricKey{Provider: m.Provider, Model: m.Model}
}

// ParetoRow is one scored, rankable view over a ledger row.
type ParetoRow struct {
	LedgerRowID           int
	Provider              string
	Model                 string
	ParetoScore           float64
	QualityComponent      float64
	CostComponent         float64
	LatencyComponent      float64
	BlendedCostUSDPerMTok *float64
	RuntimeLatencyMs      *float64
	RuntimeQualityScore   *float64
	BenchmarkQualityScore *float64
	RuntimeSourcePath     string
}

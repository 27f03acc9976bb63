// Package pareto blends ledger rows with runtime metrics into a single
// deterministic 0-100 ranking score per model.
package pareto

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tokenledger/tokenledger/pkg/models"
	"github.com/tokenledger/tokenledger/pkg/slug"
)

// Fixed scoring policy. The weights are not configurable per run.
const (
	WeightQuality = 0.50
	WeightCost    = 0.30
	WeightLatency = 0.20
)

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// costComponent maps the average of the present non-negative catalog
// prices onto (0, 1]; rows with no usable price score 0.
func costComponent(r models.LedgerRow) (component float64, blendedCost *float64) {
	var vals []float64
	for _, d := range []*decimal.Decimal{r.PricingInputUSDPerMTok, r.PricingOutputUSDPerMTok} {
		if d == nil {
			continue
		}
		f := d.InexactFloat64()
		if f >= 0 {
			vals = append(vals, f)
		}
	}
	if len(vals) == 0 {
		return 0, nil
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	avg := sum / float64(len(vals))
	return 1.0 / (1.0 + avg), &avg
}

func latencyComponent(latencyMs *float64) float64 {
	if latencyMs == nil || *latencyMs < 0 {
		return 0
	}
	return 1.0 / (1.0 + *latencyMs/1000.0)
}

// benchmarkQuality is the non-missing share of a model's prior benchmark
// rows, or nil when the model has no prior rows at all.
func benchmarkQuality(r models.LedgerRow) *float64 {
	if r.BenchmarkPriorRowsTotal <= 0 {
		return nil
	}
	q := float64(r.BenchmarkPriorRowsNonMissing) / float64(r.BenchmarkPriorRowsTotal)
	q = math.Max(0, math.Min(1, q))
	return &q
}

func blendedQuality(runtimeQuality, benchQuality *float64) float64 {
	var sum float64
	var n int
	for _, v := range []*float64{runtimeQuality, benchQuality} {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Score joins every ledger row against the runtime metrics and computes the
// ranked pareto view. Rows are ordered by score descending, ties broken by
// provider then model slug ascending.
func Score(rows []models.LedgerRow, merged map[models.MetricKey]models.RuntimeMetric) []models.ParetoRow {
	out := make([]models.ParetoRow, 0, len(rows))
	for _, r := range rows {
		provider := slug.Normalize(coalesce(r.PricingProvider, r.InferredProvider, "unknown"))
		model := slug.Normalize(coalesce(r.PricingModel, r.CanonicalModelGuess, "unknown"))

		var runtime *models.RuntimeMetric
		if m, ok := merged[models.MetricKey{Provider: provider, Model: model}]; ok {
			runtime = &m
		}

		cCost, blendedCost := costComponent(r)
		var runtimeLatency, runtimeQuality *float64
		sourcePath := ""
		if runtime != nil {
			runtimeLatency = runtime.LatencyMs
			runtimeQuality = runtime.QualityScore
			sourcePath = runtime.SourcePath
		}
		cLatency := latencyComponent(runtimeLatency)
		qBench := benchmarkQuality(r)
		cQuality := blendedQuality(runtimeQuality, qBench)

		score := 100.0 * (WeightQuality*cQuality + WeightCost*cCost + WeightLatency*cLatency)

		out = append(out, models.ParetoRow{
			LedgerRowID:           r.LedgerRowID,
			Provider:              provider,
			Model:                 model,
			ParetoScore:           round6(score),
			QualityComponent:      round6(cQuality),
			CostComponent:         round6(cCost),
			LatencyComponent:      round6(cLatency),
			BlendedCostUSDPerMTok: roundOpt(blendedCost),
			RuntimeLatencyMs:      roundOpt(runtimeLatency),
			RuntimeQualityScore:   roundOpt(runtimeQuality),
			BenchmarkQualityScore: roundOpt(qBench),
			RuntimeSourcePath:     sourcePath,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ParetoScore != out[j].ParetoScore {
			return out[i].ParetoScore > out[j].ParetoScore
		}
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return out[i].Model < out[j].Model
	})
	return out
}

func roundOpt(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round6(*v)
	return &r
}

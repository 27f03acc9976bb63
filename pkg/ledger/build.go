// Package ledger assembles the unified model/provider ledger: one row per
// distinct source model joining inferred identity, resolved pricing and
// aggregated benchmark statistics, plus the CSV and SQL artifacts derived
// from it.
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tokenledger/tokenledger/pkg/models"
	"github.com/tokenledger/tokenledger/pkg/pricing"
	"github.com/tokenledger/tokenledger/pkg/resolve"
)

// Build assembles the ordered ledger rows. Models are sorted by normalized
// slug (source name as tiebreak) and assigned dense ids starting at 1, so
// reruns on identical input produce identical row ids. Unresolved pricing
// lookups leave the price fields nil; they are never an error.
func Build(statsByModel map[string]models.ModelStats, idx *pricing.Index) []models.LedgerRow {
	names := make([]string, 0, len(statsByModel))
	for name := range statsByModel {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		si := statsByModel[names[i]].SourceModelSlug
		sj := statsByModel[names[j]].SourceModelSlug
		if si != sj {
			return si < sj
		}
		return names[i] < names[j]
	})

	rows := make([]models.LedgerRow, 0, len(names))
	for i, name := range names {
		stats := statsByModel[name]

		provider, providerRule, providerConf := resolve.InferProvider(stats.SourceModel, idx)
		modelGuess := stats.SourceModelSlug
		match := resolve.ResolveModel(provider, modelGuess, idx)

		var subscription *decimal.Decimal
		var prices models.ModelPrices
		if match.Provider != "" {
			if cfg, ok := idx.Catalog.Providers[match.Provider]; ok {
				subscription = cfg.SubscriptionUSDMonth
				if match.Model != "" {
					prices = cfg.Models[match.Model]
				}
			}
		}

		rows = append(rows, models.LedgerRow{
			LedgerRowID:               i + 1,
			SourceModel:               stats.SourceModel,
			SourceModelSlug:           stats.SourceModelSlug,
			InferredProvider:          provider,
			ProviderMappingRule:       providerRule,
			ProviderMappingConfidence: providerConf,
			CanonicalModelGuess:       modelGuess,
			ModelMappingRule:          match.Rule,
			ModelMappingConfidence:    match.Confidence,
			PricingProvider:           match.Provider,
			PricingModel:              match.Model,

			PricingSubscriptionUSDMonth: subscription,
			PricingInputUSDPerMTok:      prices.InputUSDPerMTok,
			PricingOutputUSDPerMTok:     prices.OutputUSDPerMTok,
			PricingCacheWriteUSDPerMTok: prices.CacheWriteUSDPerMTok,
			PricingCacheReadUSDPerMTok:  prices.CacheReadUSDPerMTok,
			PricingToolInputUSDPerMTok:  prices.ToolInputUSDPerMTok,
			PricingToolOutputUSDPerMTok: prices.ToolOutputUSDPerMTok,
			BenchmarkInputUSDPerMTok:    stats.BenchmarkInputUSDPerMTok,
			BenchmarkOutputUSDPerMTok:   stats.BenchmarkOutputUSDPerMTok,

			BenchmarkRowsTotal:           stats.BenchmarkRowsTotal,
			BenchmarkRowsNonMissing:      stats.BenchmarkRowsNonMissing,
			BenchmarkRowsMissing:         stats.BenchmarkRowsMissing,
			BenchmarkPriorRowsTotal:      stats.BenchmarkPriorRowsTotal,
			BenchmarkPriorRowsNonMissing: stats.BenchmarkPriorRowsNonMissing,
			BenchmarkPriorRowsMissing:    stats.BenchmarkPriorRowsMissing,
			BenchmarkDistinctTotal:       stats.BenchmarkDistinctTotal,
			BenchmarkDistinctNonMissing:  stats.BenchmarkDistinctNonMissing,

			PricingVsBenchmarkInputDelta:  delta(prices.InputUSDPerMTok, stats.BenchmarkInputUSDPerMTok),
			PricingVsBenchmarkOutputDelta: delta(prices.OutputUSDPerMTok, stats.BenchmarkOutputUSDPerMTok),
		})
	}
	return rows
}

// delta returns pricing - benchmark, or nil when either side is absent.
func delta(pricingValue, benchmarkValue *decimal.Decimal) *decimal.Decimal {
	if pricingValue == nil || benchmarkValue == nil {
		return nil
	}
	d := pricingValue.Sub(*benchmarkValue)
	return &d
}

// PriorsAggregation groups ledger rows by (inferred provider, pricing
// provider or "unmapped"), sorted by that key pair.
func PriorsAggregation(rows []models.LedgerRow) []models.PriorsGroup {
	type key struct{ inferred, pricing string }
	grouped := make(map[key]*models.PriorsGroup)

	for _, r := range rows {
		pricingProvider := r.PricingProvider
		if pricingProvider == "" {
			pricingProvider = "unmapped"
		}
		k := key{inferred: r.InferredProvider, pricing: pricingProvider}
		g, ok := grouped[k]
		if !ok {
			g = &models.PriorsGroup{InferredProvider: k.inferred, PricingProvider: k.pricing}
			grouped[k] = g
		}
		g.ModelsCount++
		if r.PricingModel != "" {
			g.MappedModelsCount++
		}
		g.PriorRowsTotal += r.BenchmarkPriorRowsTotal
		g.PriorRowsNonMissing += r.BenchmarkPriorRowsNonMissing
		g.PriorRowsMissing += r.BenchmarkPriorRowsMissing
	}

	keys := make([]key, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].inferred != keys[j].inferred {
			return keys[i].inferred < keys[j].inferred
		}
		return keys[i].pricing < keys[j].pricing
	})

	out := make([]models.PriorsGroup, 0, len(keys))
	for _, k := range keys {
		out = append(out, *grouped[k])
	}
	return out
}

package models

import "github.com/shopspring/decimal"

// LedgerRow is the unified reconciled record for one source model: inferred
// identity, resolved pricing, aggregated benchmark statistics, and the
// price deltas between the two sources. Empty PricingProvider/PricingModel
// mean the model resolved to no catalog entry; the mapping rule and
// confidence fields record why.
type LedgerRow struct {
	LedgerRowID               int
	SourceModel               string
	SourceModelSlug           string
	InferredProvider          string
	ProviderMappingRule       string
	ProviderMappingConfidence int
	CanonicalModelGuess       string
	ModelMappingRule          string
	ModelMappingConfidence    int
	PricingProvider           string
	PricingModel              string

	PricingSubscriptionUSDMonth *decimal.Decimal
	PricingInputUSDPerMTok      *decimal.Decimal
	PricingOutputUSDPerMTok     *decimal.Decimal
	PricingCacheWriteUSDPerMTok *decimal.Decimal
	PricingCacheReadUSDPerMTok  *decimal.Decimal
	PricingToolInputUSDPerMTok  *decimal.Decimal
	PricingToolOutputUSDPerMTok *decimal.Decimal
	BenchmarkInputUSDPerMTok    *decimal.Decimal
	BenchmarkOutputUSDPerMTok   *decimal.Decimal

	BenchmarkRowsTotal           int
	BenchmarkRowsNonMissing      int
	BenchmarkRowsMissing         int
	BenchmarkPriorRowsTotal      int
	BenchmarkPriorRowsNonMissing int
	BenchmarkPriorRowsMissing    int
	BenchmarkDistinctTotal       int
	BenchmarkDistinctNonMissing  int

	PricingVsBenchmarkInputDelta  *decimal.Decimal
	PricingVsBenchmarkOutputDelta *decimal.Decimal
}

// PriorsGroup aggregates ledger rows by (inferred provider, pricing
// provider), with unresolved pricing providers bucketed as "unmapped".
type PriorsGroup struct {
	InferredProvider    string
	PricingProvider     string
	ModelsCount         int
	MappedModelsCount   int
	PriorRowsTotal      int
	PriorRowsNonMissing int
	PriorRowsMissing    int
}

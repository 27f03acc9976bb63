// Package models defines the shared data types flowing through the ledger
// pipeline. All price fields use exact decimals; optional values are nil
// pointers.
package models

import "github.com/shopspring/decimal"

// ModelPrices holds the per-model USD-per-million-token price fields.
// Every field is optional in the source catalog.
type ModelPrices struct {
	InputUSDPerMTok      *decimal.Decimal `json:"input_usd_per_mtok"`
	OutputUSDPerMTok     *decimal.Decimal `json:"output_usd_per_mtok"`
	CacheWriteUSDPerMTok *decimal.Decimal `json:"cache_write_usd_per_mtok"`
	CacheReadUSDPerMTok  *decimal.Decimal `json:"cache_read_usd_per_mtok"`
	ToolInputUSDPerMTok  *decimal.Decimal `json:"tool_input_usd_per_mtok"`
	ToolOutputUSDPerMTok *decimal.Decimal `json:"tool_output_usd_per_mtok"`
}

// ProviderPricing is one provider's entry in the pricing catalog.
type ProviderPricing struct {
	Models               map[string]ModelPrices `json:"models"`
	ModelAliases         map[string]string      `json:"model_aliases"`
	SubscriptionUSDMonth *decimal.Decimal       `json:"subscription_usd_month"`
}

// Catalog is the full pricing catalog document.
type Catalog struct {
	Providers       map[string]ProviderPricing `json:"providers"`
	ProviderAliases map[string]string          `json:"provider_aliases"`
}

// Package resolve maps free-text model identifiers onto canonical
// provider/model pairs from the pricing catalog, using ordered heuristic
// rule tables with explicit per-rule confidence levels.
package resolve

import (
	"strings"

	"github.com/tokenledger/tokenledger/pkg/pricing"
	"github.com/tokenledger/tokenledger/pkg/slug"
)

// ProviderRule maps a model-slug prefix to a canonical provider. A rule
// matches when the slug equals the prefix or starts with prefix + "-".
type ProviderRule struct {
	Prefix     string
	Rule       string
	Provider   string
	Confidence int
}

// ProviderRules is evaluated top to bottom; the first matching rule wins.
// New rules are additive — append, do not reorder.
var ProviderRules = []ProviderRule{
	{Prefix: "claude", Rule: "prefix:claude", Provider: "claude", Confidence: 99},
	{Prefix: "gpt", Rule: "prefix:gpt", Provider: "codex", Confidence: 95},
	{Prefix: "gemini", Rule: "prefix:gemini", Provider: "google", Confidence: 95},
	{Prefix: "grok", Rule: "prefix:grok", Provider: "xai", Confidence: 95},
	{Prefix: "qwen", Rule: "prefix:qwen", Provider: "qwen", Confidence: 95},
	{Prefix: "deepseek", Rule: "prefix:deepseek", Provider: "deepseek", Confidence: 95},
	{Prefix: "minimax", Rule: "prefix:minimax", Provider: "minimax", Confidence: 95},
	{Prefix: "kimi", Rule: "prefix:kimi", Provider: "kimi", Confidence: 95},
	{Prefix: "glm", Rule: "prefix:glm", Provider: "zhipu", Confidence: 95},
	{Prefix: "step", Rule: "prefix:step", Provider: "stepfun", Confidence: 95},
	{Prefix: "devstral", Rule: "prefix:devstral", Provider: "mistral", Confidence: 95},
}

// FamilyRule resolves known model-naming drift (dated suffixes and the
// like) onto a canonical catalog model, provided that model actually
// exists in the named provider's catalog.
type FamilyRule struct {
	Prefix     string
	Provider   string
	Model      string
	Rule       string
	Confidence int
}

// FamilyRules is evaluated top to bottom; the first applicable rule wins.
var FamilyRules = []FamilyRule{
	{Prefix: "gpt-5", Provider: "codex", Model: "gpt-5", Rule: "heuristic:gpt-5-family", Confidence: 78},
	{Prefix: "claude-sonnet-4-5", Provider: "claude", Model: "claude-sonnet-4-5", Rule: "heuristic:claude-sonnet-4-5", Confidence: 80},
}

// InferProvider guesses the provider behind a source model string. It is a
// total function: unmatched inputs come back as ("unknown",
// "heuristic:unknown", 0) rather than an error.
func InferProvider(sourceModel string, idx *pricing.Index) (provider, rule string, confidence int) {
	s := slug.Normalize(sourceModel)

	if aliased, ok := idx.ProviderAlias[s]; ok {
		return aliased, "pricing:provider_alias", 100
	}

	for _, r := range ProviderRules {
		if s == r.Prefix || strings.HasPrefix(s, r.Prefix+"-") {
			return r.Provider, r.Rule, r.Confidence
		}
	}

	return "unknown", "heuristic:unknown", 0
}

// ModelMatch is the outcome of model resolution. An empty Provider/Model
// with rule "unmapped" means every tier failed.
type ModelMatch struct {
	Provider   string
	Model      string
	Rule       string
	Confidence int
}

// ResolveModel maps a (provider guess, model slug guess) onto a priced
// catalog model. Tiers are tried in order and short-circuit:
//
//  1. exact/alias hit inside the guessed provider's own index (100)
//  2. exact/alias hit in the global cross-provider index (92) — the
//     provider comes from the index entry, correcting provider drift
//  3. family heuristics for known naming drift (fixed per-rule confidence)
//  4. unmapped (0)
func ResolveModel(providerGuess, modelGuess string, idx *pricing.Index) ModelMatch {
	if lookup, ok := idx.ByProvider[providerGuess]; ok {
		if m, ok := lookup[modelGuess]; ok {
			return ModelMatch{Provider: m.Provider, Model: m.Model, Rule: m.Rule, Confidence: 100}
		}
	}

	if m, ok := idx.Global[modelGuess]; ok {
		return ModelMatch{Provider: m.Provider, Model: m.Model, Rule: m.Rule, Confidence: 92}
	}

	for _, fr := range FamilyRules {
		if !strings.HasPrefix(modelGuess, fr.Prefix) {
			continue
		}
		provider, ok := idx.Catalog.Providers[fr.Provider]
		if !ok {
			continue
		}
		if _, ok := provider.Models[fr.Model]; !ok {
			continue
		}
		return ModelMatch{Provider: fr.Provider, Model: fr.Model, Rule: fr.Rule, Confidence: fr.Confidence}
	}

	return ModelMatch{Rule: "unmapped"}
}

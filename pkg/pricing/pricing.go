// Package pricing loads the pricing catalog and flattens it into the
// slug-keyed lookup tables used by provider inference and model resolution.
package pricing

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/tokenledger/tokenledger/pkg/models"
	"github.com/tokenledger/tokenledger/pkg/slug"
)

// Mapping rule tags carried by index entries.
const (
	RuleModelExact = "pricing:model_exact"
	RuleModelAlias = "pricing:model_alias"
)

// Load reads and parses a pricing catalog JSON file.
func Load(path string) (models.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Catalog{}, fmt.Errorf("read pricing catalog: %w", err)
	}
	var cat models.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return models.Catalog{}, fmt.Errorf("parse pricing catalog: %w", err)
	}
	return cat, nil
}

// Mapping is one resolved index entry: the canonical provider and model a
// slug points at, and the rule tag explaining how.
type Mapping struct {
	Provider string
	Model    string
	Rule     string
}

// Index holds the lookup tables derived from a pricing catalog. It is not
// mutated after BuildIndex returns.
type Index struct {
	Catalog models.Catalog

	// Global maps model slugs across all providers. On slug collisions the
	// first provider in sorted order wins.
	Global map[string]Mapping

	// ByProvider scopes model slugs to a single provider, so collisions
	// across providers are not suppressed.
	ByProvider map[string]map[string]Mapping

	// ProviderAlias maps provider-alias slugs to canonical provider names.
	ProviderAlias map[string]string
}

// BuildIndex flattens the catalog into lookup tables. Providers, model
// names and aliases are inserted in sorted order so the first-wins rule on
// global slug collisions is deterministic. Exact model names are inserted
// before aliases within each provider.
func BuildIndex(cat models.Catalog) *Index {
	idx := &Index{
		Catalog:       cat,
		Global:        make(map[string]Mapping),
		ByProvider:    make(map[string]map[string]Mapping, len(cat.Providers)),
		ProviderAlias: make(map[string]string, len(cat.ProviderAliases)),
	}

	for _, providerName := range sortedKeys(cat.Providers) {
		cfg := cat.Providers[providerName]
		lookup := make(map[string]Mapping, len(cfg.Models)+len(cfg.ModelAliases))

		for _, modelName := range sortedKeys(cfg.Models) {
			key := slug.Normalize(modelName)
			m := Mapping{Provider: providerName, Model: modelName, Rule: RuleModelExact}
			lookup[key] = m
			if _, ok := idx.Global[key]; !ok {
				idx.Global[key] = m
			}
		}

		for _, alias := range sortedKeys(cfg.ModelAliases) {
			key := slug.Normalize(alias)
			m := Mapping{Provider: providerName, Model: cfg.ModelAliases[alias], Rule: RuleModelAlias}
			lookup[key] = m
			if _, ok := idx.Global[key]; !ok {
				idx.Global[key] = m
			}
		}

		idx.ByProvider[providerName] = lookup
	}

	for alias, provider := range cat.ProviderAliases {
		idx.ProviderAlias[slug.Normalize(alias)] = provider
	}

	return idx
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

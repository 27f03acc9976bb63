package pricing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tokenledger/tokenledger/pkg/models"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricing.json")
	doc := `{
		"providers": {
			"claude": {
				"models": {
					"claude-sonnet-4-5": {"input_usd_per_mtok": 3, "output_usd_per_mtok": 15}
				},
				"model_aliases": {"Sonnet": "claude-sonnet-4-5"},
				"subscription_usd_month": 20
			}
		},
		"provider_aliases": {"Anthropic": "claude"}
	}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cat, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg, ok := cat.Providers["claude"]
	if !ok {
		t.Fatal("expected claude provider")
	}
	prices := cfg.Models["claude-sonnet-4-5"]
	if prices.InputUSDPerMTok == nil || prices.InputUSDPerMTok.String() != "3" {
		t.Errorf("unexpected input price: %v", prices.InputUSDPerMTok)
	}
	if cfg.SubscriptionUSDMonth == nil || cfg.SubscriptionUSDMonth.String() != "20" {
		t.Errorf("unexpected subscription: %v", cfg.SubscriptionUSDMonth)
	}
	if cat.ProviderAliases["Anthropic"] != "claude" {
		t.Errorf("unexpected provider aliases: %v", cat.ProviderAliases)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing catalog")
	}
}

func TestBuildIndexExactAndAlias(t *testing.T) {
	cat := models.Catalog{
		Providers: map[string]models.ProviderPricing{
			"claude": {
				Models:       map[string]models.ModelPrices{"claude-sonnet-4-5": {}},
				ModelAliases: map[string]string{"Sonnet 4.5": "claude-sonnet-4-5"},
			},
		},
		ProviderAliases: map[string]string{"Anthropic": "claude"},
	}
	idx := BuildIndex(cat)

	m, ok := idx.ByProvider["claude"]["claude-sonnet-4-5"]
	if !ok {
		t.Fatal("expected exact model in provider index")
	}
	if m.Rule != RuleModelExact || m.Model != "claude-sonnet-4-5" {
		t.Errorf("unexpected exact mapping: %+v", m)
	}

	a, ok := idx.ByProvider["claude"]["sonnet-4-5"]
	if !ok {
		t.Fatal("expected alias slug in provider index")
	}
	if a.Rule != RuleModelAlias || a.Model != "claude-sonnet-4-5" {
		t.Errorf("unexpected alias mapping: %+v", a)
	}

	if idx.ProviderAlias["anthropic"] != "claude" {
		t.Errorf("expected normalized provider alias, got %v", idx.ProviderAlias)
	}
}

func TestBuildIndexGlobalFirstWins(t *testing.T) {
	cat := models.Catalog{
		Providers: map[string]models.ProviderPricing{
			"beta":  {Models: map[string]models.ModelPrices{"shared-model": {}}},
			"alpha": {Models: map[string]models.ModelPrices{"shared-model": {}}},
		},
	}
	idx := BuildIndex(cat)

	g, ok := idx.Global["shared-model"]
	if !ok {
		t.Fatal("expected shared-model in global index")
	}
	if g.Provider != "alpha" {
		t.Errorf("expected first provider in sorted order to win, got %q", g.Provider)
	}
	// Provider-scoped lookups keep both.
	if _, ok := idx.ByProvider["beta"]["shared-model"]; !ok {
		t.Error("expected beta's own entry to survive the global collision")
	}
}

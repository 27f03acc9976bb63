// Package config holds tokenledger configuration loaded from an optional
// YAML file with environment-variable expansion.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all tokenledger paths and refresh options. Flags set
// explicitly on the command line override file values.
type Config struct {
	PricingPath       string `yaml:"pricing_path"`
	ModelsPath        string `yaml:"models_path"`
	NormalizedCSVPath string `yaml:"normalized_csv_path"`
	NormalizedSQLPath string `yaml:"normalized_sql_path"`
	LedgerDir         string `yaml:"ledger_dir"`
	DBPath            string `yaml:"db_path"`

	Snapshots            []string `yaml:"snapshots"`
	AllowMissingSnapshot bool     `yaml:"allow_missing_snapshot"`
	SkipDiscovery        bool     `yaml:"skip_discovery"`
}

// Default returns a Config with the conventional artifact locations.
func Default() *Config {
	return &Config{
		PricingPath:       "pricing.example.json",
		ModelsPath:        "models.csv",
		NormalizedCSVPath: "models_normalized.csv",
		NormalizedSQLPath: "models_schema_seed.sql",
		LedgerDir:         "ledger",
		DBPath:            "tokenledger.db",
	}
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tokenledger/tokenledger/pkg/bench"
	"github.com/tokenledger/tokenledger/pkg/ledger"
	"github.com/tokenledger/tokenledger/pkg/models"
	"github.com/tokenledger/tokenledger/pkg/pricing"
)

// Ledger artifact file names within the ledger directory.
const (
	ledgerCSVName    = "unified_model_provider_ledger.csv"
	ledgerSchemaName = "unified_model_provider_ledger.schema.sql"
	ledgerSeedName   = "unified_model_provider_ledger.seed.sql"
	runtimeCSVName   = "cliproxyapi_runtime_metrics_snapshot.csv"
	paretoCSVName    = "unified_model_provider_pareto.csv"
	paretoViewName   = "unified_model_provider_pareto.view.sql"
)

func newLedgerCmd() *cobra.Command {
	var (
		configPath  string
		pricingPath string
		modelsCSV   string
		ledgerDir   string
	)

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Build the deterministic unified model/provider ledger artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			pricingPath = orDefault(pricingPath, cfg.PricingPath)
			modelsCSV = orDefault(modelsCSV, cfg.NormalizedCSVPath)
			ledgerDir = orDefault(ledgerDir, cfg.LedgerDir)

			rows, err := buildLedgerArtifacts(pricingPath, modelsCSV, ledgerDir)
			if err != nil {
				return err
			}

			priors := ledger.PriorsAggregation(rows)
			fmt.Printf("ledger_rows=%d\n", len(rows))
			fmt.Printf("priors_aggregation_rows=%d\n", len(priors))
			fmt.Printf("csv=%s\n", filepath.Join(ledgerDir, ledgerCSVName))
			fmt.Printf("schema_sql=%s\n", filepath.Join(ledgerDir, ledgerSchemaName))
			fmt.Printf("seed_sql=%s\n", filepath.Join(ledgerDir, ledgerSeedName))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to tokenledger config file")
	cmd.Flags().StringVar(&pricingPath, "pricing", "", "pricing catalog JSON path")
	cmd.Flags().StringVar(&modelsCSV, "models-csv", "", "normalized benchmark CSV path")
	cmd.Flags().StringVar(&ledgerDir, "ledger-dir", "", "output directory for ledger artifacts")

	return cmd
}

// buildLedgerArtifacts runs the full ledger pipeline and writes all three
// ledger artifacts. Any failure aborts without leaving partial artifacts:
// nothing is written until the row set is fully computed.
func buildLedgerArtifacts(pricingPath, modelsCSV, ledgerDir string) ([]models.LedgerRow, error) {
	catalog, err := pricing.Load(pricingPath)
	if err != nil {
		return nil, err
	}
	idx := pricing.BuildIndex(catalog)

	benchRows, err := bench.ReadNormalizedCSV(modelsCSV)
	if err != nil {
		return nil, err
	}
	if len(benchRows) == 0 {
		return nil, fmt.Errorf("no benchmark rows found in %s", modelsCSV)
	}

	stats := bench.Aggregate(benchRows)
	rows := ledger.Build(stats, idx)

	if err := ledger.WriteCSV(filepath.Join(ledgerDir, ledgerCSVName), rows); err != nil {
		return nil, err
	}
	if err := ledger.WriteSchemaSQL(filepath.Join(ledgerDir, ledgerSchemaName)); err != nil {
		return nil, err
	}
	if err := ledger.WriteSeedSQL(filepath.Join(ledgerDir, ledgerSeedName), rows); err != nil {
		return nil, err
	}
	return rows, nil
}

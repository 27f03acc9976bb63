package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tokenledger/tokenledger/pkg/ledger"
	"github.com/tokenledger/tokenledger/pkg/metrics"
	"github.com/tokenledger/tokenledger/pkg/models"
	"github.com/tokenledger/tokenledger/pkg/pareto"
	"github.com/tokenledger/tokenledger/pkg/store"
)

func newRefreshCmd() *cobra.Command {
	var (
		configPath   string
		pricingPath  string
		modelsCSV    string
		ledgerDir    string
		baseDir      string
		snapshots    []string
		allowMissing bool
		skipDiscover bool
		dbPath       string
	)

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Rebuild ledger artifacts and derive the blended pareto view",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			pricingPath = orDefault(pricingPath, cfg.PricingPath)
			modelsCSV = orDefault(modelsCSV, cfg.NormalizedCSVPath)
			ledgerDir = orDefault(ledgerDir, cfg.LedgerDir)
			if len(snapshots) == 0 {
				snapshots = cfg.Snapshots
			}
			if !cmd.Flags().Changed("allow-missing-snapshot") {
				allowMissing = cfg.AllowMissingSnapshot
			}
			if !cmd.Flags().Changed("skip-discovery") {
				skipDiscover = cfg.SkipDiscovery
			}

			// Regenerate the ledger artifacts first; a failure here aborts
			// the whole refresh.
			if _, err := buildLedgerArtifacts(pricingPath, modelsCSV, ledgerDir); err != nil {
				return fmt.Errorf("regenerate ledger: %w", err)
			}

			var snapshotPaths []string
			if !skipDiscover {
				snapshotPaths = metrics.Discover(baseDir)
			}
			for _, p := range snapshots {
				if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
					snapshotPaths = append(snapshotPaths, p)
				}
			}
			snapshotPaths = dedupe(snapshotPaths)

			if len(snapshotPaths) == 0 && !allowMissing {
				return fmt.Errorf("no runtime snapshot found; pass --allow-missing-snapshot or provide --snapshot <path>")
			}

			merged, err := metrics.LoadSnapshots(snapshotPaths)
			if err != nil {
				return err
			}

			// Score from the regenerated artifact on disk, not in-memory
			// state, so the artifacts stay the single source of truth.
			ledgerCSV := filepath.Join(ledgerDir, ledgerCSVName)
			rows, err := ledger.ReadCSV(ledgerCSV)
			if err != nil {
				return err
			}

			runtimeCSV := filepath.Join(ledgerDir, runtimeCSVName)
			paretoCSV := filepath.Join(ledgerDir, paretoCSVName)
			paretoSQL := filepath.Join(ledgerDir, paretoViewName)

			if err := metrics.WriteCSV(runtimeCSV, merged); err != nil {
				return err
			}
			scored := pareto.Score(rows, merged)
			if err := pareto.WriteCSV(paretoCSV, scored); err != nil {
				return err
			}
			if err := pareto.WriteViewSQL(paretoSQL); err != nil {
				return err
			}

			if dbPath != "" {
				if err := importDB(cmd.Context(), dbPath, rows, merged); err != nil {
					return err
				}
				fmt.Printf("db=%s\n", dbPath)
			}

			fmt.Printf("runtime_snapshot_files=%d\n", len(snapshotPaths))
			fmt.Printf("runtime_metric_rows=%d\n", len(merged))
			fmt.Printf("pareto_rows=%d\n", len(scored))
			fmt.Printf("runtime_csv=%s\n", runtimeCSV)
			fmt.Printf("pareto_csv=%s\n", paretoCSV)
			fmt.Printf("pareto_sql=%s\n", paretoSQL)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to tokenledger config file")
	cmd.Flags().StringVar(&pricingPath, "pricing", "", "pricing catalog JSON path")
	cmd.Flags().StringVar(&modelsCSV, "models-csv", "", "normalized benchmark CSV path")
	cmd.Flags().StringVar(&ledgerDir, "ledger-dir", "", "output directory for artifacts")
	cmd.Flags().StringVar(&baseDir, "base-dir", ".", "base directory for snapshot discovery")
	cmd.Flags().StringArrayVar(&snapshots, "snapshot", nil, "runtime metrics snapshot path (repeatable)")
	cmd.Flags().BoolVar(&allowMissing, "allow-missing-snapshot", false, "do not fail when no runtime snapshot is available")
	cmd.Flags().BoolVar(&skipDiscover, "skip-discovery", false, "use only explicit --snapshot values")
	cmd.Flags().StringVar(&dbPath, "db", "", "also import artifacts into this sqlite database")

	return cmd
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	var out []string
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func importDB(ctx context.Context, dbPath string, rows []models.LedgerRow, merged map[models.MetricKey]models.RuntimeMetric) error {
	st, err := store.New(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.ImportLedger(ctx, rows, ledger.PriorsAggregation(rows)); err != nil {
		return err
	}
	return st.ImportMetrics(ctx, merged)
}

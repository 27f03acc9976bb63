package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tokenledger/tokenledger/pkg/ledger"
	"github.com/tokenledger/tokenledger/pkg/metrics"
	"github.com/tokenledger/tokenledger/pkg/models"
	"github.com/tokenledger/tokenledger/pkg/store"
)

func newLoadCmd() *cobra.Command {
	var (
		configPath string
		ledgerDir  string
		dbPath     string
		top        int
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Import ledger artifacts into SQLite and show the top-ranked models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			ledgerDir = orDefault(ledgerDir, cfg.LedgerDir)
			dbPath = orDefault(dbPath, cfg.DBPath)

			rows, err := ledger.ReadCSV(filepath.Join(ledgerDir, ledgerCSVName))
			if err != nil {
				return err
			}

			// The runtime metrics artifact is optional; a ledger built
			// without any snapshot still loads, it just ranks on priors
			// and pricing alone.
			merged := map[models.MetricKey]models.RuntimeMetric{}
			runtimeCSV := filepath.Join(ledgerDir, runtimeCSVName)
			if _, statErr := os.Stat(runtimeCSV); statErr == nil {
				merged, err = metrics.ReadCSV(runtimeCSV)
				if err != nil {
					return err
				}
			}

			st, err := store.New(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			if err := st.ImportLedger(ctx, rows, ledger.PriorsAggregation(rows)); err != nil {
				return err
			}
			if err := st.ImportMetrics(ctx, merged); err != nil {
				return err
			}

			count, err := st.LedgerCount(ctx)
			if err != nil {
				return err
			}
			ranked, err := st.Top(ctx, top)
			if err != nil {
				return err
			}

			fmt.Printf("imported %d ledger rows and %d runtime metrics into %s\n", count, len(merged), dbPath)

			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "RANK\tPROVIDER\tMODEL\tSCORE")
			for i, r := range ranked {
				fmt.Fprintf(w, "%d\t%s\t%s\t%.6f\n", i+1, r.Provider, r.Model, r.ParetoScore)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to tokenledger config file")
	cmd.Flags().StringVar(&ledgerDir, "ledger-dir", "", "directory containing generated artifacts")
	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite database path")
	cmd.Flags().IntVar(&top, "top", 10, "number of ranked models to show")

	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tokenledger/tokenledger/pkg/seed"
)

func newSeedCmd() *cobra.Command {
	var (
		configPath string
		input      string
		csvOut     string
		sqlOut     string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Normalize the raw benchmark pipe table into CSV and SQL seeds",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			input = orDefault(input, cfg.ModelsPath)
			csvOut = orDefault(csvOut, cfg.NormalizedCSVPath)
			sqlOut = orDefault(sqlOut, cfg.NormalizedSQLPath)

			header, body, err := seed.LoadPipeTable(input)
			if err != nil {
				return err
			}
			rows, err := seed.Normalize(header, body)
			if err != nil {
				return err
			}
			if err := seed.WriteCSV(csvOut, rows); err != nil {
				return err
			}
			if err := seed.WriteSQL(sqlOut, rows); err != nil {
				return err
			}

			fmt.Printf("generated %d rows -> csv:%s sql:%s from %s\n", len(rows), csvOut, sqlOut, input)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to tokenledger config file")
	cmd.Flags().StringVar(&input, "input", "", "raw pipe-table input path")
	cmd.Flags().StringVar(&csvOut, "csv-out", "", "normalized CSV output path")
	cmd.Flags().StringVar(&sqlOut, "sql-out", "", "SQL seed output path")

	return cmd
}

package seed

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tokenledger/tokenledger/pkg/models"
)

// CSVHeader is the column order of the normalized benchmark CSV.
var CSVHeader = []string{
	"row_id",
	"benchmark",
	"notes_configuration",
	"model",
	"raw_value",
	"value_primary",
	"value_secondary",
	"split_kind",
	"is_missing",
	"source_row_index",
	"source_col_index",
	"source_col_name",
}

// WriteCSV writes the normalized rows as a CSV artifact.
func WriteCSV(path string, rows []models.NormalizedRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create normalized csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.RowID),
			r.Benchmark,
			r.NotesConfiguration,
			r.Model,
			r.RawValue,
			r.ValuePrimary,
			r.ValueSecondary,
			r.SplitKind,
			strconv.Itoa(r.IsMissing),
			strconv.Itoa(r.SourceRowIndex),
			strconv.Itoa(r.SourceColIndex),
			r.SourceColName,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", r.RowID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush normalized csv: %w", err)
	}
	return f.Close()
}

func sqlQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func sqlText(value string) string {
	if value == "" {
		return "NULL"
	}
	return sqlQuote(value)
}

// WriteSQL writes the normalized rows as a DROP/CREATE/INSERT SQL seed for
// the model_benchmark_values table.
func WriteSQL(path string, rows []models.NormalizedRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	lines := []string{
		"-- Generated from the raw models markdown-pipe table.",
		"-- Deterministic normalization rules:",
		"-- 1) Missing tokens are: '', '—', '-', 'N/A', 'n/a', 'na', 'NA', 'null', 'NULL'.",
		"-- 2) Non-missing values are split once on regex /\\s*\\/\\s*/ into value_primary/value_secondary.",
		"-- 3) If no split occurs, value_secondary is NULL and split_kind='none'.",
		"",
		"DROP TABLE IF EXISTS model_benchmark_values;",
		"",
		"CREATE TABLE model_benchmark_values (",
		"  row_id INTEGER PRIMARY KEY,",
		"  benchmark TEXT NOT NULL,",
		"  notes_configuration TEXT NOT NULL,",
		"  model TEXT NOT NULL,",
		"  raw_value TEXT,",
		"  value_primary TEXT,",
		"  value_secondary TEXT,",
		"  split_kind TEXT NOT NULL CHECK (split_kind IN ('none', 'slash')),",
		"  is_missing INTEGER NOT NULL CHECK (is_missing IN (0, 1)),",
		"  source_row_index INTEGER NOT NULL,",
		"  source_col_index INTEGER NOT NULL,",
		"  source_col_name TEXT NOT NULL",
		");",
		"",
		"INSERT INTO model_benchmark_values (",
		"  row_id,",
		"  benchmark,",
		"  notes_configuration,",
		"  model,",
		"  raw_value,",
		"  value_primary,",
		"  value_secondary,",
		"  split_kind,",
		"  is_missing,",
		"  source_row_index,",
		"  source_col_index,",
		"  source_col_name",
		") VALUES",
	}

	tuples := make([]string, 0, len(rows))
	for _, r := range rows {
		tuples = append(tuples, fmt.Sprintf("(%d, %s, %s, %s, %s, %s, %s, %s, %d, %d, %d, %s)",
			r.RowID,
			sqlQuote(r.Benchmark),
			sqlQuote(r.NotesConfiguration),
			sqlQuote(r.Model),
			sqlText(r.RawValue),
			sqlText(r.ValuePrimary),
			sqlText(r.ValueSecondary),
			sqlQuote(r.SplitKind),
			r.IsMissing,
			r.SourceRowIndex,
			r.SourceColIndex,
			sqlQuote(r.SourceColName),
		))
	}
	lines = append(lines, strings.Join(tuples, ",\n")+";")

	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		return fmt.Errorf("write seed sql: %w", err)
	}
	return nil
}

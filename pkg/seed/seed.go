// Package seed normalizes the raw benchmark markdown pipe table into one
// row per (benchmark, model) cell and writes the normalized CSV and SQL
// seed artifacts.
//
// The input is treated as plain text, not CSV: rows are lines that start
// and end with "|", and the first such row is the header.
package seed

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/tokenledger/tokenledger/pkg/models"
)

// MissingTokens are the raw cell values classified as absent measurements.
var MissingTokens = map[string]bool{
	"":     true,
	"—":    true,
	"-":    true,
	"N/A":  true,
	"n/a":  true,
	"na":   true,
	"NA":   true,
	"null": true,
	"NULL": true,
}

var slashSplitRE = regexp.MustCompile(`\s*/\s*`)

// ParsePipeRow splits one pipe-table line into trimmed cells. Lines that
// are not pipe rows return nil.
func ParsePipeRow(line string) []string {
	stripped := strings.TrimSpace(line)
	if !strings.HasPrefix(stripped, "|") || !strings.HasSuffix(stripped, "|") {
		return nil
	}
	inner := strings.Trim(stripped, "|")
	parts := strings.Split(inner, "|")
	cells := make([]string, len(parts))
	for i, cell := range parts {
		cells[i] = strings.TrimSpace(cell)
	}
	return cells
}

// LoadPipeTable reads a pipe-table text file and returns the header row and
// the body rows, each body row padded or truncated to the header width.
// A file with no pipe rows is a fatal input error.
func LoadPipeTable(path string) (header []string, body [][]string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read pipe table: %w", err)
	}

	var rows [][]string
	for _, line := range strings.Split(string(data), "\n") {
		if parsed := ParsePipeRow(line); parsed != nil {
			rows = append(rows, parsed)
		}
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("no pipe-table rows found in %s", path)
	}

	header = rows[0]
	width := len(header)
	for _, row := range rows[1:] {
		normalized := make([]string, width)
		copy(normalized, row)
		body = append(body, normalized)
	}
	return header, body, nil
}

// SplitValue classifies a raw cell and splits non-missing values once on a
// slash (optionally surrounded by whitespace).
func SplitValue(raw string) (primary, secondary, splitKind string, isMissing int) {
	if MissingTokens[raw] {
		return "", "", "none", 1
	}
	parts := slashSplitRE.Split(raw, 2)
	if len(parts) == 2 {
		return parts[0], parts[1], "slash", 0
	}
	return raw, "", "none", 0
}

// Normalize explodes the pipe table into one NormalizedRow per
// (body row, model column). The first two header columns are the benchmark
// name and its notes/configuration; every further column is a model.
// Source row indexes start at 2 (the header is line 1) and source column
// indexes at 3 (the first model column).
func Normalize(header []string, body [][]string) ([]models.NormalizedRow, error) {
	if len(header) < 3 {
		return nil, fmt.Errorf("expected at least 3 columns in source pipe-table, got %d", len(header))
	}
	modelColumns := header[2:]

	var out []models.NormalizedRow
	nextRowID := 1
	for i, row := range body {
		sourceRowIndex := i + 2
		benchmark := row[0]
		notes := row[1]
		for offset, modelColName := range modelColumns {
			sourceColIndex := offset + 3
			rawValue := row[sourceColIndex-1]
			primary, secondary, splitKind, isMissing := SplitValue(rawValue)
			out = append(out, models.NormalizedRow{
				RowID:              nextRowID,
				Benchmark:          benchmark,
				NotesConfiguration: notes,
				Model:              modelColName,
				RawValue:           rawValue,
				ValuePrimary:       primary,
				ValueSecondary:     secondary,
				SplitKind:          splitKind,
				IsMissing:          isMissing,
				SourceRowIndex:     sourceRowIndex,
				SourceColIndex:     sourceColIndex,
				SourceColName:      modelColName,
			})
			nextRowID++
		}
	}
	return out, nil
}

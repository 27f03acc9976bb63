package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/tokenledger/tokenledger/pkg/models"
)

// CSVHeader is the column order of the runtime metrics CSV artifact.
var CSVHeader = []string{"provider", "model", "latency_ms", "quality_score", "source_path"}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 6, 64)
}

// WriteCSV writes the merged runtime metrics sorted by (provider, model).
func WriteCSV(path string, merged map[models.MetricKey]models.RuntimeMetric) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create runtime metrics csv: %w", err)
	}
	defer f.Close()

	keys := make([]models.MetricKey, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Provider != keys[j].Provider {
			return keys[i].Provider < keys[j].Provider
		}
		return keys[i].Model < keys[j].Model
	})

	w := csv.NewWriter(f)
	if err := w.Write(CSVHeader); err != nil {
		return fmt.Errorf("write runtime metrics header: %w", err)
	}
	for _, k := range keys {
		m := merged[k]
		if err := w.Write([]string{m.Provider, m.Model, optFloat(m.LatencyMs), optFloat(m.QualityScore), m.SourcePath}); err != nil {
			return fmt.Errorf("write runtime metrics row %s/%s: %w", m.Provider, m.Model, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush runtime metrics csv: %w", err)
	}
	return f.Close()
}

// ReadCSV loads a runtime metrics artifact back into a keyed map.
func ReadCSV(path string) (map[models.MetricKey]models.RuntimeMetric, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open runtime metrics csv: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read runtime metrics csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("runtime metrics csv %s is empty", path)
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[name] = i
	}
	for _, name := range CSVHeader {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("runtime metrics csv %s missing column %q", path, name)
		}
	}

	out := make(map[models.MetricKey]models.RuntimeMetric, len(records)-1)
	for i, rec := range records[1:] {
		m := models.RuntimeMetric{
			Provider:   rec[col["provider"]],
			Model:      rec[col["model"]],
			SourcePath: rec[col["source_path"]],
		}
		if text := rec[col["latency_ms"]]; text != "" {
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("runtime metrics csv row %d: latency_ms: %w", i+2, err)
			}
			m.LatencyMs = &v
		}
		if text := rec[col["quality_score"]]; text != "" {
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("runtime metrics csv row %d: quality_score: %w", i+2, err)
			}
			m.QualityScore = &v
		}
		if _, ok := out[m.Key()]; !ok {
			out[m.Key()] = m
		}
	}
	return out, nil
}

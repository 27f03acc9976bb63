// Package metrics ingests runtime latency/quality snapshots produced by
// external proxy tooling. Snapshot files have no fixed schema: every object
// node at any depth is checked for provider/model/metric-like keys, so the
// scan survives layout changes in the producer.
package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/tokenledger/tokenledger/pkg/models"
	"github.com/tokenledger/tokenledger/pkg/slug"
)

// Recognized key aliases, in lookup order.
var (
	providerKeys = []string{"provider", "inferred_provider"}
	modelKeys    = []string{"model", "pricing_model", "canonical_model"}
	latencyKeys  = []string{"latency_ms", "median_latency_ms", "p50_latency_ms", "p95_latency_ms"}
	qualityKeys  = []string{"quality_score", "success_rate", "win_rate", "accuracy"}
)

// parseFloat coerces a decoded JSON value to a float. Strings may carry
// thousands separators. Anything else is treated as absent.
func parseFloat(v any) *float64 {
	switch val := v.(type) {
	case float64:
		f := val
		return &f
	case string:
		text := strings.ReplaceAll(strings.TrimSpace(val), ",", "")
		if text == "" {
			return nil
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// normalizeQuality maps a raw quality value onto [0, 1]: fractions pass
// through, percentage-scale values in (1, 100] are divided by 100, and
// anything outside [0, 100] is discarded. A value of exactly 1.0 is taken
// as an already-normalized fraction.
func normalizeQuality(v *float64) *float64 {
	if v == nil {
		return nil
	}
	switch {
	case *v < 0:
		return nil
	case *v <= 1.0:
		return v
	case *v <= 100.0:
		q := *v / 100.0
		return &q
	default:
		return nil
	}
}

func firstString(node map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := node[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func firstFloat(node map[string]any, keys []string) *float64 {
	for _, k := range keys {
		if v, ok := node[k]; ok {
			if f := parseFloat(v); f != nil {
				return f
			}
		}
	}
	return nil
}

// Collect walks a decoded JSON document depth-first and appends every
// accepted candidate metric. Arrays are flattened; recursion continues into
// every child of every object whether or not the object itself was
// accepted, so nested candidates are all captured. Object keys are visited
// in sorted order to keep first-seen merging deterministic.
func Collect(value any, sourcePath string, out *[]models.RuntimeMetric) {
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			Collect(item, sourcePath, out)
		}
	case map[string]any:
		provider := firstString(v, providerKeys)
		model := firstString(v, modelKeys)
		latency := firstFloat(v, latencyKeys)
		quality := normalizeQuality(firstFloat(v, qualityKeys))

		if provider != "" && model != "" && (latency != nil || quality != nil) {
			*out = append(*out, models.RuntimeMetric{
				Provider:     slug.Normalize(provider),
				Model:        slug.Normalize(model),
				LatencyMs:    latency,
				QualityScore: quality,
				SourcePath:   sourcePath,
			})
		}

		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			Collect(v[k], sourcePath, out)
		}
	}
}

// LoadSnapshots parses the given snapshot files and merges their candidate
// metrics keyed by (provider, model). The first snapshot seen for a key
// wins; later duplicates are dropped. An unreadable or unparsable snapshot
// aborts the load.
func LoadSnapshots(paths []string) (map[models.MetricKey]models.RuntimeMetric, error) {
	out := make(map[models.MetricKey]models.RuntimeMetric)
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read runtime snapshot: %w", err)
		}
		var payload any
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("parse runtime snapshot %s: %w", path, err)
		}
		var found []models.RuntimeMetric
		Collect(payload, path, &found)
		for _, m := range found {
			if _, ok := out[m.Key()]; !ok {
				out[m.Key()] = m
			}
		}
	}
	return out, nil
}

// DefaultSnapshotPaths lists the well-known runtime snapshot locations,
// relative to the given base directory and the user's home.
func DefaultSnapshotPaths(baseDir string) []string {
	paths := []string{
		filepath.Join(baseDir, "benchmarks", "results", "cliproxyapi-metrics-snapshot.json"),
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".cliproxyapi", "metrics_snapshot.json"),
			filepath.Join(home, ".cliproxyapi", "management", "metrics_snapshot.json"),
			filepath.Join(home, ".config", "cliproxyapi", "metrics_snapshot.json"),
			filepath.Join(home, "Library", "Application Support", "CLIProxyAPI", "metrics_snapshot.json"),
		)
	}
	return paths
}

// Discover returns the default snapshot paths that exist as regular files.
func Discover(baseDir string) []string {
	var found []string
	for _, path := range DefaultSnapshotPaths(baseDir) {
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			found = append(found, path)
		}
	}
	return found
}

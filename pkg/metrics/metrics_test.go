package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tokenledger/tokenledger/pkg/models"
)

func writeSnapshot(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSnapshotsBasic(t *testing.T) {
	path := writeSnapshot(t, "snap.json",
		`{"providers": [{"provider": "Claude", "model": "Claude-Sonnet-4-5", "success_rate": 95, "latency_ms": 1200}]}`)

	merged, err := LoadSnapshots([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	if len(merged) != 1 {
		t.Fatalf("expected 1 metric, got %d", len(merged))
	}

	m, ok := merged[models.MetricKey{Provider: "claude", Model: "claude-sonnet-4-5"}]
	if !ok {
		t.Fatalf("expected normalized key, got %v", merged)
	}
	if m.LatencyMs == nil || *m.LatencyMs != 1200 {
		t.Errorf("unexpected latency: %v", m.LatencyMs)
	}
	if m.QualityScore == nil || *m.QualityScore != 0.95 {
		t.Errorf("expected percent-scale quality normalized to 0.95, got %v", m.QualityScore)
	}
	if m.SourcePath != path {
		t.Errorf("unexpected source path: %q", m.SourcePath)
	}
}

func TestCollectNested(t *testing.T) {
	path := writeSnapshot(t, "nested.json", `{
		"generated_at": "2026-01-01",
		"report": {
			"by_provider": {
				"claude": {
					"models": [
						{"provider": "claude", "model": "claude-sonnet-4-5", "p50_latency_ms": 800},
						{"provider": "claude", "model": "claude-opus-4-1", "accuracy": 0.9}
					]
				}
			}
		}
	}`)

	merged, err := LoadSnapshots([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	if len(merged) != 2 {
		t.Fatalf("expected 2 metrics from nested objects, got %d", len(merged))
	}
	sonnet := merged[models.MetricKey{Provider: "claude", Model: "claude-sonnet-4-5"}]
	if sonnet.LatencyMs == nil || *sonnet.LatencyMs != 800 {
		t.Errorf("unexpected latency: %v", sonnet.LatencyMs)
	}
	opus := merged[models.MetricKey{Provider: "claude", Model: "claude-opus-4-1"}]
	if opus.QualityScore == nil || *opus.QualityScore != 0.9 {
		t.Errorf("unexpected quality: %v", opus.QualityScore)
	}
}

func TestCollectRejectsIncompleteNodes(t *testing.T) {
	path := writeSnapshot(t, "partial.json", `[
		{"provider": "claude", "latency_ms": 100},
		{"model": "claude-sonnet-4-5", "latency_ms": 100},
		{"provider": "claude", "model": "claude-sonnet-4-5"}
	]`)

	merged, err := LoadSnapshots([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	if len(merged) != 0 {
		t.Errorf("expected no metrics from incomplete nodes, got %v", merged)
	}
}

func TestQualityNormalization(t *testing.T) {
	cases := []struct {
		raw  string
		want *float64
	}{
		{"0.5", ptr(0.5)},
		{"1", ptr(1.0)},   // exactly 1.0 is already a fraction
		{"100", ptr(1.0)}, // percent scale
		{"87.5", ptr(0.875)},
		{"150", nil}, // out of range
		{"-1", nil},
	}
	for _, c := range cases {
		path := writeSnapshot(t, "q.json",
			`{"provider": "p", "model": "m", "latency_ms": 10, "quality_score": `+c.raw+`}`)
		merged, err := LoadSnapshots([]string{path})
		if err != nil {
			t.Fatal(err)
		}
		m := merged[models.MetricKey{Provider: "p", Model: "m"}]
		switch {
		case c.want == nil && m.QualityScore != nil:
			t.Errorf("quality %s: expected nil, got %v", c.raw, *m.QualityScore)
		case c.want != nil && (m.QualityScore == nil || *m.QualityScore != *c.want):
			t.Errorf("quality %s: expected %v, got %v", c.raw, *c.want, m.QualityScore)
		}
	}
}

func ptr(v float64) *float64 { return &v }

func TestLoadSnapshotsFirstSeenWins(t *testing.T) {
	first := writeSnapshot(t, "first.json",
		`{"provider": "claude", "model": "claude-sonnet-4-5", "latency_ms": 100}`)
	second := writeSnapshot(t, "second.json",
		`{"provider": "claude", "model": "claude-sonnet-4-5", "latency_ms": 999}`)

	merged, err := LoadSnapshots([]string{first, second})
	if err != nil {
		t.Fatal(err)
	}
	m := merged[models.MetricKey{Provider: "claude", Model: "claude-sonnet-4-5"}]
	if m.LatencyMs == nil || *m.LatencyMs != 100 {
		t.Errorf("expected first snapshot to win, got %v", m.LatencyMs)
	}
	if m.SourcePath != first {
		t.Errorf("unexpected source path: %q", m.SourcePath)
	}
}

func TestLoadSnapshotsBadJSON(t *testing.T) {
	path := writeSnapshot(t, "broken.json", `{not json`)
	if _, err := LoadSnapshots([]string{path}); err == nil {
		t.Fatal("expected parse error to abort the load")
	}
}

func TestCollectSortedKeyOrder(t *testing.T) {
	// Sibling objects carry the same (provider, model); the first key in
	// sorted order must win in the merged map.
	path := writeSnapshot(t, "order.json", `{
		"b": {"provider": "p", "model": "m", "latency_ms": 2},
		"a": {"provider": "p", "model": "m", "latency_ms": 1}
	}`)
	merged, err := LoadSnapshots([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	m := merged[models.MetricKey{Provider: "p", Model: "m"}]
	if m.LatencyMs == nil || *m.LatencyMs != 1 {
		t.Errorf("expected sorted-key traversal to keep latency 1, got %v", m.LatencyMs)
	}
}

func TestParseFloatStrings(t *testing.T) {
	path := writeSnapshot(t, "strings.json",
		`{"provider": "p", "model": "m", "latency_ms": "1,250.5"}`)
	merged, err := LoadSnapshots([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	m := merged[models.MetricKey{Provider: "p", Model: "m"}]
	if m.LatencyMs == nil || *m.LatencyMs != 1250.5 {
		t.Errorf("expected comma-separated string parsed, got %v", m.LatencyMs)
	}
}

func TestMetricsCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runtime.csv")
	lat := 1200.0
	q := 0.95
	merged := map[models.MetricKey]models.RuntimeMetric{
		{Provider: "claude", Model: "claude-sonnet-4-5"}: {
			Provider: "claude", Model: "claude-sonnet-4-5",
			LatencyMs: &lat, QualityScore: &q, SourcePath: "snap.json",
		},
		{Provider: "codex", Model: "gpt-5"}: {
			Provider: "codex", Model: "gpt-5", SourcePath: "snap.json",
		},
	}

	if err := WriteCSV(path, merged); err != nil {
		t.Fatal(err)
	}
	got, err := ReadCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 metrics, got %d", len(got))
	}
	m := got[models.MetricKey{Provider: "claude", Model: "claude-sonnet-4-5"}]
	if m.LatencyMs == nil || *m.LatencyMs != 1200 || m.QualityScore == nil || *m.QualityScore != 0.95 {
		t.Errorf("round trip mismatch: %+v", m)
	}
	empty := got[models.MetricKey{Provider: "codex", Model: "gpt-5"}]
	if empty.LatencyMs != nil || empty.QualityScore != nil {
		t.Errorf("expected empty optional fields to stay nil: %+v", empty)
	}
}

func TestDiscoverMissingBase(t *testing.T) {
	// Nothing exists under an empty base dir; Discover must not invent paths.
	found := Discover(t.TempDir())
	for _, p := range found {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("discovered non-existent path %q", p)
		}
	}
}

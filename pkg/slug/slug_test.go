package slug

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Claude-Sonnet-4-5", "claude-sonnet-4-5"},
		{"  GPT—5 (High) ", "gpt-5-high"},
		{"A/B", "a-b"},
		{"claude", "claude"},
		{"GLM_4.6", "glm-4-6"},
		{"---", ""},
		{"", ""},
		{"  ", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Claude-Sonnet-4-5", "GPT—5 (High)", "kimi-k2"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

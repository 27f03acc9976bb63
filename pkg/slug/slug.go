// Package slug turns arbitrary identifiers into canonical join keys.
package slug

import "strings"

// Normalize lower-cases text and collapses every run of characters outside
// [a-z0-9] into a single hyphen, with leading and trailing hyphens stripped.
// It is used for both provider and model identifiers so that catalog lookups
// are case and punctuation insensitive.
func Normalize(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))
	var b strings.Builder
	b.Grow(len(lower))
	pendingHyphen := false
	for _, r := range lower {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

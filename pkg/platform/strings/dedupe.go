// Package strings provides small string-slice utilities.
package strings

import "strings"

// DedupeAndTrim trims whitespace, drops empties, and removes duplicate
// entries while preserving first-seen order. Flag lists use it so a
// condition detected through several documents reads as one flag.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Package email derives display names from email addresses for
// accounts created without an explicit name.
package email

import (
	"strings"
	"unicode"
)

// DeriveDisplayName builds a readable name from the address's local
// part: "jordan.smith@example.com" becomes "Jordan Smith". Falls back
// to "Handler" when nothing usable remains.
func DeriveDisplayName(address string) string {
	local := address
	if at := strings.IndexByte(address, '@'); at >= 0 {
		local = address[:at]
	}

	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "Handler"
	}

	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Package entity defines the typed records persisted in the document store
// (Order, Product, User) and the decode rules that turn loosely shaped
// document field maps into them. Every optional field has an explicit
// fallback, resolved here once rather than at each render site.
package entity

import (
	"fmt"
	"strings"
)

// Fallback is the placeholder rendered for any missing field.
const Fallback = "N/A"

// Str extracts a string field, with "" for missing or non-string values.
func Str(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

// Num extracts a numeric field. Document bodies round-trip through JSON, so
// numbers may arrive as float64, int, or int64.
func Num(fields map[string]any, key string) (float64, bool) {
	switch v := fields[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// List extracts a slice field, nil when missing.
func List(fields map[string]any, key string) []any {
	if v, ok := fields[key].([]any); ok {
		return v
	}
	return nil
}

// Sub extracts a nested map field, nil when missing.
func Sub(fields map[string]any, key string) map[string]any {
	if v, ok := fields[key].(map[string]any); ok {
		return v
	}
	return nil
}

// OrFallback substitutes the N/A placeholder for empty strings.
func OrFallback(s string) string {
	if strings.TrimSpace(s) == "" {
		return Fallback
	}
	return s
}

// FormatVND renders an amount the way the storefront does: grouped
// thousands with dot separators and a trailing dong sign.
func FormatVND(amount float64) string {
	n := int64(amount)
	neg := n < 0
	if neg {
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ".")
	if neg {
		out = "-" + out
	}
	return out + " ₫"
}

// Package normalize provides helper functions for consistent string normalization
// across the application. Use these helpers instead of scattered strings.ToLower
// and strings.TrimSpace calls to ensure consistent behavior.
package normalize

import "strings"

// Name normalizes a folder or file name by trimming whitespace.
// Use text.Fold() for case-insensitive comparison keys.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// PathToken normalizes a relative path taken from a form or query string:
// whitespace is trimmed, backslashes become slashes, and leading or
// trailing slashes are dropped. Escape checks happen later in navstate.
func PathToken(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, `\`, "/"))
	return strings.Trim(s, "/")
}

// Kind normalizes an entry kind value by trimming whitespace and converting to lowercase.
func Kind(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam normalizes a query parameter by trimming whitespace.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

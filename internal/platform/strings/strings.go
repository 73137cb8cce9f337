// Package strings holds the fallback helpers the api error decoder and the
// cors defaults use
package strings

import std "strings"

// IfEmpty returns def when in has no elements
func IfEmpty[T any](in []T, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}

// FirstNonEmpty returns the first argument with non whitespace content, or ""
func FirstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if std.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

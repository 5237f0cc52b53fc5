// Package llm - util.go provides shared utilities for prompt assembly.
package llm

// TruncationMarker is appended whenever an input exceeds its character
// budget. Over-cap values are cut, never rejected.
const TruncationMarker = "...[truncated]"

// Truncate cuts s to at most max characters, appending the truncation
// marker when anything was removed. A non-positive max disables the cap.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + TruncationMarker
}

// Package extract isolates a JSON payload from unconstrained model
// output. Models wrap JSON in markdown fences, prepend prose, or append
// commentary; the caller wants just the object.
package extract

import (
	"regexp"
	"strings"
)

// fencePattern matches the first triple-backtick code block, with an
// optional language tag after the opening fence.
var fencePattern = regexp.MustCompile("(?s)```[a-zA-Z]*[ \t]*\r?\n?(.*?)\r?\n?[ \t]*```")

// JSON returns the best-effort JSON substring of raw.
//
// Fenced code blocks take priority over the brace-span heuristic so that
// stray braces in a natural-language preamble cannot shadow a real
// fenced payload. If raw already starts with "{" it is returned trimmed.
// With no fence and no leading brace, the span from the first "{" to the
// last "}" is taken. Otherwise the trimmed input comes back unchanged.
func JSON(raw string) string {
	trimmed := strings.TrimSpace(raw)

	if m := fencePattern.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}

	if strings.HasPrefix(trimmed, "{") {
		return trimmed
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start != -1 && end > start {
		return trimmed[start : end+1]
	}

	return trimmed
}

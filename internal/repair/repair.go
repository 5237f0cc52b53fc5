// Package repair recovers truncated JSON. A token-capped model response
// often stops mid-string, mid-literal, or mid-array; appending the
// minimum closing suffix makes the partial document parseable without
// discarding the content that did arrive.
package repair

import "strings"

// Container states while scanning. Objects cycle through
// key -> colon -> value -> next; arrays through value -> next.
const (
	objKey = iota
	objColon
	objValue
	objNext
	arrValue
	arrNext
)

type frame struct {
	object bool
	state  int
}

// JSON appends the minimum suffix needed to balance the input's open
// strings, literals, braces, and brackets. Valid JSON comes back
// unchanged.
//
// The scan tracks a stack of open containers with their parse state, an
// in-string flag, and a pending escape so an escaped quote does not
// toggle the string flag. At end of input an unterminated string is
// closed (after dropping any incomplete escape sequence), a dangling key
// or colon gets a null value, a partial true/false/null literal is
// completed, a trailing separator is dropped, and the open containers
// are closed innermost-first. Input is assumed valid up to the
// truncation point; malformed-but-complete JSON (missing commas, bad
// tokens) is not fixed here and remains a parse failure.
func JSON(s string) string {
	var stack []frame
	inString := false
	escape := false
	keyString := false
	tokenStart := -1 // start of an in-flight literal or number token

	top := func() *frame {
		if len(stack) == 0 {
			return nil
		}
		return &stack[len(stack)-1]
	}
	valueDone := func() {
		if f := top(); f != nil {
			if f.object {
				f.state = objNext
			} else {
				f.state = arrNext
			}
		}
	}
	endToken := func() {
		if tokenStart >= 0 {
			tokenStart = -1
			valueDone()
		}
	}

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			if escape {
				escape = false
				continue
			}
			switch ch {
			case '\\':
				escape = true
			case '"':
				inString = false
				if keyString {
					top().state = objColon
				} else {
					valueDone()
				}
			}
			continue
		}

		if isTokenChar(ch) {
			if tokenStart < 0 {
				tokenStart = i
			}
			continue
		}
		endToken()

		switch ch {
		case '"':
			inString = true
			f := top()
			keyString = f != nil && f.object && f.state == objKey
		case '{':
			stack = append(stack, frame{object: true, state: objKey})
		case '[':
			stack = append(stack, frame{object: false, state: arrValue})
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			valueDone()
		case ':':
			if f := top(); f != nil && f.object {
				f.state = objValue
			}
		case ',':
			if f := top(); f != nil {
				if f.object {
					f.state = objKey
				} else {
					f.state = arrValue
				}
			}
		}
	}

	out := s

	if inString {
		out = closeString(out, escape)
		if keyString {
			top().state = objColon
		} else {
			valueDone()
		}
	} else if tokenStart >= 0 {
		token := s[tokenStart:]
		fixed := completeToken(token)
		out = out[:tokenStart] + fixed
		if fixed != "" {
			valueDone()
		}
	}

	// A dangling key or colon needs a value; a dangling separator has to
	// go so the container can close.
	if f := top(); f != nil {
		trimmed := strings.TrimRight(out, " \t\r\n")
		switch {
		case f.object && f.state == objColon:
			out = trimmed + ":null"
		case f.object && f.state == objValue && !endsWithValue(trimmed):
			out = trimmed + "null"
		case f.object && f.state == objKey && strings.HasSuffix(trimmed, ","):
			out = trimmed[:len(trimmed)-1]
		case !f.object && f.state == arrValue && strings.HasSuffix(trimmed, ","):
			out = trimmed[:len(trimmed)-1]
		}
	}

	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].object {
			out += "}"
		} else {
			out += "]"
		}
	}
	return out
}

func isTokenChar(ch byte) bool {
	return ch >= '0' && ch <= '9' ||
		ch >= 'a' && ch <= 'z' ||
		ch >= 'A' && ch <= 'Z' ||
		ch == '.' || ch == '-' || ch == '+'
}

// closeString terminates an unterminated string literal, dropping any
// escape sequence the truncation cut in half (a lone backslash or a
// partial \uXXXX).
func closeString(s string, pendingEscape bool) string {
	if pendingEscape {
		s = s[:len(s)-1]
	} else if i := partialUnicodeEscape(s); i >= 0 {
		s = s[:i]
	}
	return s + `"`
}

// partialUnicodeEscape returns the index of a trailing incomplete \uXXXX
// escape, or -1 if the string ends cleanly.
func partialUnicodeEscape(s string) int {
	hex := 0
	i := len(s)
	for i > 0 && hex < 4 && isHexDigit(s[i-1]) {
		i--
		hex++
	}
	if hex == 4 || i < 2 || s[i-1] != 'u' || s[i-2] != '\\' {
		return -1
	}
	// The backslash must itself be unescaped.
	backslashes := 0
	for j := i - 2; j >= 0 && s[j] == '\\'; j-- {
		backslashes++
	}
	if backslashes%2 == 0 {
		return -1
	}
	return i - 2
}

func isHexDigit(ch byte) bool {
	return ch >= '0' && ch <= '9' || ch >= 'a' && ch <= 'f' || ch >= 'A' && ch <= 'F'
}

// completeToken fixes a literal or number the truncation cut short.
// Partial keyword literals are completed; numbers lose any trailing
// characters that cannot end one. Returns "" when nothing valid remains.
func completeToken(token string) string {
	for _, lit := range []string{"true", "false", "null"} {
		if strings.HasPrefix(lit, token) {
			return lit
		}
	}
	for len(token) > 0 && !isDigit(token[len(token)-1]) {
		token = token[:len(token)-1]
	}
	return token
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// endsWithValue reports whether s ends in something that can close an
// object member value (so no null needs to be synthesized).
func endsWithValue(s string) bool {
	if s == "" {
		return false
	}
	last := s[len(s)-1]
	return last == '"' || last == '}' || last == ']' || isDigit(last) ||
		strings.HasSuffix(s, "true") || strings.HasSuffix(s, "false") || strings.HasSuffix(s, "null")
}

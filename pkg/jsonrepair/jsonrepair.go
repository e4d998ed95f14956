// Package jsonrepair extracts structured data from model output that is
// expected to be JSON but may be wrapped in markdown fences or truncated by
// output-length limits. It never panics on malformed input: callers get either
// a decoded value or a *ParseError.
package jsonrepair

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseError reports that no parsable JSON value could be recovered
type ParseError struct {
	Raw string
	Err error
}

// Error implements error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("json extraction failed: %v", e.Err)
}

// Unwrap exposes the underlying parse error
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Decode extracts the first JSON value from raw and unmarshals it into v.
// Attempts, in order: direct parse, brace-scan substring parse, and repair of
// a truncated substring (closing a dangling string and balancing brackets).
func Decode(raw string, v interface{}) error {
	s := stripFences(raw)
	if s == "" {
		return &ParseError{Raw: raw, Err: fmt.Errorf("empty input")}
	}

	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return &ParseError{Raw: raw, Err: fmt.Errorf("no JSON value found")}
	}

	candidate, state := scanValue(s[start:])
	if err := json.Unmarshal([]byte(candidate), v); err == nil {
		return nil
	}

	repaired := repair(candidate, state)
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return &ParseError{Raw: raw, Err: err}
	}
	return nil
}

// Extract returns the recovered JSON text without binding it to a type
func Extract(raw string) (string, error) {
	var v json.RawMessage
	if err := Decode(raw, &v); err != nil {
		return "", err
	}
	return string(v), nil
}

// stripFences removes leading/trailing markdown code-fence markers
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
	} else {
		return content
	}
	if idx := strings.LastIndex(content, "```"); idx != -1 {
		content = content[:idx]
	}
	return strings.TrimSpace(content)
}

// scanState captures where a truncated scan stopped
type scanState struct {
	openers  []byte // unclosed brackets, outermost first
	inString bool
	// lastWasKey reports that the most recent complete token is an object key
	// still waiting for its value (or that a truncated string is in key position)
	lastWasKey bool
}

// scanValue walks s from its first bracket and returns the substring covering
// the first complete JSON value, or the whole remainder when input ends before
// the value closes. The scanner tracks string state explicitly, so escaped
// quotes do not confuse it; this is the robust form of the odd-quote-count
// heuristic for detecting an unterminated string.
func scanValue(s string) (string, scanState) {
	var st scanState
	afterColon := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if st.inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				st.inString = false
			}
			continue
		}

		switch c {
		case '"':
			st.inString = true
			inObject := len(st.openers) > 0 && st.openers[len(st.openers)-1] == '{'
			st.lastWasKey = inObject && !afterColon
		case '{', '[':
			st.openers = append(st.openers, c)
			afterColon = false
			st.lastWasKey = false
		case '}', ']':
			if len(st.openers) > 0 {
				st.openers = st.openers[:len(st.openers)-1]
			}
			afterColon = false
			st.lastWasKey = false
			if len(st.openers) == 0 {
				return s[:i+1], st
			}
		case ':':
			afterColon = true
			st.lastWasKey = false
		case ',':
			afterColon = false
			st.lastWasKey = false
		case ' ', '\t', '\n', '\r':
			// insignificant
		default:
			st.lastWasKey = false
		}
	}
	return s, st
}

// repair completes a truncated JSON fragment: closes a dangling string,
// supplies null for a dangling key or colon, drops a trailing comma, then
// appends the closing brackets implied by open-bracket depth. Best effort:
// truncation mid-escape or mid-number exponent can still defeat it.
func repair(fragment string, st scanState) string {
	var sb strings.Builder
	sb.WriteString(fragment)

	if st.inString {
		sb.WriteByte('"')
		if st.lastWasKey {
			sb.WriteString(": null")
		}
	} else {
		trimmed := strings.TrimRight(sb.String(), " \t\n\r")
		sb.Reset()
		switch {
		case strings.HasSuffix(trimmed, ","):
			sb.WriteString(strings.TrimRight(trimmed[:len(trimmed)-1], " \t\n\r"))
		case strings.HasSuffix(trimmed, ":"):
			sb.WriteString(trimmed)
			sb.WriteString(" null")
		case st.lastWasKey:
			sb.WriteString(trimmed)
			sb.WriteString(": null")
		default:
			sb.WriteString(trimmed)
		}
	}

	for i := len(st.openers) - 1; i >= 0; i-- {
		if st.openers[i] == '{' {
			sb.WriteByte('}')
		} else {
			sb.WriteByte(']')
		}
	}
	return sb.String()
}

// Package transcript converts stored conversation transcripts into a
// canonical ordered list of role/message turns.
//
// Transcripts reach the database in several shapes: a JSON array of turns,
// a JSON string that encodes such an array, or free text with an array
// embedded somewhere inside it. Parse accepts all three and never fails
// loudly; an unusable transcript is reported as nil.
package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Roles permitted after cleaning
const (
	RoleAgent = "agent"
	RoleUser  = "user"
)

// Entry is one conversational turn
type Entry struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

var markupPattern = regexp.MustCompile(`<[^>]*>`)

// Parse decodes a stored transcript value. It returns nil when raw does not
// hold an array of turns in any accepted shape.
func Parse(raw []byte) []Entry {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	switch raw[0] {
	case '[':
		entries, ok := decodeArray(raw)
		if !ok {
			return nil
		}
		return entries
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		return ParseString(s)
	default:
		return nil
	}
}

// ParseString decodes a transcript held as text: either the JSON encoding of
// an array, or text containing one balanced array somewhere inside it.
func ParseString(s string) []Entry {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if entries, ok := decodeArray([]byte(s)); ok {
		return entries
	}

	span, ok := firstArraySpan(s)
	if !ok {
		return nil
	}
	entries, ok := decodeArray([]byte(span))
	if !ok {
		return nil
	}
	return entries
}

// decodeArray decodes a JSON array element by element. Elements that are not
// objects, or whose role/message are not strings, become zero-value entries
// so callers can filter them without losing the rest of the array.
func decodeArray(raw []byte) ([]Entry, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil {
			entries = append(entries, Entry{})
			continue
		}
		entries = append(entries, Entry{
			Role:    stringField(fields, "role"),
			Message: stringField(fields, "message"),
		})
	}
	return entries, true
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// firstArraySpan returns the first balanced [...] span of s, counting bracket
// depth outside of JSON string literals.
func firstArraySpan(s string) (string, bool) {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// Clean strips markup from messages, trims whitespace, and drops entries whose
// role is not agent/user or whose message ends up empty. Used for display.
func Clean(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	cleaned := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Role != RoleAgent && e.Role != RoleUser {
			continue
		}
		msg := strings.TrimSpace(markupPattern.ReplaceAllString(e.Message, ""))
		if msg == "" {
			continue
		}
		cleaned = append(cleaned, Entry{Role: e.Role, Message: msg})
	}
	return cleaned
}

// Flatten renders entries as "ROLE: message" blocks separated by blank lines,
// skipping entries without a role or a non-blank message. Used for scoring.
func Flatten(entries []Entry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Role == "" || strings.TrimSpace(e.Message) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", strings.ToUpper(e.Role), e.Message))
	}
	return strings.Join(parts, "\n\n")
}

// HasEntries reports whether raw is a native, non-empty JSON array
func HasEntries(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return false
	}
	return len(items) > 0
}

// Shape describes a stored transcript value for diagnostics
type Shape struct {
	Type    string
	IsArray bool
	Length  int // -1 when the value has no length
}

// Describe reports the JSON type and size of raw
func Describe(raw []byte) Shape {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Shape{Type: "null", Length: -1}
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return Shape{Type: "invalid", Length: -1}
		}
		return Shape{Type: "array", IsArray: true, Length: len(items)}
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Shape{Type: "invalid", Length: -1}
		}
		return Shape{Type: "string", Length: len(s)}
	case '{':
		return Shape{Type: "object", Length: -1}
	case 't', 'f':
		return Shape{Type: "boolean", Length: -1}
	default:
		return Shape{Type: "number", Length: -1}
	}
}

func (s Shape) String() string {
	length := "N/A"
	if s.Length >= 0 {
		length = strconv.Itoa(s.Length)
	}
	return fmt.Sprintf("Transcript data type: %s, is array: %t, length: %s", s.Type, s.IsArray, length)
}

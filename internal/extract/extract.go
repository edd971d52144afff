// Package extract recovers JSON values from free-form model output.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

// fencePattern matches a fenced code block with an optional json tag.
// The body match is non-greedy so consecutive blocks stay separate.
var fencePattern = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")

// maxScanStarts bounds the balanced-brace scan to the first opening braces
// so brace-heavy output stays linear in its length.
const maxScanStarts = 64

// Extract returns the first JSON value it can recover from text.
//
// Attempts run in order and the first success wins:
//  1. each fenced code block, in order of appearance
//  2. the whole text
//  3. the span from the first '{' to the last '}'
//  4. a balanced-brace scan from each of the first maxScanStarts '{'
//
// The boolean is false when nothing parses.
func Extract(text string) (any, bool) {
	for _, match := range fencePattern.FindAllStringSubmatch(text, -1) {
		if v, ok := decode(strings.TrimSpace(match[1])); ok {
			return v, true
		}
	}

	if v, ok := decode(text); ok {
		return v, true
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, false
	}
	if v, ok := decode(text[start : end+1]); ok {
		return v, true
	}

	for i, tried := start, 0; i < len(text) && tried < maxScanStarts; i++ {
		if text[i] != '{' {
			continue
		}
		tried++
		span, found := balancedObject(text[i:])
		if !found {
			continue
		}
		if v, ok := decode(span); ok {
			return v, true
		}
	}

	return nil, false
}

// ExtractObject is Extract restricted to JSON objects.
func ExtractObject(text string) (map[string]any, bool) {
	v, ok := Extract(text)
	if !ok {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	return obj, ok
}

func decode(s string) (any, bool) {
	if s == "" {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, true
}

// balancedObject returns the shortest prefix of s that closes the object
// opened at s[0]. Braces inside string literals are ignored.
func balancedObject(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}

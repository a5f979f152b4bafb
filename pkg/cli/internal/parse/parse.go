// Package parse provides string parsing utilities for CLI commands.
package parse

import (
	"encoding/json"
	"strings"
)

// KeyValue parses a "key:value" or "key=value" string.
// If delimiters are provided, uses the first one found; otherwise defaults to ':'.
// Returns the key, value, and a boolean indicating success.
func KeyValue(s string, delimiters ...rune) (key, value string, ok bool) {
	if len(delimiters) == 0 {
		delimiters = []rune{':'}
	}

	for i, c := range s {
		for _, d := range delimiters {
			if c == d {
				return s[:i], s[i+1:], true
			}
		}
	}
	return "", "", false
}

// Headers parses a slice of "key:value" strings into a map.
// Keys and values are trimmed; entries without a delimiter are dropped.
func Headers(headers []string) map[string]string {
	result := make(map[string]string)
	for _, h := range headers {
		if key, value, ok := KeyValue(h, ':'); ok && strings.TrimSpace(key) != "" {
			result[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}
	return result
}

// Value decodes s as JSON when it is a JSON number, boolean, null, array or
// object, and returns it unchanged otherwise. Quoted JSON strings are unquoted.
func Value(s string) interface{} {
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}

package helpers

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Payload The result object a worker reports on stdout. Its keys are owned by
// the worker, nothing here validates them.
type Payload map[string]interface{}

// ParseFailure Worker output could not be resolved to a JSON object, not even
// by scanning for the outermost braces.
type ParseFailure struct {
	Reason string
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("invalid worker output: %s", e.Reason)
}

// ParsePayload extracts the result object from raw worker output.
//
// Empty output is an empty payload. Otherwise the trimmed text must be a JSON
// object, or, when other text surrounds it, the span from the first '{' to
// the last '}' must be. A diagnostic line containing braces around the real
// payload defeats the fallback; that surfaces as a ParseFailure.
//
// The JSON literal null parses to a nil Payload without error.
func ParsePayload(raw string) (Payload, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return Payload{}, nil
	}

	var payload Payload
	strictErr := json.Unmarshal([]byte(cleaned), &payload)
	if strictErr == nil {
		return payload, nil
	}

	if candidate, ok := outermostObject(raw); ok {
		var recovered Payload
		if err := json.Unmarshal([]byte(candidate), &recovered); err == nil {
			return recovered, nil
		}
	}

	return nil, &ParseFailure{Reason: strictErr.Error()}
}

func outermostObject(text string) (string, bool) {
	first := strings.IndexByte(text, '{')
	last := strings.LastIndexByte(text, '}')
	if first < 0 || last < 0 || last <= first {
		return "", false
	}
	return text[first : last+1], true
}

// Truncate Cuts s after limit characters, never inside a UTF-8 sequence.
func Truncate(s string, limit int) string {
	s = strings.ToValidUTF8(s, "�")
	if limit <= 0 {
		return s
	}

	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}

	return s
}

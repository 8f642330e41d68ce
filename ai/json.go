package ai

import (
	"encoding/json"
	"strings"
)

// DecodeJSON parses a model response into v, tolerating markdown code
// fences and leading prose around the JSON object. A payload that still
// fails to parse surfaces the json error, which the retry policy treats as
// retryable.
func DecodeJSON(content string, v any) error {
	trimmed := strings.TrimSpace(content)

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	if err := json.Unmarshal([]byte(trimmed), v); err == nil {
		return nil
	}

	// Fall back to the outermost object in case the model added prose.
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		return json.Unmarshal([]byte(trimmed[start:end+1]), v)
	}
	return json.Unmarshal([]byte(trimmed), v)
}

// Truncate clips s to at most n runes, used to bound prompt sizes.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripFences removes markdown code fences models like to wrap JSON in,
// including an optional language tag on the opening fence.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	// Drop a language tag like "json" on the opening fence line
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		first := strings.TrimSpace(text[:idx])
		if len(first) <= 10 && !strings.ContainsAny(first, "{[") {
			text = text[idx+1:]
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// DecodeJSON strips fences and unmarshals into out. The error distinguishes
// "unparseable" so callers can degrade instead of failing the run.
func DecodeJSON(text string, out any) error {
	cleaned := StripFences(text)
	if cleaned == "" {
		return fmt.Errorf("empty response")
	}
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("unparseable JSON response: %w", err)
	}
	return nil
}

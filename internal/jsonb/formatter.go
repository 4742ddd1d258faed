package jsonb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Format formats a JSON value as a pretty-printed JSON string. value may be
// a *Value, JSON text as a string or []byte.
func Format(value interface{}) (string, error) {
	compact, err := Compact(value)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(compact), "", "  "); err != nil {
		return "", fmt.Errorf("failed to indent JSON: %w", err)
	}
	return buf.String(), nil
}

// Compact formats a JSON value as canonical single-line JSON
func Compact(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "null", nil
	case *Value:
		return v.String(), nil
	case string:
		parsed, err := Parse(v)
		if err != nil {
			return "", err
		}
		return parsed.String(), nil
	case []byte:
		parsed, err := Parse(string(v))
		if err != nil {
			return "", err
		}
		return parsed.String(), nil
	default:
		return "", fmt.Errorf("failed to format: unsupported type %T", value)
	}
}

// Truncate truncates a JSON string for single-line display
func Truncate(jsonStr string, maxLen int) string {
	if len(jsonStr) <= maxLen {
		return jsonStr
	}

	truncated := jsonStr[:maxLen-3]

	// Prefer cutting at a structural boundary
	lastGood := strings.LastIndexAny(truncated, " ,{}[]")
	if lastGood > maxLen/2 {
		truncated = truncated[:lastGood]
	}

	return truncated + "..."
}

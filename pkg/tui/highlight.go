package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// bodyText returns the response body as copyable text: JSON values are
// indented, strings are returned as-is.
func bodyText(data any) string {
	switch v := data.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		pretty, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(pretty)
	}
}

// HighlightJSON takes a JSON string, validates it, and returns a syntax-highlighted string.
// If the input is not valid JSON or renderer is nil, it returns the original string.
func HighlightJSON(input string, renderer *glamour.TermRenderer) string {
	var js any
	if renderer == nil || json.Unmarshal([]byte(input), &js) != nil {
		return input
	}

	var sb strings.Builder
	sb.WriteString("```json\n")

	// Re-encode so minified bodies are readable
	pretty, err := json.MarshalIndent(js, "", "  ")
	if err == nil {
		sb.Write(pretty)
	} else {
		sb.WriteString(input)
	}

	sb.WriteString("\n```")

	out, err := renderer.Render(sb.String())
	if err != nil {
		return input
	}
	return strings.TrimSpace(out)
}

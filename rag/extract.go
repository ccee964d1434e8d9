package rag

import (
	"strings"

	"github.com/tidwall/gjson"
)

// ContextSeparator joins grounding fragments.
const ContextSeparator = "\n\n"

// ExtractText pulls the passage text out of a match's metadata. Two shapes
// are understood:
//
//   - NodeContentKey holding a serialized node (or an already decoded one)
//     whose "text" field is the passage
//   - a plain "text" string field
//
// It reports false when neither yields a non-empty string.
func ExtractText(metadata map[string]any) (string, bool) {
	if metadata == nil {
		return "", false
	}

	switch node := metadata[NodeContentKey].(type) {
	case string:
		if gjson.Valid(node) {
			if text := gjson.Get(node, "text"); text.Type == gjson.String && text.Str != "" {
				return text.Str, true
			}
		}
	case map[string]any:
		if text, ok := node["text"].(string); ok && text != "" {
			return text, true
		}
	}

	if text, ok := metadata["text"].(string); ok && text != "" {
		return text, true
	}
	return "", false
}

// BuildContext extracts every match in rank order and joins the non-empty
// fragments. A match whose metadata cannot be read contributes nothing.
func BuildContext(matches []Match) string {
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		if text, ok := ExtractText(m.Metadata); ok {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, ContextSeparator)
}

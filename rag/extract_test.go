package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func node(text string) map[string]any {
	return map[string]any{NodeContentKey: NodeContent("id", text)}
}

func TestExtractText_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]any
		want     string
		ok       bool
	}{
		{"serialized node", node("Go engineer"), "Go engineer", true},
		{"decoded node", map[string]any{NodeContentKey: map[string]any{"text": "decoded"}}, "decoded", true},
		{"plain text field", map[string]any{"text": "plain"}, "plain", true},
		{"node wins over plain", map[string]any{NodeContentKey: `{"text":"node"}`, "text": "plain"}, "node", true},
		{"broken node falls back", map[string]any{NodeContentKey: `{"text":`, "text": "plain"}, "plain", true},
		{"broken node alone", map[string]any{NodeContentKey: `{not json`}, "", false},
		{"node without text", map[string]any{NodeContentKey: `{"id_":"x"}`}, "", false},
		{"non-string text", map[string]any{NodeContentKey: `{"text":42}`}, "", false},
		{"nil metadata", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractText(tt.metadata)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildContext_JoinsInRankOrder(t *testing.T) {
	matches := []Match{
		{ID: "1", Metadata: node("A")},
		{ID: "2", Metadata: node("B")},
		{ID: "3", Metadata: node("C")},
	}
	assert.Equal(t, "A\n\nB\n\nC", BuildContext(matches))
}

func TestBuildContext_DropsUnreadableMatch(t *testing.T) {
	matches := []Match{
		{ID: "1", Metadata: node("A")},
		{ID: "2", Metadata: map[string]any{NodeContentKey: "{oops"}},
		{ID: "3", Metadata: node("C")},
	}
	assert.Equal(t, "A\n\nC", BuildContext(matches))
}

func TestBuildContext_Empty(t *testing.T) {
	assert.Equal(t, "", BuildContext(nil))
	assert.Equal(t, "", BuildContext([]Match{{ID: "1"}, {ID: "2", Metadata: map[string]any{}}}))
}

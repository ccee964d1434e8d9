package rag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIEmbedder_Embed(t *testing.T) {
	var gotModel, gotInput string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/embeddings") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel, _ = body["model"].(string)
		gotInput, _ = body["input"].(string)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  gotModel,
			"data": []map[string]any{
				{"object": "embedding", "index": 0, "embedding": []float64{0.25, -0.5, 1}},
			},
			"usage": map[string]any{"prompt_tokens": 3, "total_tokens": 3},
		})
	}))
	defer server.Close()

	e := NewOpenAIEmbedder(NewOpenAIClient("sk-test", server.URL), "")
	vec, err := e.Embed(context.Background(), "what does he do?")

	require.NoError(t, err)
	assert.Equal(t, Embedding{0.25, -0.5, 1}, vec)
	assert.Equal(t, DefaultEmbeddingModel, gotModel)
	assert.Equal(t, "what does he do?", gotInput)
}

func TestOpenAIEmbedder_ServerError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	e := NewOpenAIEmbedder(NewOpenAIClient("sk-test", server.URL), "")
	_, err := e.Embed(context.Background(), "hi")

	require.Error(t, err)
	assert.Equal(t, 1, calls, "client must not retry")
}

func TestOpenAIGenerator_Generate(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "gpt-4",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": "He writes Go."},
			}},
		})
	}))
	defer server.Close()

	g := NewOpenAIGenerator(NewOpenAIClient("sk-test", server.URL), "")
	out, err := g.Generate(context.Background(), "system text", "user text")

	require.NoError(t, err)
	assert.Equal(t, "He writes Go.", out)
	assert.Equal(t, "gpt-4", body["model"])
	assert.EqualValues(t, 0, body["temperature"])
	assert.EqualValues(t, 500, body["max_tokens"])

	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
	assert.Equal(t, "user text", msgs[1].(map[string]any)["content"])
}

func TestOpenAIGenerator_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"gpt-4","choices":[]}`))
	}))
	defer server.Close()

	g := NewOpenAIGenerator(NewOpenAIClient("sk-test", server.URL), "")
	_, err := g.Generate(context.Background(), "s", "u")
	assert.Error(t, err)
}

func TestSimpleEmbedder_Deterministic(t *testing.T) {
	e := NewSimpleEmbedder()
	ctx := context.Background()

	v1, _ := e.Embed(ctx, "Go is great for AI.")
	v2, _ := e.Embed(ctx, "Go is great for AI.")
	v3, _ := e.Embed(ctx, "a much longer string")

	require.NotEmpty(t, v1)
	assert.Equal(t, v1, v2)
	assert.NotEqual(t, v1, v3)
}

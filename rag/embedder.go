package rag

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
)

// DefaultEmbeddingModel matches the model the CV index was built with.
const DefaultEmbeddingModel = "text-embedding-ada-002"

// Embedder is an interface so later you can swap implementation
type Embedder interface {
	Embed(ctx context.Context, text string) (Embedding, error)
}

// Simple deterministic fake embedder based on rune counts. It lets the
// memory and chromem backends run offline.
type SimpleEmbedder struct{}

func NewSimpleEmbedder() *SimpleEmbedder {
	return &SimpleEmbedder{}
}

func (e *SimpleEmbedder) Embed(ctx context.Context, text string) (Embedding, error) {
	// fake 4D vector: length, vowels, consonants, spaces
	var length, vowels, consonants, spaces float32
	for _, r := range text {
		length++
		switch {
		case r == 'a' || r == 'e' || r == 'i' || r == 'o' || r == 'u' ||
			r == 'A' || r == 'E' || r == 'I' || r == 'O' || r == 'U':
			vowels++
		case r == ' ':
			spaces++
		default:
			consonants++
		}
	}
	return Embedding{length, vowels, consonants, spaces}, nil
}

// OpenAIEmbedder calls the OpenAI embeddings endpoint.
type OpenAIEmbedder struct {
	client openai.Client
	model  string
}

func NewOpenAIEmbedder(client openai.Client, model string) *OpenAIEmbedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &OpenAIEmbedder{client: client, model: model}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) (Embedding, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("openai returned no embedding")
	}

	vec := make(Embedding, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

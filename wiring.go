package main

import (
	"context"
	"fmt"

	"portfolio-api/config"
	"portfolio-api/rag"
)

func newEmbedder(cfg *config.Config) rag.Embedder {
	if cfg.OpenAI.Embedder == "simple" {
		return rag.NewSimpleEmbedder()
	}
	client := rag.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
	return rag.NewOpenAIEmbedder(client, cfg.OpenAI.EmbeddingModel)
}

func newIndex(ctx context.Context, cfg *config.Config) (rag.Index, error) {
	switch cfg.Vector.Backend {
	case config.BackendPinecone:
		return rag.NewPineconeIndex(ctx, cfg.Pinecone.APIKey, rag.IndexName)
	case config.BackendQdrant:
		return rag.NewQdrantIndex(cfg.Qdrant.Host, cfg.Qdrant.Port, cfg.Qdrant.APIKey, rag.IndexName)
	case config.BackendChromem:
		return rag.NewChromemIndex(cfg.Chromem.Path, rag.IndexName)
	case config.BackendMemory:
		return rag.NewMemoryIndex(), nil
	default:
		return nil, fmt.Errorf("unknown vector backend %q", cfg.Vector.Backend)
	}
}

// newChatService builds the provider clients for the chat pipeline. The
// returned close func releases the index connection.
func newChatService(ctx context.Context, cfg *config.Config) (*rag.ChatService, func() error, error) {
	if missing := cfg.MissingChatCredentials(); len(missing) > 0 {
		return nil, nil, fmt.Errorf("%s", missingVarsMessage(missing))
	}

	index, err := newIndex(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	client := rag.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
	svc := rag.NewChatService(
		newEmbedder(cfg),
		index,
		rag.NewOpenAIGenerator(client, cfg.OpenAI.ChatModel),
	)
	return svc, index.Close, nil
}

package rag

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"
)

// ChromemIndex is an embedded vector store for running the site without a
// hosted index. With an empty path it lives only in memory.
type ChromemIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
}

func NewChromemIndex(path, collectionName string) (*ChromemIndex, error) {
	var db *chromem.DB
	if path == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("failed to open chromem database: %w", err)
		}
	}

	// Embeddings always come from our Embedder, so no embedding func.
	c, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}
	return &ChromemIndex{db: db, collection: c}, nil
}

func (m *ChromemIndex) Query(ctx context.Context, vector Embedding, topK int) ([]Match, error) {
	// chromem rejects nResults larger than the collection.
	if n := m.collection.Count(); topK > n {
		topK = n
	}
	if topK == 0 {
		return nil, nil
	}

	results, err := m.collection.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	matches := make([]Match, len(results))
	for i, r := range results {
		md := make(map[string]any, len(r.Metadata)+1)
		for k, v := range r.Metadata {
			md[k] = v
		}
		if _, ok := md[NodeContentKey]; !ok {
			md["text"] = r.Content
		}
		matches[i] = Match{ID: r.ID, Score: r.Similarity, Metadata: md}
	}
	return matches, nil
}

func (m *ChromemIndex) Upsert(ctx context.Context, chunks []Chunk) error {
	docs := make([]chromem.Document, len(chunks))
	for i, ch := range chunks {
		md := make(map[string]string, len(ch.Metadata))
		for k, v := range ch.Metadata {
			if s, ok := v.(string); ok {
				md[k] = s
			}
		}
		docs[i] = chromem.Document{
			ID:        ch.ID,
			Content:   ch.Content,
			Metadata:  md,
			Embedding: ch.Embedding,
		}
	}
	if err := m.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

func (m *ChromemIndex) Close() error { return nil }

package rag

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Ingestor seeds an Index with the chunks of a document, storing each chunk
// in the shape the chat path reads back.
type Ingestor struct {
	embedder Embedder
	index    Index
}

func NewIngestor(embedder Embedder, index Index) *Ingestor {
	return &Ingestor{embedder: embedder, index: index}
}

// Ingest chunks, embeds and upserts text. It returns the number of chunks
// written.
func (in *Ingestor) Ingest(ctx context.Context, source, text string) (int, error) {
	chunks := ChunkText(text, source)
	if len(chunks) == 0 {
		return 0, nil
	}

	for i := range chunks {
		vec, err := in.embedder.Embed(ctx, chunks[i].Content)
		if err != nil {
			return 0, fmt.Errorf("embedding chunk %d of %s: %w", i+1, source, err)
		}
		chunks[i].Embedding = vec
	}

	if err := in.index.Upsert(ctx, chunks); err != nil {
		return 0, fmt.Errorf("upserting %d chunks: %w", len(chunks), err)
	}

	zerolog.Ctx(ctx).Info().Str("source", source).Int("chunks", len(chunks)).Msg("ingested document")
	return len(chunks), nil
}

// IngestFile loads path and ingests it under source, or under path when
// source is empty.
func (in *Ingestor) IngestFile(ctx context.Context, path, source string) (int, error) {
	text, err := LoadDocument(path)
	if err != nil {
		return 0, err
	}
	if source == "" {
		source = path
	}
	return in.Ingest(ctx, source, text)
}

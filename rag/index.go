package rag

import "context"

// IndexName is the Pinecone index, and the Qdrant/chromem collection, that
// holds the CV passages.
const IndexName = "cv-data-2"

// TopK is how many passages ground each answer.
const TopK = 3

// Index is a vector store the chat path can query and the ingest command can
// seed.
type Index interface {
	// Query returns up to topK matches ranked by similarity, metadata included.
	Query(ctx context.Context, vector Embedding, topK int) ([]Match, error)
	// Upsert inserts or replaces chunks by ID.
	Upsert(ctx context.Context, chunks []Chunk) error
	// Close releases connections.
	Close() error
}

var (
	_ Index = (*MemoryIndex)(nil)
	_ Index = (*PineconeIndex)(nil)
	_ Index = (*QdrantIndex)(nil)
	_ Index = (*ChromemIndex)(nil)
)

package rag

// Embedding is a dense vector as the vector backends store it.
type Embedding []float32

// Chunk of a document
type Chunk struct {
	ID        string
	Content   string
	Source    string // filename or doc ID
	Embedding Embedding
	Metadata  map[string]any
}

// Match is one ranked result from a vector index query. Metadata is kept
// untyped because each backend, and each ingestion tool, shapes it
// differently.
type Match struct {
	ID       string
	Score    float32
	Metadata map[string]any
}

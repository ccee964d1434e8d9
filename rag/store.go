package rag

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryIndex keeps chunks in process and ranks them by cosine similarity.
// It backs the "memory" vector backend and the tests.
type MemoryIndex struct {
	mu     sync.RWMutex
	chunks []Chunk
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		chunks: []Chunk{},
	}
}

func (s *MemoryIndex) Upsert(ctx context.Context, chunks []Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range chunks {
		replaced := false
		for i := range s.chunks {
			if s.chunks[i].ID == ch.ID {
				s.chunks[i] = ch
				replaced = true
				break
			}
		}
		if !replaced {
			s.chunks = append(s.chunks, ch)
		}
	}
	return nil
}

// naive cosine similarity
func cosine(a, b Embedding) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func (s *MemoryIndex) Query(ctx context.Context, vector Embedding, topK int) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]Match, 0, len(s.chunks))
	for _, ch := range s.chunks {
		matches = append(matches, Match{
			ID:       ch.ID,
			Score:    float32(cosine(vector, ch.Embedding)),
			Metadata: ch.Metadata,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if topK > len(matches) {
		topK = len(matches)
	}
	return matches[:topK], nil
}

func (s *MemoryIndex) Close() error { return nil }

func (s *MemoryIndex) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

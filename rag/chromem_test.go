package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChromemIndex_EmptyCollection(t *testing.T) {
	idx, err := NewChromemIndex("", IndexName)
	require.NoError(t, err)

	matches, err := idx.Query(context.Background(), Embedding{1, 0}, TopK)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestChromemIndex_UpsertAndQuery(t *testing.T) {
	ctx := context.Background()
	idx, err := NewChromemIndex("", IndexName)
	require.NoError(t, err)
	defer idx.Close()

	n, err := NewIngestor(NewSimpleEmbedder(), idx).Ingest(ctx, "cv.txt",
		"Go and Kubernetes. Payments at scale. Team lead. Open source maintainer.")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	vec, _ := NewSimpleEmbedder().Embed(ctx, "Team lead")
	matches, err := idx.Query(ctx, vec, TopK)
	require.NoError(t, err)
	require.Len(t, matches, 2, "topK is clamped to the collection size")

	for _, m := range matches {
		text, ok := ExtractText(m.Metadata)
		assert.True(t, ok)
		assert.NotEmpty(t, text)
		assert.Equal(t, "cv.txt", m.Metadata[SourceKey])
	}
	assert.GreaterOrEqual(t, matches[0].Score, matches[1].Score)
}

func TestChromemIndex_PersistsToDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	idx, err := NewChromemIndex(dir, IndexName)
	require.NoError(t, err)
	_, err = NewIngestor(NewSimpleEmbedder(), idx).Ingest(ctx, "cv.txt", "Ten years of Go.")
	require.NoError(t, err)

	reopened, err := NewChromemIndex(dir, IndexName)
	require.NoError(t, err)
	matches, err := reopened.Query(ctx, Embedding{1, 1, 1, 1}, TopK)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	text, _ := ExtractText(matches[0].Metadata)
	assert.Equal(t, "Ten years of Go.", text)
}

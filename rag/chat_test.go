package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) (Embedding, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return Embedding{1, 0}, nil
}

type fakeIndex struct {
	calls   int
	topK    int
	matches []Match
	err     error
}

func (f *fakeIndex) Query(ctx context.Context, vector Embedding, topK int) ([]Match, error) {
	f.calls++
	f.topK = topK
	return f.matches, f.err
}

func (f *fakeIndex) Upsert(ctx context.Context, chunks []Chunk) error { return nil }
func (f *fakeIndex) Close() error                                       { return nil }

type fakeGenerator struct {
	calls  int
	system string
	user   string
	answer string
	err    error
}

func (f *fakeGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	f.calls++
	f.system, f.user = system, user
	return f.answer, f.err
}

func TestChatService_ReturnsAnswerVerbatim(t *testing.T) {
	idx := &fakeIndex{matches: []Match{
		{ID: "1", Metadata: node("Ten years of Go.")},
		{ID: "2", Metadata: node("Led the payments team.")},
	}}
	gen := &fakeGenerator{answer: "  He has ten years of Go.\n"}
	svc := NewChatService(&fakeEmbedder{}, idx, gen)

	out, err := svc.Answer(context.Background(), "How much Go?")

	require.NoError(t, err)
	assert.Equal(t, "  He has ten years of Go.\n", out)
	assert.Equal(t, TopK, idx.topK)
	assert.Equal(t, "How much Go?", gen.user)
	assert.True(t, strings.HasSuffix(gen.system, "Ten years of Go.\n\nLed the payments team."))
	assert.Contains(t, gen.system, Subject)
}

func TestChatService_EmbeddingFailure(t *testing.T) {
	idx := &fakeIndex{}
	gen := &fakeGenerator{}
	svc := NewChatService(&fakeEmbedder{err: errors.New("boom")}, idx, gen)

	_, err := svc.Answer(context.Background(), "hi")

	assert.ErrorIs(t, err, ErrEmbedding)
	assert.Equal(t, 0, idx.calls)
	assert.Equal(t, 0, gen.calls)
}

func TestChatService_RetrievalFailureSkipsGeneration(t *testing.T) {
	gen := &fakeGenerator{}
	svc := NewChatService(&fakeEmbedder{}, &fakeIndex{err: errors.New("index down")}, gen)

	_, err := svc.Answer(context.Background(), "hi")

	assert.ErrorIs(t, err, ErrRetrieval)
	assert.NotErrorIs(t, err, ErrGeneration)
	assert.Equal(t, 0, gen.calls)
}

func TestChatService_GenerationFailure(t *testing.T) {
	svc := NewChatService(&fakeEmbedder{}, &fakeIndex{}, &fakeGenerator{err: errors.New("rate limited")})

	_, err := svc.Answer(context.Background(), "hi")

	assert.ErrorIs(t, err, ErrGeneration)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestChatService_NoMatchesStillGenerates(t *testing.T) {
	gen := &fakeGenerator{answer: "I don't know."}
	svc := NewChatService(&fakeEmbedder{}, &fakeIndex{}, gen)

	out, err := svc.Answer(context.Background(), "hi")

	require.NoError(t, err)
	assert.Equal(t, "I don't know.", out)
	assert.Equal(t, SystemPrompt(Subject, ""), gen.system)
}

func TestChatService_EmptyMessage(t *testing.T) {
	emb := &fakeEmbedder{}
	svc := NewChatService(emb, &fakeIndex{}, &fakeGenerator{})

	_, err := svc.Answer(context.Background(), "")

	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Equal(t, 0, emb.calls)
}

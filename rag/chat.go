package rag

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"portfolio-api/telemetry"
)

// Stage failures. Answer wraps the provider error with one of these so the
// HTTP layer can choose the message shown to the visitor.
var (
	ErrEmptyMessage = errors.New("message is required")
	ErrEmbedding    = errors.New("embedding failed")
	ErrRetrieval    = errors.New("retrieval failed")
	ErrGeneration   = errors.New("generation failed")
)

var tracer = otel.Tracer("portfolio-api/rag")

// ChatService answers one question: embed, retrieve, build context, prompt,
// generate. It holds no per-request state and is safe for concurrent use.
type ChatService struct {
	embedder  Embedder
	index     Index
	generator Generator
	subject   string
	topK      int
}

func NewChatService(embedder Embedder, index Index, generator Generator) *ChatService {
	return &ChatService{
		embedder:  embedder,
		index:     index,
		generator: generator,
		subject:   Subject,
		topK:      TopK,
	}
}

// Answer returns the generated text verbatim.
func (s *ChatService) Answer(ctx context.Context, message string) (string, error) {
	if message == "" {
		return "", ErrEmptyMessage
	}
	logger := zerolog.Ctx(ctx)

	ctx, span := tracer.Start(ctx, "rag.Answer")
	defer span.End()

	var vec Embedding
	err := stage(ctx, "embed", func(ctx context.Context) (err error) {
		vec, err = s.embedder.Embed(ctx, message)
		return err
	})
	if err != nil {
		return "", fail(span, fmt.Errorf("%w: %w", ErrEmbedding, err))
	}

	var matches []Match
	err = stage(ctx, "retrieve", func(ctx context.Context) (err error) {
		matches, err = s.index.Query(ctx, vec, s.topK)
		return err
	})
	if err != nil {
		return "", fail(span, fmt.Errorf("%w: %w", ErrRetrieval, err))
	}

	grounding := BuildContext(matches)
	span.SetAttributes(
		attribute.Int("rag.matches", len(matches)),
		attribute.Int("rag.context_len", len(grounding)),
	)
	logger.Debug().Int("matches", len(matches)).Str("context", grounding).Msg("built grounding context")

	var answer string
	err = stage(ctx, "generate", func(ctx context.Context) (err error) {
		answer, err = s.generator.Generate(ctx, SystemPrompt(s.subject, grounding), message)
		return err
	})
	if err != nil {
		return "", fail(span, fmt.Errorf("%w: %w", ErrGeneration, err))
	}
	return answer, nil
}

func stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := tracer.Start(ctx, "rag."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	telemetry.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		fail(span, err)
	}
	return err
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

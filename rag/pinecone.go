package rag

import (
	"context"
	"fmt"

	"github.com/pinecone-io/go-pinecone/pinecone"
	"google.golang.org/protobuf/types/known/structpb"
)

// PineconeIndex queries a hosted Pinecone index.
type PineconeIndex struct {
	conn *pinecone.IndexConnection
}

// NewPineconeIndex resolves the index host once and opens a data-plane
// connection to it.
func NewPineconeIndex(ctx context.Context, apiKey, indexName string) (*PineconeIndex, error) {
	pc, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("creating pinecone client: %w", err)
	}

	desc, err := pc.DescribeIndex(ctx, indexName)
	if err != nil {
		return nil, fmt.Errorf("describing pinecone index %q: %w", indexName, err)
	}

	conn, err := pc.Index(pinecone.NewIndexConnParams{Host: desc.Host})
	if err != nil {
		return nil, fmt.Errorf("connecting to pinecone index %q: %w", indexName, err)
	}
	return &PineconeIndex{conn: conn}, nil
}

func (p *PineconeIndex) Query(ctx context.Context, vector Embedding, topK int) ([]Match, error) {
	resp, err := p.conn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(topK),
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		if m == nil || m.Vector == nil {
			continue
		}
		match := Match{ID: m.Vector.Id, Score: m.Score}
		if m.Vector.Metadata != nil {
			match.Metadata = m.Vector.Metadata.AsMap()
		}
		matches = append(matches, match)
	}
	return matches, nil
}

func (p *PineconeIndex) Upsert(ctx context.Context, chunks []Chunk) error {
	vectors := make([]*pinecone.Vector, 0, len(chunks))
	for _, ch := range chunks {
		md, err := structpb.NewStruct(ch.Metadata)
		if err != nil {
			return fmt.Errorf("encoding metadata for %s: %w", ch.ID, err)
		}
		vectors = append(vectors, &pinecone.Vector{
			Id:       ch.ID,
			Values:   ch.Embedding,
			Metadata: md,
		})
	}

	_, err := p.conn.UpsertVectors(ctx, vectors)
	return err
}

func (p *PineconeIndex) Close() error {
	return p.conn.Close()
}

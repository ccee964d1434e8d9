package rag

import (
	"context"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// QdrantIndex queries a Qdrant collection over gRPC.
type QdrantIndex struct {
	conn       *grpc.ClientConn
	points     pb.PointsClient
	collection string
	apiKey     string
}

func NewQdrantIndex(host string, port int, apiKey, collection string) (*QdrantIndex, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}
	return &QdrantIndex{
		conn:       conn,
		points:     pb.NewPointsClient(conn),
		collection: collection,
		apiKey:     apiKey,
	}, nil
}

func (q *QdrantIndex) withAuth(ctx context.Context) context.Context {
	if q.apiKey == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "api-key", q.apiKey)
}

func (q *QdrantIndex) Query(ctx context.Context, vector Embedding, topK int) ([]Match, error) {
	resp, err := q.points.Search(q.withAuth(ctx), &pb.SearchPoints{
		CollectionName: q.collection,
		Vector:         vector,
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, err
	}

	matches := make([]Match, len(resp.Result))
	for i, pt := range resp.Result {
		md := make(map[string]any, len(pt.Payload))
		for k, v := range pt.Payload {
			md[k] = qdrantValue(v)
		}
		matches[i] = Match{
			ID:       pt.Id.GetUuid(),
			Score:    pt.Score,
			Metadata: md,
		}
	}
	return matches, nil
}

func (q *QdrantIndex) Upsert(ctx context.Context, chunks []Chunk) error {
	points := make([]*pb.PointStruct, len(chunks))
	for i, ch := range chunks {
		payload := make(map[string]*pb.Value, len(ch.Metadata))
		for k, v := range ch.Metadata {
			if s, ok := v.(string); ok {
				payload[k] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
			}
		}
		points[i] = &pb.PointStruct{
			Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: ch.ID}},
			Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: ch.Embedding}}},
			Payload: payload,
		}
	}

	_, err := q.points.Upsert(q.withAuth(ctx), &pb.UpsertPoints{
		CollectionName: q.collection,
		Points:         points,
	})
	return err
}

func (q *QdrantIndex) Close() error {
	return q.conn.Close()
}

// qdrantValue unwraps a payload value into plain Go types.
func qdrantValue(v *pb.Value) any {
	switch k := v.GetKind().(type) {
	case *pb.Value_StringValue:
		return k.StringValue
	case *pb.Value_IntegerValue:
		return k.IntegerValue
	case *pb.Value_DoubleValue:
		return k.DoubleValue
	case *pb.Value_BoolValue:
		return k.BoolValue
	case *pb.Value_StructValue:
		out := make(map[string]any, len(k.StructValue.GetFields()))
		for name, f := range k.StructValue.GetFields() {
			out[name] = qdrantValue(f)
		}
		return out
	case *pb.Value_ListValue:
		out := make([]any, 0, len(k.ListValue.GetValues()))
		for _, item := range k.ListValue.GetValues() {
			out = append(out, qdrantValue(item))
		}
		return out
	default:
		return nil
	}
}

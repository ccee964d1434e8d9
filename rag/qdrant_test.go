package rag

import (
	"testing"

	pb "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
)

func TestQdrantValue_Unwraps(t *testing.T) {
	v := &pb.Value{Kind: &pb.Value_StructValue{StructValue: &pb.Struct{Fields: map[string]*pb.Value{
		"text":  {Kind: &pb.Value_StringValue{StringValue: "hello"}},
		"page":  {Kind: &pb.Value_IntegerValue{IntegerValue: 2}},
		"score": {Kind: &pb.Value_DoubleValue{DoubleValue: 0.5}},
		"ok":    {Kind: &pb.Value_BoolValue{BoolValue: true}},
		"tags": {Kind: &pb.Value_ListValue{ListValue: &pb.ListValue{Values: []*pb.Value{
			{Kind: &pb.Value_StringValue{StringValue: "go"}},
		}}}},
	}}}}

	got, ok := qdrantValue(v).(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, "hello", got["text"])
	assert.Equal(t, int64(2), got["page"])
	assert.Equal(t, 0.5, got["score"])
	assert.Equal(t, true, got["ok"])
	assert.Equal(t, []any{"go"}, got["tags"])

	// a decoded node is understood by the extractor
	text, found := ExtractText(map[string]any{NodeContentKey: got})
	assert.True(t, found)
	assert.Equal(t, "hello", text)
}

func TestQdrantValue_Null(t *testing.T) {
	assert.Nil(t, qdrantValue(&pb.Value{}))
	assert.Nil(t, qdrantValue(nil))
}

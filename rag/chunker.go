package rag

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/sjson"
)

const (
	// NodeContentKey is the metadata field LlamaIndex-style ingestion writes
	// the serialized node under.
	NodeContentKey = "_node_content"
	// SourceKey names the document a chunk came from.
	SourceKey = "source"

	maxSentencesPerChunk = 3
)

// Very naive chunker by number of sentences
func ChunkText(text, source string) []Chunk {
	sentences := strings.Split(text, ".")

	var chunks []Chunk
	var buffer []string

	maybeFlush := func() {
		if len(buffer) == 0 {
			return
		}
		content := strings.TrimSpace(strings.Join(buffer, ". ") + ".")
		if content == "." {
			return
		}
		id := chunkID(source, len(chunks)+1)
		chunks = append(chunks, Chunk{
			ID:      id,
			Content: content,
			Source:  source,
			Metadata: map[string]any{
				NodeContentKey: NodeContent(id, content),
				SourceKey:      source,
			},
		})
		buffer = []string{}
	}

	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		buffer = append(buffer, s)
		if len(buffer) >= maxSentencesPerChunk {
			maybeFlush()
		}
	}
	maybeFlush()

	return chunks
}

// chunkID is stable per source and position so re-ingesting a document
// overwrites its previous chunks instead of duplicating them.
func chunkID(source string, n int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(source+"#"+strconv.Itoa(n))).String()
}

// NodeContent serializes a chunk the way the chat path expects to find it
// under NodeContentKey.
func NodeContent(id, text string) string {
	doc, _ := sjson.Set("{}", "id_", id)
	doc, _ = sjson.Set(doc, "text", text)
	return doc
}

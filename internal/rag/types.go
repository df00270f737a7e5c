// Package rag holds the document chunking and prompt-context assembly used by the
// ingestion and query pipelines.
package rag

import "fmt"

// EmbedRole selects the embedding task type. Backends may return different vectors
// for the same text depending on the role.
type EmbedRole string

const (
	RoleDocument EmbedRole = "document"
	RoleQuery    EmbedRole = "query"
)

// Page is one page of extracted PDF text. Number is 1-based.
type Page struct {
	Number int
	Text   string
}

// Chunk is a trimmed window of a page's text.
type Chunk struct {
	DocID string
	Index int
	Page  int
	Text  string
}

// ID returns the storage key of the chunk, e.g. "3f2a...:000012".
func (c Chunk) ID() string {
	return ChunkID(c.DocID, c.Index)
}

func ChunkID(docID string, index int) string {
	return fmt.Sprintf("%s:%06d", docID, index)
}

// Record is a chunk ready to be written to a vector store namespace.
type Record struct {
	ID     string
	Text   string
	Page   int
	Vector []float32
}

// RetrievedChunk is a similarity query hit. Page is 0 when the store had no page metadata.
type RetrievedChunk struct {
	ID    string
	Text  string
	Page  int
	Score float32
}

// Citation points at a retrieved chunk. Page is nil when the chunk carried no
// page metadata.
type Citation struct {
	Page *int   `json:"page"`
	ID   string `json:"id"`
}

// Citations lists every retrieved chunk, whether or not it made it into the prompt.
func Citations(retrieved []RetrievedChunk) []Citation {
	out := make([]Citation, 0, len(retrieved))
	for _, r := range retrieved {
		c := Citation{ID: r.ID}
		if r.Page > 0 {
			page := r.Page
			c.Page = &page
		}
		out = append(out, c)
	}
	return out
}

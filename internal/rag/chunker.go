package rag

import (
	"fmt"
	"strings"
)

const (
	DefaultChunkSize    = 2000
	DefaultChunkOverlap = 200
)

// ChunkText splits text into windows of chunkSize runes. Each window starts
// chunkSize-overlap runes after the previous one; the last window is clamped to
// the end of the text. Windows are trimmed and dropped when they trim to empty.
func ChunkText(text string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be > 0, got %d", ErrInvalidArgument, chunkSize)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be < chunk size %d", ErrInvalidArgument, overlap, chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must be >= 0, got %d", ErrInvalidArgument, overlap)
	}

	runes := []rune(text)
	n := len(runes)
	var chunks []string
	start := 0
	for start < n {
		end := start + chunkSize
		if end > n {
			end = n
		}
		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == n {
			break
		}
		start = end - overlap
		if start < 0 {
			start = 0
		}
	}
	return chunks, nil
}

// ChunkPages chunks every non-blank page in order. Indexes run across the whole
// document so that chunk ids stay unique within it.
func ChunkPages(docID string, pages []Page, chunkSize, overlap int) ([]Chunk, error) {
	var chunks []Chunk
	for _, page := range pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		texts, err := ChunkText(page.Text, chunkSize, overlap)
		if err != nil {
			return nil, err
		}
		for _, t := range texts {
			chunks = append(chunks, Chunk{
				DocID: docID,
				Index: len(chunks),
				Page:  page.Number,
				Text:  t,
			})
		}
	}
	return chunks, nil
}

// HasText reports whether any page carries non-whitespace text.
func HasText(pages []Page) bool {
	for _, p := range pages {
		if strings.TrimSpace(p.Text) != "" {
			return true
		}
	}
	return false
}

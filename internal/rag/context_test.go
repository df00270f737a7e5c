package rag_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"pdfchat/internal/rag"
)

func TestAssembleContext_AllFit(t *testing.T) {
	retrieved := []rag.RetrievedChunk{
		{ID: "d:000007", Text: "second best", Page: 4},
		{ID: "d:000002", Text: "first page text", Page: 1},
	}

	got := rag.AssembleContext(retrieved, rag.DefaultMaxContextChars)

	want := "[Chunk 1 | p.4]:\nsecond best\n\n" +
		"[Chunk 2 | p.1]:\nfirst page text\n\n"
	assert.Equal(t, want, got.Text)
	assert.Equal(t, 2, got.Blocks)
	assert.False(t, got.Empty)
}

func TestAssembleContext_MissingPage(t *testing.T) {
	got := rag.AssembleContext([]rag.RetrievedChunk{{ID: "d:000000", Text: "x"}}, 100)
	assert.Equal(t, "[Chunk 1 | p.?]:\nx\n\n", got.Text)
}

func TestAssembleContext_StopsAtFirstOverflow(t *testing.T) {
	first := rag.RetrievedChunk{ID: "a", Text: strings.Repeat("a", 20), Page: 1}
	big := rag.RetrievedChunk{ID: "b", Text: strings.Repeat("b", 200), Page: 2}
	small := rag.RetrievedChunk{ID: "c", Text: "c", Page: 3}

	// "[Chunk 1 | p.1]:\n" is 17 runes, plus text and "\n\n".
	firstLen := 17 + 20 + 2
	got := rag.AssembleContext([]rag.RetrievedChunk{first, big, small}, firstLen+50)

	assert.Equal(t, 1, got.Blocks)
	assert.Equal(t, "[Chunk 1 | p.1]:\n"+first.Text+"\n\n", got.Text)
	assert.NotContains(t, got.Text, "[Chunk 3")
}

func TestAssembleContext_BudgetIsInclusive(t *testing.T) {
	c := rag.RetrievedChunk{ID: "a", Text: "abc", Page: 1}
	size := len("[Chunk 1 | p.1]:\nabc\n\n")

	assert.Equal(t, 1, rag.AssembleContext([]rag.RetrievedChunk{c}, size).Blocks)
	assert.True(t, rag.AssembleContext([]rag.RetrievedChunk{c}, size-1).Empty)
}

func TestAssembleContext_Empty(t *testing.T) {
	for _, in := range [][]rag.RetrievedChunk{nil, {}} {
		got := rag.AssembleContext(in, rag.DefaultMaxContextChars)
		assert.True(t, got.Empty)
		assert.Equal(t, rag.NoContextText, got.Text)
		assert.Zero(t, got.Blocks)
	}
}

func TestAssembleContext_FirstBlockTooLarge(t *testing.T) {
	got := rag.AssembleContext([]rag.RetrievedChunk{
		{ID: "a", Text: strings.Repeat("x", 500), Page: 1},
		{ID: "b", Text: "tiny", Page: 2},
	}, 100)
	assert.True(t, got.Empty)
	assert.Equal(t, rag.NoContextText, got.Text)
}

func TestBuildPrompt(t *testing.T) {
	ctx := rag.AssembleContext([]rag.RetrievedChunk{{ID: "a", Text: "The sky is blue.", Page: 2}}, 1000)
	prompt := rag.BuildPrompt("What color is the sky?", ctx)

	assert.True(t, strings.HasPrefix(prompt, "You are a careful analyst of PDF documents."))
	assert.Contains(t, prompt, "[p.X]")
	assert.Contains(t, prompt, "Context:\n[Chunk 1 | p.2]:\nThe sky is blue.")
	assert.Contains(t, prompt, "Question: What color is the sky?")
	assert.True(t, strings.HasSuffix(prompt, "Answer:"))
}

func TestCitations(t *testing.T) {
	got := rag.Citations([]rag.RetrievedChunk{{ID: "d:000001", Page: 3}, {ID: "d:000009"}})
	page := 3
	assert.Equal(t, []rag.Citation{{Page: &page, ID: "d:000001"}, {ID: "d:000009"}}, got)
	assert.Empty(t, rag.Citations(nil))

	b, err := json.Marshal(got)
	if assert.NoError(t, err) {
		assert.JSONEq(t, `[{"page":3,"id":"d:000001"},{"page":null,"id":"d:000009"}]`, string(b))
	}
}

package rag

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultMaxContextChars bounds the assembled context, counted in runes.
const DefaultMaxContextChars = 12000

const NoContextText = "No context retrieved."

const systemPreamble = "You are a careful analyst of PDF documents. " +
	"Use ONLY the provided context snippets to answer the user's question. " +
	"If the answer cannot be found in the context, say you couldn't find it. " +
	"Cite page numbers using [p.X] when relevant. Be concise and factual."

type AssembledContext struct {
	Text   string
	Blocks int
	Empty  bool
}

// AssembleContext formats retrieved chunks in the given order until the next
// block would push the total past maxChars. It never skips a block to fit a
// later, smaller one.
func AssembleContext(retrieved []RetrievedChunk, maxChars int) AssembledContext {
	var sb strings.Builder
	running := 0
	blocks := 0
	for i, c := range retrieved {
		block := formatBlock(i+1, c)
		size := utf8.RuneCountInString(block)
		if running+size > maxChars {
			break
		}
		sb.WriteString(block)
		running += size
		blocks++
	}
	if blocks == 0 {
		return AssembledContext{Text: NoContextText, Empty: true}
	}
	return AssembledContext{Text: sb.String(), Blocks: blocks}
}

func formatBlock(label int, c RetrievedChunk) string {
	page := "?"
	if c.Page > 0 {
		page = strconv.Itoa(c.Page)
	}
	return fmt.Sprintf("[Chunk %d | p.%s]:\n%s\n\n", label, page, c.Text)
}

func BuildPrompt(question string, ctx AssembledContext) string {
	return fmt.Sprintf("%s\n\nContext:\n%s\n\nQuestion: %s\n\nAnswer:", systemPreamble, ctx.Text, question)
}

package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"pdfchat/internal/rag"
)

const (
	DefaultGeminiEmbeddingModel  = "text-embedding-004"
	DefaultGeminiGenerationModel = "gemini-1.5-flash"
)

type GeminiConfig struct {
	APIKey          string
	EmbeddingModel  string
	GenerationModel string
}

// GeminiClient embeds with separate task types for stored chunks and questions, and
// generates answers with a single generative model.
type GeminiClient struct {
	client        *genai.Client
	documentModel *genai.EmbeddingModel
	queryModel    *genai.EmbeddingModel
	genModel      *genai.GenerativeModel
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini api key is empty")
	}
	embedName := cfg.EmbeddingModel
	if embedName == "" {
		embedName = DefaultGeminiEmbeddingModel
	}
	genName := cfg.GenerationModel
	if genName == "" {
		genName = DefaultGeminiGenerationModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client failed: %w", err)
	}

	documentModel := client.EmbeddingModel(embedName)
	documentModel.TaskType = genai.TaskTypeRetrievalDocument
	queryModel := client.EmbeddingModel(embedName)
	queryModel.TaskType = genai.TaskTypeRetrievalQuery

	return &GeminiClient{
		client:        client,
		documentModel: documentModel,
		queryModel:    queryModel,
		genModel:      client.GenerativeModel(genName),
	}, nil
}

func (c *GeminiClient) Embed(ctx context.Context, text string, role rag.EmbedRole) ([]float32, error) {
	em := c.documentModel
	if role == rag.RoleQuery {
		em = c.queryModel
	}
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embed failed: %w", classify(err))
	}
	if res == nil || res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, errors.New("gemini embedding is empty")
	}
	return res.Embedding.Values, nil
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.genModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", classify(err))
	}

	var out strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				out.WriteString(string(t))
			}
		}
		if out.Len() > 0 {
			break
		}
	}
	if out.Len() == 0 {
		return "", errors.New("gemini returned no text")
	}
	return out.String(), nil
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

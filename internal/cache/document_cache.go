package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"pdfchat/internal/model"
)

const defaultDocumentTTL = 5 * time.Minute

// DocumentCache is a read-through cache of registry records keyed by doc id.
type DocumentCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewDocumentCache(client *redisv9.Client, ttl time.Duration) *DocumentCache {
	if ttl <= 0 {
		ttl = defaultDocumentTTL
	}
	return &DocumentCache{client: client, ttl: ttl}
}

// Get reports false on a miss.
func (c *DocumentCache) Get(ctx context.Context, docID string) (*model.RAGDocument, bool, error) {
	raw, err := c.client.Get(ctx, documentKey(docID)).Bytes()
	if errors.Is(err, redisv9.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get document failed: %w", err)
	}

	var doc model.RAGDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached document failed: %w", err)
	}
	return &doc, true, nil
}

func (c *DocumentCache) Set(ctx context.Context, doc *model.RAGDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document cache failed: %w", err)
	}
	if err := c.client.Set(ctx, documentKey(doc.DocID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set document failed: %w", err)
	}
	return nil
}

func (c *DocumentCache) Delete(ctx context.Context, docID string) error {
	if err := c.client.Del(ctx, documentKey(docID)).Err(); err != nil {
		return fmt.Errorf("redis delete document failed: %w", err)
	}
	return nil
}

func documentKey(docID string) string {
	return "pdfchat:document:" + docID
}

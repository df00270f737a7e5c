package vectorstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"pdfchat/internal/rag"
)

const (
	payloadChunkID = "chunk_id"
	payloadText    = "text"
	payloadPage    = "page"
)

type QdrantConfig struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool
}

// QdrantStore keeps each document in its own cosine-distance collection on a
// Qdrant server reached over gRPC.
type QdrantStore struct {
	client *qdrant.Client
	logger *zap.Logger
}

func NewQdrantStore(cfg QdrantConfig, logger *zap.Logger) (*QdrantStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Host == "" {
		return nil, errors.New("qdrant host is empty")
	}
	if cfg.Port <= 0 {
		cfg.Port = 6334
	}

	qcfg := &qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	}
	if !cfg.UseTLS {
		qcfg.GrpcOptions = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}

	client, err := qdrant.NewClient(qcfg)
	if err != nil {
		return nil, fmt.Errorf("create qdrant client failed: %w", err)
	}

	logger.Info("qdrant store initialized",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.Bool("tls", cfg.UseTLS),
	)
	return &QdrantStore{client: client, logger: logger}, nil
}

// pointID derives a stable UUID from a chunk id, since Qdrant only accepts UUIDs
// or integers as point ids.
func pointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunkID)).String()
}

func (s *QdrantStore) Upsert(ctx context.Context, namespace string, records []rag.Record) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	name := CollectionName(namespace)
	if err := s.ensureCollection(ctx, name, uint64(len(records[0].Vector))); err != nil {
		return err
	}

	points := make([]*qdrant.PointStruct, 0, len(records))
	for _, r := range records {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(pointID(r.ID)),
			Vectors: qdrant.NewVectors(r.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				payloadChunkID: r.ID,
				payloadText:    r.Text,
				payloadPage:    r.Page,
			}),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: name,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upsert points to %s failed: %w", name, classifyGRPC(err))
	}

	s.logger.Debug("upserted chunks",
		zap.String("collection", name),
		zap.Int("count", len(points)),
	)
	return nil
}

func (s *QdrantStore) ensureCollection(ctx context.Context, name string, size uint64) error {
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check collection %s failed: %w", name, classifyGRPC(err))
	}
	if exists {
		return nil
	}
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     size,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection %s failed: %w", name, classifyGRPC(err))
	}
	return nil
}

func (s *QdrantStore) Query(ctx context.Context, namespace string, vector []float32, k int) ([]rag.RetrievedChunk, error) {
	if err := validateNamespace(namespace); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", rag.ErrInvalidArgument, k)
	}

	name := CollectionName(namespace)
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check collection %s failed: %w", name, classifyGRPC(err))
	}
	if !exists {
		return []rag.RetrievedChunk{}, nil
	}

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: name,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("query collection %s failed: %w", name, classifyGRPC(err))
	}

	out := make([]rag.RetrievedChunk, 0, len(points))
	for _, p := range points {
		out = append(out, fromScoredPoint(p))
	}
	return out, nil
}

func fromScoredPoint(p *qdrant.ScoredPoint) rag.RetrievedChunk {
	payload := p.GetPayload()
	return rag.RetrievedChunk{
		ID:    payload[payloadChunkID].GetStringValue(),
		Text:  payload[payloadText].GetStringValue(),
		Page:  int(payload[payloadPage].GetIntegerValue()),
		Score: p.GetScore(),
	}
}

func (s *QdrantStore) DeleteNamespace(ctx context.Context, namespace string) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}
	name := CollectionName(namespace)
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check collection %s failed: %w", name, classifyGRPC(err))
	}
	if !exists {
		return nil
	}
	if err := s.client.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("delete collection %s failed: %w", name, classifyGRPC(err))
	}
	return nil
}

func (s *QdrantStore) Health(ctx context.Context) error {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant health check failed: %w", err)
	}
	return nil
}

func (s *QdrantStore) Close() error {
	return s.client.Close()
}

func classifyGRPC(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.ResourceExhausted:
		return fmt.Errorf("%w: %w", rag.ErrRateLimited, err)
	case codes.Unavailable, codes.DeadlineExceeded, codes.Aborted, codes.Internal:
		return fmt.Errorf("%w: %w", rag.ErrTransientBackend, err)
	}
	return err
}

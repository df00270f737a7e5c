package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pdfchat/internal/rag"
)

func newMemoryStore(t *testing.T) *ChromemStore {
	t.Helper()
	s, err := NewChromemStore(ChromemConfig{}, nil)
	require.NoError(t, err)
	return s
}

func TestCollectionName(t *testing.T) {
	assert.Equal(t, "doc_abc123", CollectionName("abc123"))
}

func TestChromemStore_NamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore(t)

	require.NoError(t, s.Upsert(ctx, "a", []rag.Record{
		{ID: "a:000000", Text: "alpha one", Page: 1, Vector: []float32{1, 0, 0}},
		{ID: "a:000001", Text: "alpha two", Page: 2, Vector: []float32{0.9, 0.1, 0}},
	}))
	require.NoError(t, s.Upsert(ctx, "b", []rag.Record{
		{ID: "b:000000", Text: "beta", Page: 7, Vector: []float32{1, 0, 0}},
	}))

	got, err := s.Query(ctx, "a", []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, c := range got {
		assert.Contains(t, []string{"a:000000", "a:000001"}, c.ID)
	}
	assert.Equal(t, "a:000000", got[0].ID)
	assert.Equal(t, 1, got[0].Page)
	assert.Equal(t, "alpha one", got[0].Text)

	got, err = s.Query(ctx, "b", []float32{1, 0, 0}, 4)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b:000000", got[0].ID)
	assert.Equal(t, 7, got[0].Page)
}

func TestChromemStore_QueryCapsK(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore(t)
	require.NoError(t, s.Upsert(ctx, "doc", []rag.Record{
		{ID: "doc:000000", Text: "x", Page: 1, Vector: []float32{0, 1}},
	}))

	got, err := s.Query(ctx, "doc", []float32{0, 1}, 4)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestChromemStore_UnknownNamespace(t *testing.T) {
	s := newMemoryStore(t)

	got, err := s.Query(context.Background(), "missing", []float32{1, 0}, 4)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestChromemStore_DeleteNamespace(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore(t)
	require.NoError(t, s.Upsert(ctx, "doc", []rag.Record{
		{ID: "doc:000000", Text: "x", Page: 1, Vector: []float32{1, 1}},
	}))

	require.NoError(t, s.DeleteNamespace(ctx, "doc"))
	got, err := s.Query(ctx, "doc", []float32{1, 1}, 4)
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.NoError(t, s.DeleteNamespace(ctx, "never-existed"))
}

func TestChromemStore_Validation(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore(t)

	assert.ErrorIs(t, s.Upsert(ctx, " ", []rag.Record{{ID: "x", Text: "x", Vector: []float32{1}}}), ErrEmptyNamespace)
	_, err := s.Query(ctx, "", []float32{1}, 1)
	assert.ErrorIs(t, err, ErrEmptyNamespace)
	_, err = s.Query(ctx, "doc", []float32{1}, 0)
	assert.ErrorIs(t, err, rag.ErrInvalidArgument)
	assert.NoError(t, s.Upsert(ctx, "doc", nil))
}

func TestChromemStore_Persistent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewChromemStore(ChromemConfig{Path: dir}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, "doc", []rag.Record{
		{ID: "doc:000000", Text: "persisted", Page: 3, Vector: []float32{1, 0}},
	}))

	reopened, err := NewChromemStore(ChromemConfig{Path: dir}, nil)
	require.NoError(t, err)
	got, err := reopened.Query(ctx, "doc", []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "persisted", got[0].Text)
	assert.Equal(t, 3, got[0].Page)
}

func TestPointIDStable(t *testing.T) {
	assert.Equal(t, pointID("d:000001"), pointID("d:000001"))
	assert.NotEqual(t, pointID("d:000001"), pointID("d:000002"))
}

func TestClassifyGRPC(t *testing.T) {
	assert.ErrorIs(t, classifyGRPC(status.Error(codes.Unavailable, "down")), rag.ErrTransientBackend)
	assert.ErrorIs(t, classifyGRPC(status.Error(codes.ResourceExhausted, "quota")), rag.ErrRateLimited)

	plain := status.Error(codes.InvalidArgument, "bad")
	assert.Equal(t, plain, classifyGRPC(plain))
}

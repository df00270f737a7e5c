package app_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"pdfchat/internal/model"
	"pdfchat/internal/pkg/retry"
	"pdfchat/internal/rag"
)

var errBoom = errors.New("boom")

func fastPolicy(p retry.Policy) *retry.Policy {
	p.InitialInterval = time.Millisecond
	p.MaxInterval = time.Millisecond
	return &p
}

type embedCall struct {
	text string
	role rag.EmbedRole
}

// fakeEmbedder returns errs in order, then a vector derived from the text.
type fakeEmbedder struct {
	mu    sync.Mutex
	errs  []error
	calls []embedCall
}

func (f *fakeEmbedder) Embed(_ context.Context, text string, role rag.EmbedRole) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, embedCall{text: text, role: role})
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	return []float32{float32(len(text)%7) + 1, float32(len([]rune(text))%3) + 1, 1}, nil
}

type fakeGenerator struct {
	answer  string
	errs    []error
	calls   int
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return "", err
	}
	return f.answer, nil
}

// fakeStore returns the stored records of a namespace in insertion order.
type fakeStore struct {
	data      map[string][]rag.Record
	canned    []rag.RetrievedChunk
	lastK     int
	upserts   int
	deleted   []string
	upsertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string][]rag.Record{}}
}

func (f *fakeStore) Upsert(_ context.Context, namespace string, records []rag.Record) error {
	f.upserts++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.data[namespace] = append(f.data[namespace], records...)
	return nil
}

func (f *fakeStore) Query(_ context.Context, namespace string, _ []float32, k int) ([]rag.RetrievedChunk, error) {
	f.lastK = k
	if f.canned != nil {
		return f.canned, nil
	}
	var out []rag.RetrievedChunk
	for _, r := range f.data[namespace] {
		if len(out) == k {
			break
		}
		out = append(out, rag.RetrievedChunk{ID: r.ID, Text: r.Text, Page: r.Page})
	}
	return out, nil
}

func (f *fakeStore) DeleteNamespace(_ context.Context, namespace string) error {
	f.deleted = append(f.deleted, namespace)
	delete(f.data, namespace)
	return nil
}

type fakePublisher struct {
	docs []model.RAGDocument
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, doc model.RAGDocument) error {
	if f.err != nil {
		return f.err
	}
	f.docs = append(f.docs, doc)
	return nil
}

type fakeRepo struct {
	docs      map[string]model.RAGDocument
	gets      int
	createErr error
	deleteErr error
}

func newFakeRepo(docs ...model.RAGDocument) *fakeRepo {
	r := &fakeRepo{docs: map[string]model.RAGDocument{}}
	for _, d := range docs {
		r.docs[d.DocID] = d
	}
	return r
}

func (r *fakeRepo) Create(_ context.Context, doc *model.RAGDocument) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.docs[doc.DocID] = *doc
	return nil
}

func (r *fakeRepo) GetByDocID(_ context.Context, docID string) (*model.RAGDocument, error) {
	r.gets++
	d, ok := r.docs[docID]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r *fakeRepo) List(_ context.Context, _ int) ([]model.RAGDocument, error) {
	out := make([]model.RAGDocument, 0, len(r.docs))
	for _, d := range r.docs {
		out = append(out, d)
	}
	return out, nil
}

func (r *fakeRepo) DeleteByDocID(_ context.Context, docID string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.docs, docID)
	return nil
}

type fakeCache struct {
	docs   map[string]model.RAGDocument
	getErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{docs: map[string]model.RAGDocument{}}
}

func (c *fakeCache) Get(_ context.Context, docID string) (*model.RAGDocument, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	d, ok := c.docs[docID]
	if !ok {
		return nil, false, nil
	}
	return &d, true, nil
}

func (c *fakeCache) Set(_ context.Context, doc *model.RAGDocument) error {
	c.docs[doc.DocID] = *doc
	return nil
}

func (c *fakeCache) Delete(_ context.Context, docID string) error {
	delete(c.docs, docID)
	return nil
}

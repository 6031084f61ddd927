package documents

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/healthsync/internal/common"
	"github.com/dmitrijs2005/healthsync/internal/server/models"
)

// InMemoryRepository keeps documents in a map. Fields are stored as JSON so
// readers get the same value types as from Postgres.
type InMemoryRepository struct {
	mu   sync.RWMutex
	docs map[string]stored
}

type stored struct {
	doc    models.Document
	fields []byte
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{docs: make(map[string]stored)}
}

func (r *InMemoryRepository) Put(ctx context.Context, doc *models.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fields, err := json.Marshal(doc.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode fields: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	s := stored{doc: *doc, fields: fields}
	s.doc.Fields = nil
	r.docs[doc.Path] = s
	return nil
}

func (r *InMemoryRepository) Get(ctx context.Context, path string) (*models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.docs[path]
	if !ok {
		return nil, common.ErrNotFound
	}
	return s.load()
}

func (r *InMemoryRepository) ListChildren(ctx context.Context, parent string) ([]*models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*models.Document
	for _, s := range r.docs {
		if s.doc.Parent != parent {
			continue
		}
		doc, err := s.load()
		if err != nil {
			return nil, err
		}
		result = append(result, doc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}

func (r *InMemoryRepository) DeleteTree(ctx context.Context, path string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	prefix := path + "/"
	for p := range r.docs {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(r.docs, p)
			n++
		}
	}
	return n, nil
}

func (s stored) load() (*models.Document, error) {
	doc := s.doc
	doc.Fields = map[string]any{}
	if err := json.Unmarshal(s.fields, &doc.Fields); err != nil {
		return nil, fmt.Errorf("corrupt fields of %s: %w", doc.Path, err)
	}
	if doc.Fields == nil {
		doc.Fields = map[string]any{}
	}
	return &doc, nil
}

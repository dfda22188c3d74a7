package docstore

import (
	"context"
	"sync"

	"symposium/internal/domain"
)

// MemoryStore is an in-process DocumentStore for development and tests.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string]map[string]domain.Document
}

var _ domain.DocumentStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string]domain.Document)}
}

func (m *MemoryStore) Get(ctx context.Context, collection, key string) (domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[collection][key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyDocument(doc), nil
}

func (m *MemoryStore) Create(ctx context.Context, collection, key string, fields domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	coll, ok := m.docs[collection]
	if !ok {
		coll = make(map[string]domain.Document)
		m.docs[collection] = coll
	}
	if _, exists := coll[key]; exists {
		return domain.ErrAlreadyExists
	}
	coll[key] = copyDocument(fields)
	return nil
}

func (m *MemoryStore) AppendToSet(ctx context.Context, collection, key, field string, values []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[collection][key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	existing, err := stringSlice(doc[field])
	if err != nil {
		return nil, err
	}
	seen := domain.NewSelectionSet(existing...)
	var added []string
	for _, v := range values {
		if !seen.Has(v) {
			existing = append(existing, v)
			added = append(added, v)
			seen[v] = struct{}{}
		}
	}
	doc[field] = existing
	return added, nil
}

func copyDocument(doc domain.Document) domain.Document {
	out := make(domain.Document, len(doc))
	for k, v := range doc {
		if s, ok := v.([]string); ok {
			v = append([]string(nil), s...)
		}
		out[k] = v
	}
	return out
}

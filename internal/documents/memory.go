package documents

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store used for local runs and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	docs   map[string]Document
	closed bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store seeded with docs.
func NewMemoryStore(docs ...Document) *MemoryStore {
	s := &MemoryStore{docs: make(map[string]Document, len(docs))}
	s.Put(docs...)
	return s
}

// Put inserts or replaces documents by ID.
func (s *MemoryStore) Put(docs ...Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range docs {
		s.docs[d.ID] = d
	}
}

// ListDocuments implements Store.
func (s *MemoryStore) ListDocuments(ctx context.Context, orgID string, excludeArchived bool) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	out := make([]Document, 0, len(s.docs))
	for _, d := range s.docs {
		if d.OrgID != orgID {
			continue
		}
		if excludeArchived && d.Archived {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

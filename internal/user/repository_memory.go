package user

import (
	"context"
	"encoding/json"
	"sync"
)

// InMemoryRepository backs tests and local development without a
// database. Documents are copied through JSON on the way in and out so
// callers never share map references with the store.
type InMemoryRepository struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{docs: make(map[string][]byte)}
}

func (r *InMemoryRepository) GetDoc(ctx context.Context, uid string) (map[string]any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, ok := r.docs[uid]
	if !ok {
		return nil, nil
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *InMemoryRepository) SaveDoc(ctx context.Context, uid string, doc map[string]any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[uid] = raw
	return nil
}

package leads

import (
	"context"
	"fmt"
	"sync"
)

// Repository defines the interface for lead storage. Create must refuse to
// overwrite an existing ID, and the ID index must stay consistent with the
// record store: an index entry exists iff the record exists.
type Repository interface {
	Create(ctx context.Context, lead *Lead) error
	GetByID(ctx context.Context, id string) (*Lead, error)
	// ListIDs returns all stored lead IDs in insertion order. Nothing over
	// HTTP exposes this; it exists so leads can be enumerated later and so
	// tests can verify index consistency.
	ListIDs(ctx context.Context) ([]string, error)
}

// InMemoryRepository keeps leads in a mutex-guarded map with an ordered ID
// slice as the index. Used for local development and tests.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]*Lead
	ids   []string
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads: make(map[string]*Lead),
	}
}

// Create stores the lead and appends its ID to the index under one lock, so
// concurrent submissions cannot lose index entries.
func (r *InMemoryRepository) Create(ctx context.Context, lead *Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.leads[lead.ID]; exists {
		return fmt.Errorf("leads: duplicate id %s", lead.ID)
	}
	stored := *lead
	r.leads[lead.ID] = &stored
	r.ids = append(r.ids, lead.ID)
	return nil
}

// GetByID retrieves a lead by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	found := *lead
	return &found, nil
}

// ListIDs returns the index in insertion order.
func (r *InMemoryRepository) ListIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out, nil
}

package store

import (
	"context"
	"sync"
)

// MemoryRepository keeps entities in insertion order. It is safe for
// concurrent use and backs local development and tests.
type MemoryRepository[K comparable, E any] struct {
	schema Schema[K, E]

	mu      sync.RWMutex
	nextSeq int64
	order   []K
	rows    map[K]E
}

var _ Repository[string, UCSBOrganization] = (*MemoryRepository[string, UCSBOrganization])(nil)

func NewMemoryRepository[K comparable, E any](schema Schema[K, E]) *MemoryRepository[K, E] {
	return &MemoryRepository[K, E]{
		schema:  schema,
		nextSeq: 1,
		rows:    make(map[K]E),
	}
}

func (r *MemoryRepository[K, E]) FindAll(_ context.Context) ([]E, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]E, 0, len(r.order))
	for _, key := range r.order {
		items = append(items, r.rows[key])
	}
	return items, nil
}

func (r *MemoryRepository[K, E]) FindByID(_ context.Context, key K) (E, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entity, ok := r.rows[key]
	return entity, ok, nil
}

func (r *MemoryRepository[K, E]) Save(_ context.Context, entity E) (E, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.schema.Surrogate && r.schema.hasZeroKey(entity) {
		entity = r.schema.WithKey(entity, r.schema.SequenceKey(r.nextSeq))
		r.nextSeq++
	}

	key := r.schema.KeyOf(entity)
	if seq, ok := any(key).(int64); ok && r.schema.Surrogate && seq >= r.nextSeq {
		r.nextSeq = seq + 1
	}
	if _, exists := r.rows[key]; !exists {
		r.order = append(r.order, key)
	}
	r.rows[key] = entity
	return entity, nil
}

func (r *MemoryRepository[K, E]) Delete(_ context.Context, entity E) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.schema.KeyOf(entity)
	if _, exists := r.rows[key]; !exists {
		return nil
	}
	delete(r.rows, key)
	for i, existing := range r.order {
		if existing == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

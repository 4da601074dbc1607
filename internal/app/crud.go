package app

import (
	"context"
	"errors"

	"ucsbexample/api/internal/metrics"
	"ucsbexample/api/internal/store"
)

// EntityService runs the five controller operations for one entity type.
// Authorization happens before any of these are called.
type EntityService[K comparable, E any] struct {
	schema store.Schema[K, E]
	repo   store.Repository[K, E]
}

func NewEntityService[K comparable, E any](schema store.Schema[K, E], repo store.Repository[K, E]) *EntityService[K, E] {
	return &EntityService[K, E]{schema: schema, repo: repo}
}

func (s *EntityService[K, E]) TypeName() string {
	return s.schema.Name
}

func (s *EntityService[K, E]) List(ctx context.Context) ([]E, error) {
	items, err := s.repo.FindAll(ctx)
	s.record("list", err)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []E{}
	}
	return items, nil
}

// Create persists a new entity. Surrogate keys are cleared so the store
// assigns one.
func (s *EntityService[K, E]) Create(ctx context.Context, entity E) (E, error) {
	if s.schema.Surrogate {
		var zero K
		entity = s.schema.WithKey(entity, zero)
	}
	saved, err := s.repo.Save(ctx, entity)
	s.record("create", err)
	return saved, err
}

func (s *EntityService[K, E]) Get(ctx context.Context, key K) (E, error) {
	entity, err := s.find(ctx, key)
	s.record("get", err)
	return entity, err
}

// Update replaces every field of the stored entity with incoming, keeping key.
func (s *EntityService[K, E]) Update(ctx context.Context, key K, incoming E) (E, error) {
	if _, err := s.find(ctx, key); err != nil {
		s.record("update", err)
		var zero E
		return zero, err
	}
	saved, err := s.repo.Save(ctx, s.schema.WithKey(incoming, key))
	s.record("update", err)
	return saved, err
}

func (s *EntityService[K, E]) Delete(ctx context.Context, key K) error {
	existing, err := s.find(ctx, key)
	if err == nil {
		err = s.repo.Delete(ctx, existing)
	}
	s.record("delete", err)
	return err
}

func (s *EntityService[K, E]) find(ctx context.Context, key K) (E, error) {
	entity, found, err := s.repo.FindByID(ctx, key)
	if err != nil {
		var zero E
		return zero, err
	}
	if !found {
		var zero E
		return zero, &EntityNotFoundError{Type: s.schema.Name, Key: key}
	}
	return entity, nil
}

func (s *EntityService[K, E]) record(operation string, err error) {
	outcome := "ok"
	var notFound *EntityNotFoundError
	switch {
	case errors.As(err, &notFound):
		outcome = "not_found"
	case err != nil:
		outcome = "error"
	}
	metrics.RecordEntityOperation(s.schema.Name, operation, outcome)
}

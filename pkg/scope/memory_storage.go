package scope

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryStorage is an in-memory Storage backend. Entities keep insertion
// order in listings. Intended for tests and single-process deployments.
type MemoryStorage[T Entity] struct {
	mu       sync.RWMutex
	entities map[uuid.UUID]T
	order    []uuid.UUID
}

// NewMemoryStorage creates an empty in-memory backend.
func NewMemoryStorage[T Entity]() *MemoryStorage[T] {
	return &MemoryStorage[T]{
		entities: make(map[uuid.UUID]T),
	}
}

func (s *MemoryStorage[T]) Insert(_ context.Context, entity T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := entity.ID()
	if _, exists := s.entities[id]; !exists {
		s.order = append(s.order, id)
	}
	s.entities[id] = entity
	return nil
}

func (s *MemoryStorage[T]) Find(_ context.Context, id uuid.UUID) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entity, ok := s.entities[id]
	if !ok {
		var zero T
		return zero, ErrEntityNotFound
	}
	return entity, nil
}

func (s *MemoryStorage[T]) Select(_ context.Context, filter Filter) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []T
	for _, id := range s.order {
		entity := s.entities[id]
		if filter.TenantID != nil && entity.TenantID() != *filter.TenantID {
			continue
		}
		result = append(result, entity)
	}
	return result, nil
}

func (s *MemoryStorage[T]) Count(_ context.Context, filter Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, entity := range s.entities {
		if filter.TenantID != nil && entity.TenantID() != *filter.TenantID {
			continue
		}
		n++
	}
	return n, nil
}

func (s *MemoryStorage[T]) Save(_ context.Context, entity T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := entity.ID()
	if _, ok := s.entities[id]; !ok {
		return ErrEntityNotFound
	}
	s.entities[id] = entity
	return nil
}

func (s *MemoryStorage[T]) Remove(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entities[id]; !ok {
		return ErrEntityNotFound
	}
	delete(s.entities, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return nil
}

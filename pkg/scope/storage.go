package scope

import (
	"context"

	"github.com/google/uuid"
)

// Storage is the raw, tenant-unaware persistence backend for one entity
// type. It must never be used directly by business logic: every access
// path goes through Repository, which supplies the tenant filter.
type Storage[T Entity] interface {
	// Insert persists a new entity.
	Insert(ctx context.Context, entity T) error

	// Find retrieves an entity by id regardless of tenant.
	// Returns ErrEntityNotFound if absent.
	Find(ctx context.Context, id uuid.UUID) (T, error)

	// Select lists entities matching the filter.
	Select(ctx context.Context, filter Filter) ([]T, error)

	// Count counts entities matching the filter.
	Count(ctx context.Context, filter Filter) (int64, error)

	// Save persists changes to an existing entity.
	// Returns ErrEntityNotFound if absent.
	Save(ctx context.Context, entity T) error

	// Remove deletes an entity by id.
	// Returns ErrEntityNotFound if absent.
	Remove(ctx context.Context, id uuid.UUID) error
}

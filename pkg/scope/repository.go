package scope

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/openacs/tenantkit/pkg/tenant"
	"github.com/openacs/tenantkit/pkg/violation"
)

// Repository enforces tenant scoping for one tenant-owned entity type.
//
// Reads are restricted to the ambient tenant; creates are stamped with it.
// When no tenant is bound, scoped reads return nothing: the safe default is
// an empty view, never an all-tenants view. Cross-tenant access only
// happens through the named escape hatches ForTenant and AllTenants, so any
// unscoped use is visible in code review.
type Repository[T Entity] struct {
	storage       Storage[T]
	reporter      *violation.Reporter
	allowUnscoped bool
}

// RepositoryOption configures a Repository.
type RepositoryOption[T Entity] func(*Repository[T])

// WithReporter records escape-hatch use through the violation reporter.
func WithReporter[T Entity](reporter *violation.Reporter) RepositoryOption[T] {
	return func(r *Repository[T]) { r.reporter = reporter }
}

// WithAllowUnscopedCreate permits creating entities without a tenant when
// no tenant is bound. Off by default; only legacy import paths need it.
func WithAllowUnscopedCreate[T Entity](allow bool) RepositoryOption[T] {
	return func(r *Repository[T]) { r.allowUnscoped = allow }
}

// NewRepository creates a scope-enforcing repository over the given backend.
func NewRepository[T Entity](storage Storage[T], opts ...RepositoryOption[T]) *Repository[T] {
	if storage == nil {
		panic("scope: storage cannot be nil")
	}

	r := &Repository[T]{storage: storage}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// List returns the ambient tenant's entities.
// With no tenant bound it returns an empty slice.
func (r *Repository[T]) List(ctx context.Context) ([]T, error) {
	tenantID, ok := tenant.IDFromContext(ctx)
	if !ok {
		return nil, nil
	}
	return r.storage.Select(ctx, TenantFilter(tenantID))
}

// Count returns the number of the ambient tenant's entities.
// Used for quota enforcement; zero when no tenant is bound.
func (r *Repository[T]) Count(ctx context.Context) (int64, error) {
	tenantID, ok := tenant.IDFromContext(ctx)
	if !ok {
		return 0, nil
	}
	return r.storage.Count(ctx, TenantFilter(tenantID))
}

// Get retrieves one of the ambient tenant's entities by id.
// Entities of other tenants are indistinguishable from absent ones.
func (r *Repository[T]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	var zero T

	tenantID, ok := tenant.IDFromContext(ctx)
	if !ok {
		return zero, ErrNoTenantInScope
	}

	entity, err := r.storage.Find(ctx, id)
	if err != nil {
		return zero, err
	}

	if entity.TenantID() != tenantID {
		return zero, ErrEntityNotFound
	}

	return entity, nil
}

// Create persists a new entity. An entity without a tenant is stamped with
// the ambient one; an explicitly supplied tenant id is preserved.
func (r *Repository[T]) Create(ctx context.Context, entity T) error {
	if entity.TenantID() == uuid.Nil {
		tenantID, ok := tenant.IDFromContext(ctx)
		if !ok {
			if !r.allowUnscoped {
				return ErrNoTenantInScope
			}
		} else {
			entity.SetTenantID(tenantID)
		}
	}

	return r.storage.Insert(ctx, entity)
}

// Update persists changes to one of the ambient tenant's entities.
// The stored record's tenant is re-checked so a tampered in-memory
// tenant id cannot move an entity across the boundary.
func (r *Repository[T]) Update(ctx context.Context, entity T) error {
	if _, err := r.Get(ctx, entity.ID()); err != nil {
		return err
	}

	if id, _ := tenant.IDFromContext(ctx); entity.TenantID() != id {
		return ErrTenantMismatch
	}

	return r.storage.Save(ctx, entity)
}

// Delete removes one of the ambient tenant's entities by id.
func (r *Repository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return r.storage.Remove(ctx, id)
}

// ForTenant returns a view pinned to an explicit tenant, ignoring the
// ambient context. This is an escape hatch for administrative tooling;
// the explicit id keeps the bypass visible at the call site.
func (r *Repository[T]) ForTenant(id uuid.UUID) *TenantView[T] {
	return &TenantView[T]{storage: r.storage, tenantID: id}
}

// AllTenants returns an unscoped view across every tenant. Each call is
// recorded through the reporter when one is configured, so unscoped
// access leaves an audit trail.
func (r *Repository[T]) AllTenants(ctx context.Context) *UnscopedView[T] {
	if r.reporter != nil {
		var zero T
		r.reporter.Report(ctx, violation.KindUnscopedAccess,
			"all-tenants view opened",
			violation.WithMetadata("entity_type", fmt.Sprintf("%T", zero)))
	}
	return &UnscopedView[T]{storage: r.storage}
}

// TenantView reads and writes entities of one explicit tenant.
type TenantView[T Entity] struct {
	storage  Storage[T]
	tenantID uuid.UUID
}

// List returns the pinned tenant's entities.
func (v *TenantView[T]) List(ctx context.Context) ([]T, error) {
	return v.storage.Select(ctx, TenantFilter(v.tenantID))
}

// Count returns the number of the pinned tenant's entities.
func (v *TenantView[T]) Count(ctx context.Context) (int64, error) {
	return v.storage.Count(ctx, TenantFilter(v.tenantID))
}

// Get retrieves one of the pinned tenant's entities by id.
func (v *TenantView[T]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	var zero T

	entity, err := v.storage.Find(ctx, id)
	if err != nil {
		return zero, err
	}
	if entity.TenantID() != v.tenantID {
		return zero, ErrEntityNotFound
	}
	return entity, nil
}

// Create persists a new entity stamped with the pinned tenant.
func (v *TenantView[T]) Create(ctx context.Context, entity T) error {
	if entity.TenantID() == uuid.Nil {
		entity.SetTenantID(v.tenantID)
	}
	if entity.TenantID() != v.tenantID {
		return ErrTenantMismatch
	}
	return v.storage.Insert(ctx, entity)
}

// Reassign moves an entity to another tenant. This is the only supported
// way to change ownership after creation.
func (v *TenantView[T]) Reassign(ctx context.Context, id uuid.UUID, newTenant uuid.UUID) error {
	entity, err := v.Get(ctx, id)
	if err != nil {
		return err
	}

	entity.SetTenantID(newTenant)
	return v.storage.Save(ctx, entity)
}

// UnscopedView reads entities across all tenants.
// Intentionally read-only: unscoped writes have no legitimate use.
type UnscopedView[T Entity] struct {
	storage Storage[T]
}

// List returns entities of every tenant.
func (v *UnscopedView[T]) List(ctx context.Context) ([]T, error) {
	return v.storage.Select(ctx, Filter{})
}

// Count counts entities across every tenant.
func (v *UnscopedView[T]) Count(ctx context.Context) (int64, error) {
	return v.storage.Count(ctx, Filter{})
}

// Get retrieves an entity by id regardless of tenant.
func (v *UnscopedView[T]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	return v.storage.Find(ctx, id)
}

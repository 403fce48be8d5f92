package scope

import (
	"github.com/google/uuid"
)

// Entity is implemented by every tenant-owned type. Composition over
// mixins: implementing these methods is all it takes to put a type
// under automatic scoping.
type Entity interface {
	// ID returns the entity's primary key.
	ID() uuid.UUID

	// TenantID returns the owning tenant, or uuid.Nil for legacy
	// unscoped records.
	TenantID() uuid.UUID

	// SetTenantID stamps the owning tenant. Called once at creation;
	// ownership changes afterwards only go through explicit
	// administrative reassignment, never through scoping.
	SetTenantID(id uuid.UUID)
}

// Filter narrows backend listings.
type Filter struct {
	// TenantID restricts results to one tenant. Nil means all tenants;
	// only the named escape hatches ever pass nil.
	TenantID *uuid.UUID
}

// TenantFilter builds a filter for a single tenant.
func TenantFilter(id uuid.UUID) Filter {
	return Filter{TenantID: &id}
}

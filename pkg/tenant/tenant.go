package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tenant is the request-scoped snapshot of an isolated customer organization.
// It carries only what enforcement and quota checks need; the full provisioning
// record lives outside this toolkit and is read-only from its perspective.
type Tenant struct {
	ID         uuid.UUID      `json:"id"`
	Slug       string         `json:"slug"`
	Domain     string         `json:"domain,omitempty"`
	Name       string         `json:"name"`
	Active     bool           `json:"active"`
	MaxDevices int            `json:"max_devices"`
	MaxUsers   int            `json:"max_users"`
	Settings   map[string]any `json:"settings,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Provider loads tenant records from a data source.
// Implementations should accept any unique identifier the discovery
// chain can produce: a UUID string, a slug, or a custom domain.
type Provider interface {
	// GetByIdentifier retrieves a tenant by any unique identifier.
	// Returns ErrTenantNotFound if no tenant matches.
	GetByIdentifier(ctx context.Context, identifier string) (*Tenant, error)

	// GetByID retrieves a tenant by its canonical id.
	// Returns ErrTenantNotFound if no tenant matches.
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
}

package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when a tenant cannot be found.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrTenantRequired is returned when discovery is required but no
	// discovery signal resolved a tenant. Discovery fails closed.
	ErrTenantRequired = errors.New("tenant required but not resolved")

	// ErrInactiveTenant is returned when a deactivated tenant resolves.
	ErrInactiveTenant = errors.New("tenant is inactive")

	// ErrInvalidIdentifier is returned when the identifier format is invalid.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")

	// ErrNoTenantInContext is returned when an operation requires a bound
	// tenant but the context carries none.
	ErrNoTenantInContext = errors.New("no tenant in context")
)

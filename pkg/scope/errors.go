package scope

import "errors"

var (
	// ErrEntityNotFound is returned when an entity does not exist or
	// belongs to another tenant. The two cases are deliberately
	// indistinguishable to the caller.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrNoTenantInScope is returned by scoped operations that require
	// a bound tenant when none is present in the context.
	ErrNoTenantInScope = errors.New("no tenant in scope")

	// ErrTenantMismatch is returned when an entity's tenant id does not
	// match the tenant the operation is scoped to.
	ErrTenantMismatch = errors.New("entity tenant mismatch")
)

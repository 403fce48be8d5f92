// Package scope enforces tenant boundaries on persistence access.
//
// Tenant-owned types implement Entity and get automatic scoping through
// Repository: listings are filtered to the tenant bound in the request
// context, lookups of other tenants' records behave as not found, and
// new records are stamped with the ambient tenant. When no tenant is
// bound, reads return nothing rather than everything.
//
//	repo := scope.NewRepository[*Device](storage)
//
//	// Scoped to the tenant in ctx.
//	devices, err := repo.List(ctx)
//
// Cross-tenant access exists only through two named escape hatches, so
// every bypass is explicit at the call site and greppable:
//
//	// Administrative access to one explicit tenant.
//	devices, err := repo.ForTenant(tenantID).List(ctx)
//
//	// Platform-wide access, recorded through the violation reporter.
//	all, err := repo.AllTenants(ctx).List(ctx)
//
// Repository wraps a raw Storage backend. Backends stay tenant-unaware;
// the filter always comes from the repository, never from callers.
package scope

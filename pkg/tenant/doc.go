// Package tenant provides the tenant model, the ambient tenant context and
// request-based tenant discovery for multi-tenant device-management platforms.
//
// The package is built around three concepts:
//
//  1. Context helpers - bind the current tenant to one execution unit
//     (an HTTP request or a background job run) via context.Context
//  2. Resolvers - extract a tenant identifier from HTTP requests
//     (subdomain, header, bearer-token claim, authenticated user)
//  3. Discovery - orchestrates the resolver chain, loads the tenant
//     record through a Provider, caches it and fails closed on
//     deactivated tenants
//
// # Ambient context
//
// The current tenant travels in context.Context, which Go scopes to a single
// call tree. There is deliberately no process-wide "current tenant" variable:
// concurrent requests each carry their own binding and cannot observe each
// other's tenant.
//
//	ctx := tenant.WithTenant(r.Context(), t)
//	...
//	if id, ok := tenant.IDFromContext(ctx); ok {
//		// scoped work
//	}
//
// When no tenant is bound, FromContext returns false. Callers must treat
// that as "no tenant", never as a default tenant.
//
// # Discovery
//
// Resolvers are evaluated in a fixed order and the first non-empty
// identifier wins:
//
//	discovery := tenant.NewDiscovery(
//		tenant.NewCompositeResolver(
//			tenant.NewSubdomainResolver(".acs.example.com"),
//			tenant.NewHeaderResolver(tenant.DefaultHeader),
//			tenant.NewClaimResolver(tenantClaim),
//			tenant.NewUserResolver(homeTenant),
//		),
//		provider,
//		tenant.WithPublicRoutes([]string{"/healthz", "/auth/*"}),
//	)
//
// Routes matched by WithPublicRoutes (health checks, login, public protocol
// endpoints) bypass discovery entirely; everything else that fails to resolve
// is rejected by the isolation pipeline when a tenant is required.
package tenant

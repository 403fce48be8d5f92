// Package isolation binds tenant context to HTTP requests and enforces
// it across sessions, users and access tokens.
//
// Pipeline.Middleware runs the stages in a fixed order on every
// request:
//
//  1. Clear any tenant inherited from the surrounding context.
//  2. Skip enforcement on public routes.
//  3. Resolve the tenant (subdomain, header, token claim, session).
//  4. Bind the tenant to the request context.
//  5. Check the session's login tenant and force logout on hijack.
//  6. Check the session user's home tenant against the binding.
//  7. Validate the bearer token's tenant binding.
//  8. Invoke the handler; the binding dies with the request context.
//
// Denials are uniform: 403 with a generic body for scope violations,
// 401 for bad credentials. Which stage denied a request is visible only
// through the violation reporter, never to the client.
//
//	pipeline := isolation.New(discovery,
//	    isolation.WithSessionManager(sessions),
//	    isolation.WithTokenValidator(validator),
//	    isolation.WithUserProvider(users),
//	    isolation.WithReporter(reporter),
//	)
//
//	r := chi.NewRouter()
//	r.Use(pipeline.Middleware)
//
// Background jobs bind tenants explicitly instead of inheriting them:
//
//	err := isolation.RunWithTenant(ctx, t, func(ctx context.Context) error {
//	    return syncDevices(ctx)
//	})
package isolation

package isolation

import (
	"context"

	"github.com/openacs/tenantkit/pkg/accesstoken"
	"github.com/openacs/tenantkit/pkg/tenant"
)

type claimsContextKey struct{}

func withClaims(ctx context.Context, claims *accesstoken.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// ClaimsFromContext retrieves validated token claims from the context.
func ClaimsFromContext(ctx context.Context) (*accesstoken.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*accesstoken.Claims)
	return claims, ok
}

// RunWithTenant executes fn with the given tenant bound. The binding is
// scoped to the derived context, so background work started from a
// request cannot inherit a stale tenant afterwards.
func RunWithTenant(ctx context.Context, t *tenant.Tenant, fn func(ctx context.Context) error) error {
	return fn(tenant.WithTenant(tenant.WithoutTenant(ctx), t))
}

// RunUnbound executes fn with any tenant binding cleared. Used by
// maintenance work that must not run inside a tenant.
func RunUnbound(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(tenant.WithoutTenant(ctx))
}

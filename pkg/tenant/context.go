package tenant

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// WithTenant binds a tenant to the context. The returned context is the
// ambient tenant slot for exactly one execution unit (one request or one
// job run); it must never be stashed in a process-wide variable or shared
// across concurrently running units.
func WithTenant(ctx context.Context, tenant *Tenant) context.Context {
	return context.WithValue(ctx, contextKey{}, tenant)
}

// WithoutTenant returns a context with any bound tenant removed.
// Used by the isolation pipeline and the job worker to guarantee a unit
// never starts with a tenant inherited from a previous unit.
func WithoutTenant(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, (*Tenant)(nil))
}

// FromContext retrieves the ambient tenant.
// Returns nil, false when no tenant is bound. Callers must treat "unbound"
// as "no tenant", never as a default tenant.
func FromContext(ctx context.Context) (*Tenant, bool) {
	tenant, ok := ctx.Value(contextKey{}).(*Tenant)
	if !ok || tenant == nil {
		return nil, false
	}
	return tenant, true
}

// IDFromContext retrieves just the ambient tenant id.
// Returns zero UUID and false when no tenant is bound.
func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	tenant, ok := FromContext(ctx)
	if !ok {
		return uuid.UUID{}, false
	}
	return tenant.ID, true
}

// IsBound reports whether a tenant is bound to the context.
func IsBound(ctx context.Context) bool {
	_, ok := FromContext(ctx)
	return ok
}

// MustFromContext retrieves the ambient tenant or panics.
// Use only in handlers that are unreachable without a bound tenant.
func MustFromContext(ctx context.Context) *Tenant {
	tenant, ok := FromContext(ctx)
	if !ok {
		panic("tenant: no tenant in context")
	}
	return tenant
}

// LoggerExtractor returns a logger context extractor that annotates every
// log record produced under a bound tenant with its id.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("tenant_id", id.String()), true
		}
		return slog.Attr{}, false
	}
}

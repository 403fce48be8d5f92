package tenant

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// Discovery resolves the tenant a request belongs to.
// It combines an identifier resolver chain with the tenant provider,
// caching loaded records and failing closed on deactivated tenants.
type Discovery struct {
	resolver      Resolver
	provider      Provider
	cache         Cache
	cacheTTL      time.Duration
	requireActive bool
	publicRoutes  []string
}

// DiscoveryOption configures a Discovery.
type DiscoveryOption func(*Discovery)

// WithCache sets a custom cache implementation.
func WithCache(cache Cache) DiscoveryOption {
	return func(d *Discovery) {
		d.cache = cache
	}
}

// WithCacheTTL sets how long loaded tenant records are cached.
func WithCacheTTL(ttl time.Duration) DiscoveryOption {
	return func(d *Discovery) {
		d.cacheTTL = ttl
	}
}

// WithRequireActive controls whether deactivated tenants fail discovery.
// Enabled by default; disabling it is only useful in admin tooling.
func WithRequireActive(require bool) DiscoveryOption {
	return func(d *Discovery) {
		d.requireActive = require
	}
}

// WithPublicRoutes sets path patterns that bypass discovery entirely.
// A pattern ending in "/*" matches the whole subtree; any other pattern
// matches the exact path.
func WithPublicRoutes(patterns []string) DiscoveryOption {
	return func(d *Discovery) {
		d.publicRoutes = patterns
	}
}

// NewDiscovery creates a Discovery over the given resolver chain and provider.
func NewDiscovery(resolver Resolver, provider Provider, opts ...DiscoveryOption) *Discovery {
	d := &Discovery{
		resolver:      resolver,
		provider:      provider,
		cache:         NewInMemoryCache(),
		cacheTTL:      5 * time.Minute,
		requireActive: true,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// NewDiscoveryFromConfig builds a Discovery from environment settings:
// subdomain resolution when a domain suffix is configured, then the
// configured discovery header, with the cache TTL and public routes
// applied. Additional options override the config-derived values.
// Deployments that also resolve from token claims compose the chain
// themselves through NewDiscovery.
func NewDiscoveryFromConfig(cfg Config, provider Provider, opts ...DiscoveryOption) *Discovery {
	header := cfg.Header
	if header == "" {
		header = DefaultHeader
	}

	resolvers := make([]Resolver, 0, 2)
	if cfg.Suffix != "" {
		resolvers = append(resolvers, NewSubdomainResolver(cfg.Suffix))
	}
	resolvers = append(resolvers, NewHeaderResolver(header))

	configOpts := []DiscoveryOption{
		WithPublicRoutes(cfg.PublicRoutes),
	}
	if cfg.CacheTTL > 0 {
		configOpts = append(configOpts, WithCacheTTL(cfg.CacheTTL))
	}

	return NewDiscovery(NewCompositeResolver(resolvers...), provider,
		append(configOpts, opts...)...)
}

// Resolve determines the tenant of the given request.
// Returns nil, nil when no discovery signal is present: the caller decides
// whether an unresolved tenant is acceptable for the route.
func (d *Discovery) Resolve(r *http.Request) (*Tenant, error) {
	identifier, err := d.resolver.Resolve(r)
	if err != nil {
		return nil, err
	}
	if identifier == "" {
		return nil, nil
	}

	if cached, ok := d.cache.Get(r.Context(), identifier); ok {
		if d.requireActive && !cached.Active {
			return nil, ErrInactiveTenant
		}
		return cached, nil
	}

	t, err := d.provider.GetByIdentifier(r.Context(), identifier)
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}

	if d.requireActive && !t.Active {
		return nil, ErrInactiveTenant
	}

	d.cache.Set(r.Context(), identifier, t, d.cacheTTL)

	return t, nil
}

// IsPublicRoute reports whether the request path bypasses discovery
// (health checks, login, public protocol endpoints).
func (d *Discovery) IsPublicRoute(r *http.Request) bool {
	return MatchRoute(d.publicRoutes, r.URL.Path)
}

// MatchRoute reports whether path matches any of the patterns.
// Patterns ending in "/*" match the subtree rooted at the prefix;
// all other patterns match exactly.
func MatchRoute(patterns []string, path string) bool {
	for _, p := range patterns {
		if prefix, ok := strings.CutSuffix(p, "/*"); ok {
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				return true
			}
			continue
		}
		if path == p {
			return true
		}
	}
	return false
}

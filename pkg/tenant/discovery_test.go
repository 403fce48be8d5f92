package tenant_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openacs/tenantkit/pkg/tenant"
)

// fakeProvider serves tenants from a map and counts lookups.
type fakeProvider struct {
	mu      sync.Mutex
	tenants map[string]*tenant.Tenant
	calls   int
}

func newFakeProvider(tenants ...*tenant.Tenant) *fakeProvider {
	p := &fakeProvider{tenants: make(map[string]*tenant.Tenant)}
	for _, t := range tenants {
		p.tenants[t.Slug] = t
		p.tenants[t.ID.String()] = t
		if t.Domain != "" {
			p.tenants[t.Domain] = t
		}
	}
	return p
}

func (p *fakeProvider) GetByIdentifier(ctx context.Context, identifier string) (*tenant.Tenant, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	if t, ok := p.tenants[identifier]; ok {
		return t, nil
	}
	return nil, tenant.ErrTenantNotFound
}

func (p *fakeProvider) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return p.GetByIdentifier(ctx, id.String())
}

func (p *fakeProvider) lookups() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func headerRequest(id string) *http.Request {
	req := httptest.NewRequest("GET", "/devices", nil)
	if id != "" {
		req.Header.Set(tenant.DefaultHeader, id)
	}
	return req
}

func TestDiscoveryResolve(t *testing.T) {
	t.Parallel()

	t.Run("resolves tenant through provider", func(t *testing.T) {
		t.Parallel()

		acme := createTestTenant("acme", true)
		d := tenant.NewDiscovery(tenant.NewHeaderResolver(""), newFakeProvider(acme))

		got, err := d.Resolve(headerRequest("acme"))
		require.NoError(t, err)
		assert.Equal(t, acme, got)
	})

	t.Run("no signal resolves to nil without error", func(t *testing.T) {
		t.Parallel()

		d := tenant.NewDiscovery(tenant.NewHeaderResolver(""), newFakeProvider())

		got, err := d.Resolve(headerRequest(""))
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("unknown identifier fails with ErrTenantNotFound", func(t *testing.T) {
		t.Parallel()

		d := tenant.NewDiscovery(tenant.NewHeaderResolver(""), newFakeProvider())

		_, err := d.Resolve(headerRequest("ghost"))
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})

	t.Run("deactivated tenant fails closed", func(t *testing.T) {
		t.Parallel()

		dormant := createTestTenant("dormant", false)
		d := tenant.NewDiscovery(tenant.NewHeaderResolver(""), newFakeProvider(dormant))

		_, err := d.Resolve(headerRequest("dormant"))
		assert.ErrorIs(t, err, tenant.ErrInactiveTenant)
	})

	t.Run("deactivated tenant allowed when requireActive disabled", func(t *testing.T) {
		t.Parallel()

		dormant := createTestTenant("dormant", false)
		d := tenant.NewDiscovery(tenant.NewHeaderResolver(""), newFakeProvider(dormant),
			tenant.WithRequireActive(false))

		got, err := d.Resolve(headerRequest("dormant"))
		require.NoError(t, err)
		assert.Equal(t, dormant, got)
	})

	t.Run("second resolve served from cache", func(t *testing.T) {
		t.Parallel()

		acme := createTestTenant("acme", true)
		provider := newFakeProvider(acme)
		d := tenant.NewDiscovery(tenant.NewHeaderResolver(""), provider)

		_, err := d.Resolve(headerRequest("acme"))
		require.NoError(t, err)
		_, err = d.Resolve(headerRequest("acme"))
		require.NoError(t, err)

		assert.Equal(t, 1, provider.lookups())
	})

	t.Run("cached deactivated tenant still fails closed", func(t *testing.T) {
		t.Parallel()

		acme := createTestTenant("acme", true)
		provider := newFakeProvider(acme)
		d := tenant.NewDiscovery(tenant.NewHeaderResolver(""), provider)

		_, err := d.Resolve(headerRequest("acme"))
		require.NoError(t, err)

		// Deactivation flips the cached snapshot as well: the cache
		// stores the pointer, and requireActive is re-checked per hit.
		acme.Active = false

		_, err = d.Resolve(headerRequest("acme"))
		assert.ErrorIs(t, err, tenant.ErrInactiveTenant)
	})
}

func TestIsPublicRoute(t *testing.T) {
	t.Parallel()

	d := tenant.NewDiscovery(tenant.NewHeaderResolver(""), newFakeProvider(),
		tenant.WithPublicRoutes([]string{"/healthz", "/auth/*", "/acs/inform"}))

	tests := []struct {
		path   string
		public bool
	}{
		{"/healthz", true},
		{"/healthz/deep", false},
		{"/auth", true},
		{"/auth/login", true},
		{"/auth/password/reset", true},
		{"/acs/inform", true},
		{"/devices", false},
		{"/", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest("GET", tt.path, nil)
			assert.Equal(t, tt.public, d.IsPublicRoute(req))
		})
	}
}

func TestNewDiscoveryFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("resolves via configured header", func(t *testing.T) {
		t.Parallel()

		acme := createTestTenant("acme", true)
		d := tenant.NewDiscoveryFromConfig(tenant.Config{
			Header: "X-ACS-Tenant",
		}, newFakeProvider(acme))

		req := httptest.NewRequest("GET", "/devices", nil)
		req.Header.Set("X-ACS-Tenant", "acme")

		got, err := d.Resolve(req)
		require.NoError(t, err)
		assert.Equal(t, acme, got)
	})

	t.Run("empty header falls back to default", func(t *testing.T) {
		t.Parallel()

		acme := createTestTenant("acme", true)
		d := tenant.NewDiscoveryFromConfig(tenant.Config{}, newFakeProvider(acme))

		got, err := d.Resolve(headerRequest("acme"))
		require.NoError(t, err)
		assert.Equal(t, acme, got)
	})

	t.Run("suffix enables subdomain resolution first", func(t *testing.T) {
		t.Parallel()

		acme := createTestTenant("acme", true)
		d := tenant.NewDiscoveryFromConfig(tenant.Config{
			Suffix: ".acs.example.com",
		}, newFakeProvider(acme))

		req := httptest.NewRequest("GET", "/devices", nil)
		req.Host = "acme.acs.example.com"

		got, err := d.Resolve(req)
		require.NoError(t, err)
		assert.Equal(t, acme, got)
	})

	t.Run("public routes bypass discovery", func(t *testing.T) {
		t.Parallel()

		d := tenant.NewDiscoveryFromConfig(tenant.Config{
			PublicRoutes: []string{"/healthz", "/acs/*"},
		}, newFakeProvider())

		assert.True(t, d.IsPublicRoute(httptest.NewRequest("GET", "/healthz", nil)))
		assert.True(t, d.IsPublicRoute(httptest.NewRequest("GET", "/acs/inform", nil)))
		assert.False(t, d.IsPublicRoute(httptest.NewRequest("GET", "/devices", nil)))
	})

	t.Run("cache ttl bounds provider lookups", func(t *testing.T) {
		t.Parallel()

		acme := createTestTenant("acme", true)
		provider := newFakeProvider(acme)
		d := tenant.NewDiscoveryFromConfig(tenant.Config{
			CacheTTL: time.Minute,
		}, provider)

		for range 3 {
			_, err := d.Resolve(headerRequest("acme"))
			require.NoError(t, err)
		}
		assert.Equal(t, 1, provider.lookups())
	})
}

func TestMatchRoute(t *testing.T) {
	t.Parallel()

	assert.True(t, tenant.MatchRoute([]string{"/a/*"}, "/a/b/c"))
	assert.True(t, tenant.MatchRoute([]string{"/a/*"}, "/a"))
	assert.False(t, tenant.MatchRoute([]string{"/a/*"}, "/ab"))
	assert.False(t, tenant.MatchRoute(nil, "/a"))
}

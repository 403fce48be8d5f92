package accesstoken_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openacs/tenantkit/pkg/accesstoken"
	"github.com/openacs/tenantkit/pkg/identity"
	"github.com/openacs/tenantkit/pkg/jwt"
	"github.com/openacs/tenantkit/pkg/tenant"
	"github.com/openacs/tenantkit/pkg/violation"
)

type fakeUsers struct {
	users map[uuid.UUID]*identity.User
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	return user, nil
}

func newJWT(t *testing.T) *jwt.Service {
	t.Helper()

	svc, err := jwt.NewFromString("test-signing-key")
	require.NoError(t, err)
	return svc
}

func tenantCtx(id uuid.UUID) context.Context {
	return tenant.WithTenant(context.Background(), &tenant.Tenant{ID: id, Active: true})
}

func newTestReporter(t *testing.T) (*violation.Reporter, *violation.MemoryStorage) {
	t.Helper()

	storage := violation.NewMemoryStorage()
	return violation.NewReporter(storage), storage
}

func TestIssuer(t *testing.T) {
	t.Parallel()

	t.Run("binds ambient tenant", func(t *testing.T) {
		t.Parallel()

		tenantA := uuid.New()
		userID := uuid.New()
		svc := newJWT(t)
		issuer := accesstoken.NewIssuer(svc, accesstoken.WithIssuerName("acs"))

		token, err := issuer.Issue(tenantCtx(tenantA), userID)
		require.NoError(t, err)

		var claims accesstoken.Claims
		require.NoError(t, svc.Parse(token, &claims))
		assert.Equal(t, tenantA.String(), claims.TenantID)
		assert.Equal(t, userID.String(), claims.Subject)
		assert.Equal(t, "acs", claims.Issuer)
	})

	t.Run("unbound outside tenant context", func(t *testing.T) {
		t.Parallel()

		svc := newJWT(t)
		issuer := accesstoken.NewIssuer(svc)

		token, err := issuer.Issue(context.Background(), uuid.New())
		require.NoError(t, err)

		var claims accesstoken.Claims
		require.NoError(t, svc.Parse(token, &claims))
		assert.Empty(t, claims.TenantID)
	})

	t.Run("explicit tenant binding", func(t *testing.T) {
		t.Parallel()

		tenantA := uuid.New()
		svc := newJWT(t)
		issuer := accesstoken.NewIssuer(svc)

		token, err := issuer.IssueForTenant(uuid.New(), tenantA)
		require.NoError(t, err)

		var claims accesstoken.Claims
		require.NoError(t, svc.Parse(token, &claims))
		assert.Equal(t, tenantA.String(), claims.TenantID)
	})
}

func TestValidator_Validate(t *testing.T) {
	t.Parallel()

	t.Run("accepts token in its tenant", func(t *testing.T) {
		t.Parallel()

		tenantA := uuid.New()
		userID := uuid.New()
		svc := newJWT(t)
		issuer := accesstoken.NewIssuer(svc)
		validator := accesstoken.NewValidator(svc)

		token, err := issuer.IssueForTenant(userID, tenantA)
		require.NoError(t, err)

		claims, err := validator.Validate(tenantCtx(tenantA), token)
		require.NoError(t, err)
		assert.Equal(t, userID.String(), claims.Subject)
	})

	t.Run("rejects token outside its tenant", func(t *testing.T) {
		t.Parallel()

		tenantA := uuid.New()
		tenantB := uuid.New()
		reporter, violations := newTestReporter(t)

		svc := newJWT(t)
		issuer := accesstoken.NewIssuer(svc)
		validator := accesstoken.NewValidator(svc, accesstoken.WithValidatorReporter(reporter))

		token, err := issuer.IssueForTenant(uuid.New(), tenantA)
		require.NoError(t, err)

		_, err = validator.Validate(tenantCtx(tenantB), token)
		require.ErrorIs(t, err, accesstoken.ErrTokenScopeViolation)

		records, err := violations.Query(context.Background(), violation.Criteria{
			Kind: violation.KindTokenScopeViolation,
		})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, tenantA.String(), records[0].ExpectedTenant)
		assert.Equal(t, tenantB.String(), records[0].ActualTenant)
	})

	t.Run("rejects unbound token in tenant request", func(t *testing.T) {
		t.Parallel()

		reporter, violations := newTestReporter(t)
		svc := newJWT(t)
		issuer := accesstoken.NewIssuer(svc)
		validator := accesstoken.NewValidator(svc, accesstoken.WithValidatorReporter(reporter))

		token, err := issuer.Issue(context.Background(), uuid.New())
		require.NoError(t, err)

		_, err = validator.Validate(tenantCtx(uuid.New()), token)
		require.ErrorIs(t, err, accesstoken.ErrTokenScopeViolation)

		records, err := violations.Query(context.Background(), violation.Criteria{
			Kind: violation.KindTokenScopeViolation,
		})
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("allows unbound token when configured", func(t *testing.T) {
		t.Parallel()

		svc := newJWT(t)
		issuer := accesstoken.NewIssuer(svc)
		validator := accesstoken.NewValidator(svc, accesstoken.WithAllowUnbound(true))

		token, err := issuer.Issue(context.Background(), uuid.New())
		require.NoError(t, err)

		_, err = validator.Validate(tenantCtx(uuid.New()), token)
		require.NoError(t, err)
	})

	t.Run("rejects token whose user moved tenants", func(t *testing.T) {
		t.Parallel()

		tenantA := uuid.New()
		tenantB := uuid.New()
		userID := uuid.New()
		reporter, violations := newTestReporter(t)

		users := &fakeUsers{users: map[uuid.UUID]*identity.User{
			userID: {ID: userID, TenantID: tenantB, Active: true},
		}}

		svc := newJWT(t)
		issuer := accesstoken.NewIssuer(svc)
		validator := accesstoken.NewValidator(svc,
			accesstoken.WithValidatorReporter(reporter),
			accesstoken.WithUserProvider(users))

		// Token issued before the user moved from tenant A to B.
		token, err := issuer.IssueForTenant(userID, tenantA)
		require.NoError(t, err)

		_, err = validator.Validate(tenantCtx(tenantA), token)
		require.ErrorIs(t, err, accesstoken.ErrTokenUserMismatch)

		records, err := violations.Query(context.Background(), violation.Criteria{
			Kind: violation.KindTokenUserMismatch,
		})
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("rejects unknown subject", func(t *testing.T) {
		t.Parallel()

		tenantA := uuid.New()
		svc := newJWT(t)
		issuer := accesstoken.NewIssuer(svc)
		validator := accesstoken.NewValidator(svc,
			accesstoken.WithUserProvider(&fakeUsers{users: map[uuid.UUID]*identity.User{}}))

		token, err := issuer.IssueForTenant(uuid.New(), tenantA)
		require.NoError(t, err)

		_, err = validator.Validate(tenantCtx(tenantA), token)
		require.ErrorIs(t, err, accesstoken.ErrInvalidToken)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		t.Parallel()

		svc := newJWT(t)
		issuer := accesstoken.NewIssuer(svc, accesstoken.WithTTL(-time.Minute))
		validator := accesstoken.NewValidator(svc)

		token, err := issuer.IssueForTenant(uuid.New(), uuid.New())
		require.NoError(t, err)

		_, err = validator.Validate(context.Background(), token)
		require.ErrorIs(t, err, accesstoken.ErrTokenExpired)
	})

	t.Run("requires tenant when configured", func(t *testing.T) {
		t.Parallel()

		svc := newJWT(t)
		issuer := accesstoken.NewIssuer(svc)
		validator := accesstoken.NewValidator(svc, accesstoken.WithRequireTenant(true))

		token, err := issuer.IssueForTenant(uuid.New(), uuid.New())
		require.NoError(t, err)

		_, err = validator.Validate(context.Background(), token)
		require.ErrorIs(t, err, accesstoken.ErrTenantRequired)
	})
}

func TestFromRequest(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := accesstoken.FromRequest(r)
	assert.False(t, ok)

	r.Header.Set("Authorization", "Bearer abc.def.ghi")
	token, ok := accesstoken.FromRequest(r)
	require.True(t, ok)
	assert.Equal(t, "abc.def.ghi", token)

	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	_, ok = accesstoken.FromRequest(r)
	assert.False(t, ok)
}

func TestPeekTenantClaim(t *testing.T) {
	t.Parallel()

	tenantA := uuid.New()
	svc := newJWT(t)
	issuer := accesstoken.NewIssuer(svc)

	token, err := issuer.IssueForTenant(uuid.New(), tenantA)
	require.NoError(t, err)

	claim, err := accesstoken.PeekTenantClaim(token)
	require.NoError(t, err)
	assert.Equal(t, tenantA.String(), claim)

	claim, err = accesstoken.PeekTenantClaim("garbage")
	require.NoError(t, err)
	assert.Empty(t, claim)
}

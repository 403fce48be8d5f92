package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openacs/tenantkit/pkg/session"
	"github.com/openacs/tenantkit/pkg/tenant"
	"github.com/openacs/tenantkit/pkg/violation"
)

func tenantCtx(id uuid.UUID) context.Context {
	return tenant.WithTenant(context.Background(), &tenant.Tenant{ID: id, Active: true})
}

func newTestReporter(t *testing.T) (*violation.Reporter, *violation.MemoryStorage) {
	t.Helper()

	storage := violation.NewMemoryStorage()
	return violation.NewReporter(storage), storage
}

func TestTenantStore_Create(t *testing.T) {
	t.Parallel()

	t.Run("stamps ambient tenant", func(t *testing.T) {
		t.Parallel()

		tenantA := uuid.New()
		store := session.NewTenantStore(session.NewMemoryStore(0))

		sess := session.NewSession("tok-1", nil, nil, time.Hour)
		require.NoError(t, store.Create(tenantCtx(tenantA), sess))

		require.NotNil(t, sess.TenantID)
		assert.Equal(t, tenantA, *sess.TenantID)
	})

	t.Run("keeps explicit tenant", func(t *testing.T) {
		t.Parallel()

		tenantA := uuid.New()
		tenantB := uuid.New()
		store := session.NewTenantStore(session.NewMemoryStore(0))

		sess := session.NewSession("tok-1", nil, &tenantB, time.Hour)
		require.NoError(t, store.Create(tenantCtx(tenantA), sess))

		assert.Equal(t, tenantB, *sess.TenantID)
	})

	t.Run("leaves session unstamped without tenant", func(t *testing.T) {
		t.Parallel()

		store := session.NewTenantStore(session.NewMemoryStore(0))

		sess := session.NewSession("tok-1", nil, nil, time.Hour)
		require.NoError(t, store.Create(context.Background(), sess))

		assert.Nil(t, sess.TenantID)
	})
}

func TestTenantStore_Get(t *testing.T) {
	t.Parallel()

	t.Run("returns session within its tenant", func(t *testing.T) {
		t.Parallel()

		tenantA := uuid.New()
		store := session.NewTenantStore(session.NewMemoryStore(0))

		ctx := tenantCtx(tenantA)
		require.NoError(t, store.Create(ctx, session.NewSession("tok-1", nil, nil, time.Hour)))

		sess, err := store.Get(ctx, "tok-1")
		require.NoError(t, err)
		assert.True(t, sess.BelongsTo(tenantA))
	})

	t.Run("cross-tenant session surfaces as not found", func(t *testing.T) {
		t.Parallel()

		tenantA := uuid.New()
		tenantB := uuid.New()
		reporter, violations := newTestReporter(t)

		store := session.NewTenantStore(session.NewMemoryStore(0),
			session.WithViolationReporter(reporter))

		require.NoError(t, store.Create(tenantCtx(tenantA), session.NewSession("tok-1", nil, nil, time.Hour)))

		_, err := store.Get(tenantCtx(tenantB), "tok-1")
		require.ErrorIs(t, err, session.ErrSessionNotFound)

		records, err := violations.Query(context.Background(), violation.Criteria{
			Kind: violation.KindCrossTenantSessionAccess,
		})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, tenantA.String(), records[0].ExpectedTenant)
		assert.Equal(t, tenantB.String(), records[0].ActualTenant)
	})

	t.Run("stamped session invisible outside tenant requests", func(t *testing.T) {
		t.Parallel()

		tenantA := uuid.New()
		store := session.NewTenantStore(session.NewMemoryStore(0))

		require.NoError(t, store.Create(tenantCtx(tenantA), session.NewSession("tok-1", nil, nil, time.Hour)))

		_, err := store.Get(context.Background(), "tok-1")
		require.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("unstamped session allowed by default", func(t *testing.T) {
		t.Parallel()

		tenantA := uuid.New()
		store := session.NewTenantStore(session.NewMemoryStore(0))

		require.NoError(t, store.Create(context.Background(), session.NewSession("tok-1", nil, nil, time.Hour)))

		_, err := store.Get(tenantCtx(tenantA), "tok-1")
		require.NoError(t, err)
	})

	t.Run("strict mode rejects unstamped session", func(t *testing.T) {
		t.Parallel()

		tenantA := uuid.New()
		reporter, violations := newTestReporter(t)

		store := session.NewTenantStore(session.NewMemoryStore(0),
			session.WithViolationReporter(reporter),
			session.WithStrictTenantSessions(true))

		require.NoError(t, store.Create(context.Background(), session.NewSession("tok-1", nil, nil, time.Hour)))

		_, err := store.Get(tenantCtx(tenantA), "tok-1")
		require.ErrorIs(t, err, session.ErrSessionNotFound)

		records, err := violations.Query(context.Background(), violation.Criteria{
			Kind: violation.KindNullTenantSessionRejected,
		})
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("strict mode still serves unstamped sessions on public routes", func(t *testing.T) {
		t.Parallel()

		store := session.NewTenantStore(session.NewMemoryStore(0),
			session.WithStrictTenantSessions(true))

		require.NoError(t, store.Create(context.Background(), session.NewSession("tok-1", nil, nil, time.Hour)))

		_, err := store.Get(context.Background(), "tok-1")
		require.NoError(t, err)
	})
}

func TestTenantStore_DeleteByTenantID(t *testing.T) {
	t.Parallel()

	tenantA := uuid.New()
	tenantB := uuid.New()
	store := session.NewTenantStore(session.NewMemoryStore(0))

	require.NoError(t, store.Create(tenantCtx(tenantA), session.NewSession("tok-a", nil, nil, time.Hour)))
	require.NoError(t, store.Create(tenantCtx(tenantB), session.NewSession("tok-b", nil, nil, time.Hour)))

	require.NoError(t, store.DeleteByTenantID(context.Background(), tenantA))

	_, err := store.Get(tenantCtx(tenantA), "tok-a")
	require.ErrorIs(t, err, session.ErrSessionNotFound)

	_, err = store.Get(tenantCtx(tenantB), "tok-b")
	require.NoError(t, err)
}

func TestTenantStore_Unfiltered(t *testing.T) {
	t.Parallel()

	tenantA := uuid.New()
	store := session.NewTenantStore(session.NewMemoryStore(0))

	require.NoError(t, store.Create(tenantCtx(tenantA), session.NewSession("tok-1", nil, nil, time.Hour)))

	// The filtered view hides the session outside its tenant; the raw
	// view is for checks that must see it regardless.
	_, err := store.Get(context.Background(), "tok-1")
	require.ErrorIs(t, err, session.ErrSessionNotFound)

	sess, err := store.Unfiltered().Get(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", sess.Token)
}

func TestNewTenantStoreFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("strict mode follows config", func(t *testing.T) {
		t.Parallel()

		tenantA := uuid.New()
		store := session.NewTenantStoreFromConfig(session.NewMemoryStore(0), tenant.Config{
			RequireSessionTenant: true,
		})

		require.NoError(t, store.Create(context.Background(), session.NewSession("tok-1", nil, nil, time.Hour)))

		_, err := store.Get(tenantCtx(tenantA), "tok-1")
		require.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("lenient by default", func(t *testing.T) {
		t.Parallel()

		tenantA := uuid.New()
		store := session.NewTenantStoreFromConfig(session.NewMemoryStore(0), tenant.Config{})

		require.NoError(t, store.Create(context.Background(), session.NewSession("tok-1", nil, nil, time.Hour)))

		_, err := store.Get(tenantCtx(tenantA), "tok-1")
		require.NoError(t, err)
	})

	t.Run("later options override config", func(t *testing.T) {
		t.Parallel()

		tenantA := uuid.New()
		store := session.NewTenantStoreFromConfig(session.NewMemoryStore(0), tenant.Config{
			RequireSessionTenant: true,
		}, session.WithStrictTenantSessions(false))

		require.NoError(t, store.Create(context.Background(), session.NewSession("tok-1", nil, nil, time.Hour)))

		_, err := store.Get(tenantCtx(tenantA), "tok-1")
		require.NoError(t, err)
	})
}

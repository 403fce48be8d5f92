package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/openacs/tenantkit/pkg/tenant"
	"github.com/openacs/tenantkit/pkg/violation"
)

// TenantStore wraps a Store and enforces tenant stamping on every
// lookup. A session stamped with tenant A presented inside tenant B is
// reported as a cross-tenant session access and surfaces as not found,
// so callers cannot distinguish it from an absent session.
type TenantStore struct {
	inner    Store
	reporter *violation.Reporter
	strict   bool
}

// TenantStoreOption configures a TenantStore.
type TenantStoreOption func(*TenantStore)

// WithViolationReporter records cross-tenant session accesses.
func WithViolationReporter(reporter *violation.Reporter) TenantStoreOption {
	return func(s *TenantStore) { s.reporter = reporter }
}

// WithStrictTenantSessions rejects unstamped sessions inside tenant
// requests. Off by default so sessions created before stamping was
// introduced keep working.
func WithStrictTenantSessions(strict bool) TenantStoreOption {
	return func(s *TenantStore) { s.strict = strict }
}

// NewTenantStore wraps a store with tenant enforcement.
func NewTenantStore(inner Store, opts ...TenantStoreOption) *TenantStore {
	if inner == nil {
		panic("session: inner store cannot be nil")
	}

	s := &TenantStore{inner: inner}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewTenantStoreFromConfig wraps a store with tenant enforcement
// governed by the tenancy settings: RequireSessionTenant turns on
// strict mode, rejecting unstamped sessions inside tenant requests.
func NewTenantStoreFromConfig(inner Store, cfg tenant.Config, opts ...TenantStoreOption) *TenantStore {
	configOpts := []TenantStoreOption{
		WithStrictTenantSessions(cfg.RequireSessionTenant),
	}
	return NewTenantStore(inner, append(configOpts, opts...)...)
}

// Unfiltered returns the wrapped store. The Manager's hijack check
// reads through it: remediation has to see cross-tenant sessions that
// Get would filter to not-found.
func (s *TenantStore) Unfiltered() Store {
	return s.inner
}

// Create stamps the session with the ambient tenant before storing it.
// A session created with an explicit tenant keeps it.
func (s *TenantStore) Create(ctx context.Context, session *Session) error {
	if session != nil && session.TenantID == nil {
		if id, ok := tenant.IDFromContext(ctx); ok {
			session.TenantID = &id
		}
	}
	return s.inner.Create(ctx, session)
}

// Get retrieves a session by token and checks its tenant stamp against
// the ambient tenant.
func (s *TenantStore) Get(ctx context.Context, token string) (*Session, error) {
	session, err := s.inner.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	ambient, bound := tenant.IDFromContext(ctx)

	switch {
	case session.HasTenant() && bound && *session.TenantID == ambient:
		return session, nil

	case session.HasTenant() && bound:
		s.report(ctx, violation.KindCrossTenantSessionAccess,
			"session presented outside its tenant", session, ambient)
		return nil, ErrSessionNotFound

	case session.HasTenant():
		// Stamped sessions are invisible outside tenant requests.
		return nil, ErrSessionNotFound

	case bound && s.strict:
		s.report(ctx, violation.KindNullTenantSessionRejected,
			"unstamped session rejected in strict mode", session, ambient)
		return nil, ErrSessionNotFound

	default:
		return session, nil
	}
}

func (s *TenantStore) Update(ctx context.Context, session *Session) error {
	return s.inner.Update(ctx, session)
}

func (s *TenantStore) UpdateActivity(ctx context.Context, token string, lastActivity time.Time) error {
	return s.inner.UpdateActivity(ctx, token, lastActivity)
}

func (s *TenantStore) Delete(ctx context.Context, token string) error {
	return s.inner.Delete(ctx, token)
}

func (s *TenantStore) DeleteExpired(ctx context.Context) error {
	return s.inner.DeleteExpired(ctx)
}

// DeleteByUserID removes all sessions for a user when the inner store
// supports it.
func (s *TenantStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	if cleanup, ok := s.inner.(StoreWithCleanup); ok {
		return cleanup.DeleteByUserID(ctx, userID)
	}
	return nil
}

// DeleteByTenantID removes all sessions stamped with a tenant when the
// inner store supports it.
func (s *TenantStore) DeleteByTenantID(ctx context.Context, tenantID uuid.UUID) error {
	if cleanup, ok := s.inner.(StoreWithCleanup); ok {
		return cleanup.DeleteByTenantID(ctx, tenantID)
	}
	return nil
}

func (s *TenantStore) report(ctx context.Context, kind violation.Kind, description string, session *Session, ambient uuid.UUID) {
	if s.reporter == nil {
		return
	}

	opts := []violation.RecordOption{
		violation.WithActualTenant(ambient),
		violation.WithMetadata("session_id", session.ID.String()),
	}
	if session.TenantID != nil {
		opts = append(opts, violation.WithExpectedTenant(*session.TenantID))
	}
	if session.UserID != nil {
		opts = append(opts, violation.WithActorUserID(session.UserID.String()))
	}

	s.reporter.Report(ctx, kind, description, opts...)
}

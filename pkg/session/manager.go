package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/openacs/tenantkit/pkg/clientip"
	"github.com/openacs/tenantkit/pkg/cookie"
	"github.com/openacs/tenantkit/pkg/tenant"
	"github.com/openacs/tenantkit/pkg/violation"
)

// FingerprintFunc generates a device fingerprint from the request.
type FingerprintFunc func(r *http.Request) string

// Manager handles the session lifecycle. Sessions it creates are
// stamped with the tenant bound in the request context; authentication
// additionally records the login tenant so hijacked sessions can be
// detected and force-logged-out.
type Manager struct {
	store           Store
	transport       Transport
	config          Config
	fingerprintFunc FingerprintFunc
	reporter        *violation.Reporter
	cookieManager   *cookie.Manager
	cookieOptions   []cookie.Option
	activityChan    chan activityUpdate
	done            chan struct{}
}

type activityUpdate struct {
	token string
	time  time.Time
}

// New creates a new session manager with the given options.
func New(opts ...Option) *Manager {
	m := &Manager{
		config:       DefaultConfig(),
		activityChan: make(chan activityUpdate, 1000),
		done:         make(chan struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		m.store = NewMemoryStore(m.config.CleanupInterval)
	}

	if m.transport == nil {
		if m.cookieManager == nil {
			// Fail fast on misconfiguration instead of serving unsigned cookies.
			panic("session: cookie manager is required when using default cookie transport")
		}
		m.transport = NewCookieTransport(m.cookieManager, m.config.CookieName,
			append([]cookie.Option{cookie.WithSecure(m.config.SecureCookies)}, m.cookieOptions...)...)
	}

	go m.activityWorker()

	return m
}

// Ensure creates or retrieves a session. A session that fails tenant
// validation is replaced by a fresh anonymous one.
func (m *Manager) Ensure(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Session, error) {
	session, err := m.Get(ctx, r)
	if err == nil {
		if m.shouldUpdateActivity(session) {
			m.queueActivityUpdate(session.Token)
		}
		return session, nil
	}
	_ = m.transport.ClearToken(w)

	session, err = m.createSession(ctx, nil, r)
	if err != nil {
		return nil, err
	}

	idle, _ := m.config.GetTimeouts(false)
	if err := m.transport.SetToken(w, session.Token, idle); err != nil {
		_ = m.store.Delete(ctx, session.Token)
		return nil, err
	}

	return session, nil
}

// Get retrieves an existing session. Tenant enforcement happens in the
// store chain, so a cross-tenant session surfaces as not found here.
func (m *Manager) Get(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := m.transport.GetToken(r)
	if err != nil {
		return nil, err
	}

	session, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := m.validate(session, r); err != nil {
		return nil, err
	}

	return session, nil
}

// Authenticate upgrades an anonymous session to authenticated. The
// token is rotated and the ambient tenant is recorded as the login
// tenant.
func (m *Manager) Authenticate(ctx context.Context, w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
	loginTenant := tenantPtr(ctx)

	session, err := m.Get(ctx, r)
	if err != nil {
		session, err = m.createSession(ctx, &userID, r)
		if err != nil {
			return err
		}
		session.LoginTenantID = loginTenant
		if err := m.store.Update(ctx, session); err != nil {
			return err
		}
	} else {
		session.UserID = &userID
		session.LoginTenantID = loginTenant

		newToken, err := generateToken()
		if err != nil {
			return err
		}

		_ = m.store.Delete(ctx, session.Token)

		session.Token = newToken
		idle, max := m.config.GetTimeouts(true)
		session.ExpiresAt = m.calculateExpiry(session.CreatedAt, time.Now(), idle, max)
		session.Touch()

		if err := m.store.Create(ctx, session); err != nil {
			return err
		}
	}

	idle, _ := m.config.GetTimeouts(true)
	return m.transport.SetToken(w, session.Token, idle)
}

// ValidateLoginTenant checks that an authenticated session is used in
// the tenant it logged into. On mismatch the session is destroyed, the
// incident is reported, and ErrSessionHijacked is returned. The caller
// should treat the request as unauthenticated.
//
// The read deliberately bypasses the TenantStore filter: a session
// carried into another tenant is exactly what this check must see, and
// the filter would hide it as not-found before remediation could run.
func (m *Manager) ValidateLoginTenant(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	token, err := m.transport.GetToken(r)
	if err != nil {
		return nil
	}

	session, err := m.validationStore().Get(ctx, token)
	if err != nil || session.IsExpired() {
		return nil
	}

	if !session.IsAuthenticated() || session.LoginTenantID == nil {
		return nil
	}

	ambient, bound := tenant.IDFromContext(ctx)
	if bound && *session.LoginTenantID == ambient {
		return nil
	}

	_ = m.store.Delete(ctx, session.Token)
	_ = m.transport.ClearToken(w)
	if cleanup, ok := m.store.(interface {
		DeleteByUserID(ctx context.Context, userID uuid.UUID) error
	}); ok {
		_ = cleanup.DeleteByUserID(ctx, *session.UserID)
	}

	if m.reporter != nil {
		opts := []violation.RecordOption{
			violation.WithExpectedTenant(*session.LoginTenantID),
			violation.WithActorUserID(session.UserID.String()),
			violation.WithMetadata("session_id", session.ID.String()),
			violation.WithMetadata("remediation", "forced_logout"),
		}
		if bound {
			opts = append(opts, violation.WithActualTenant(ambient))
		}
		m.reporter.Report(ctx, violation.KindSessionHijackSuspected,
			"authenticated session used outside its login tenant", opts...)
	}

	return ErrSessionHijacked
}

// Destroy deletes the session.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	token, err := m.transport.GetToken(r)
	if err == nil && token != "" {
		_ = m.store.Delete(ctx, token)
	}

	return m.transport.ClearToken(w)
}

// Set stores a value in the session.
func (m *Manager) Set(ctx context.Context, w http.ResponseWriter, r *http.Request, key string, value any) error {
	session, err := m.Ensure(ctx, w, r)
	if err != nil {
		return err
	}

	session.Set(key, value)
	return m.store.Update(ctx, session)
}

// GetValue retrieves a value from the session.
func (m *Manager) GetValue(ctx context.Context, r *http.Request, key string) (any, bool) {
	session, err := m.Get(ctx, r)
	if err != nil {
		return nil, false
	}

	return session.Get(key)
}

// Refresh updates the session expiry.
func (m *Manager) Refresh(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	session, err := m.Get(ctx, r)
	if err != nil {
		return err
	}

	idle, max := m.config.GetTimeouts(session.IsAuthenticated())
	session.ExpiresAt = m.calculateExpiry(session.CreatedAt, time.Now(), idle, max)
	session.Touch()

	if err := m.store.Update(ctx, session); err != nil {
		return err
	}

	return m.transport.SetToken(w, session.Token, idle)
}

func (m *Manager) createSession(ctx context.Context, userID *uuid.UUID, r *http.Request) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	idle, max := m.config.GetTimeouts(userID != nil)
	now := time.Now()

	session := NewSession(token, userID, tenantPtr(ctx), m.calculateExpiry(now, now, idle, max).Sub(now))
	if r != nil {
		session.IP = clientip.GetIP(r)
		session.UserAgent = r.UserAgent()
		if m.fingerprintFunc != nil {
			session.Fingerprint = m.fingerprintFunc(r)
		}
	}

	if err := m.store.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// validate checks expiry and, when fingerprinting is configured, that
// the request still matches the device the session was created on.
func (m *Manager) validate(session *Session, r *http.Request) error {
	if session.IsExpired() {
		return ErrSessionExpired
	}

	if m.fingerprintFunc != nil && session.Fingerprint != "" && r != nil {
		if !session.ValidateFingerprint(m.fingerprintFunc(r)) {
			return ErrInvalidSession
		}
	}

	return nil
}

// validationStore returns the raw store for the manager's own checks,
// unwrapping a filtering decorator when one is configured.
func (m *Manager) validationStore() Store {
	if u, ok := m.store.(interface{ Unfiltered() Store }); ok {
		return u.Unfiltered()
	}
	return m.store
}

func (m *Manager) shouldUpdateActivity(session *Session) bool {
	return time.Since(session.LastActivityAt) >= m.config.ActivityUpdateThreshold
}

func (m *Manager) queueActivityUpdate(token string) {
	select {
	case m.activityChan <- activityUpdate{token: token, time: time.Now()}:
	default:
		// Channel full, drop the update rather than block the request.
	}
}

func (m *Manager) activityWorker() {
	for {
		select {
		case update := <-m.activityChan:
			_ = m.store.UpdateActivity(context.Background(), update.token, update.time)
		case <-m.done:
			for {
				select {
				case update := <-m.activityChan:
					_ = m.store.UpdateActivity(context.Background(), update.token, update.time)
				default:
					return
				}
			}
		}
	}
}

// Close gracefully shuts down the session manager.
func (m *Manager) Close() error {
	select {
	case <-m.done:
		return nil
	default:
		close(m.done)
		return nil
	}
}

// calculateExpiry returns the next expiry time (min of idle and max lifetime).
func (m *Manager) calculateExpiry(createdAt, now time.Time, idle, max time.Duration) time.Time {
	idleExpiry := now.Add(idle)
	maxExpiry := createdAt.Add(max)

	if maxExpiry.Before(idleExpiry) {
		return maxExpiry
	}
	return idleExpiry
}

func tenantPtr(ctx context.Context) *uuid.UUID {
	if id, ok := tenant.IDFromContext(ctx); ok {
		return &id
	}
	return nil
}

// generateToken creates a cryptographically secure token.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

package isolation

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/openacs/tenantkit/pkg/accesstoken"
	"github.com/openacs/tenantkit/pkg/identity"
	"github.com/openacs/tenantkit/pkg/session"
	"github.com/openacs/tenantkit/pkg/tenant"
	"github.com/openacs/tenantkit/pkg/violation"
)

// Pipeline runs the per-request isolation sequence: clear any inherited
// tenant, skip public routes, discover and bind the tenant, then check
// user, session and token against the binding before the handler runs.
//
// Every denial is a generic 403 or 401. Responses never say which check
// failed; the detail goes to the violation reporter instead.
type Pipeline struct {
	discovery     *tenant.Discovery
	sessions      *session.Manager
	tokens        *accesstoken.Validator
	users         identity.Provider
	reporter      *violation.Reporter
	logger        *slog.Logger
	disabled      bool
	skipChecks    bool
	requireTenant bool
	requireToken  bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSessionManager enables the session stage: login-tenant hijack
// detection and session loading.
func WithSessionManager(sessions *session.Manager) Option {
	return func(p *Pipeline) { p.sessions = sessions }
}

// WithTokenValidator enables the token stage for requests carrying a
// bearer token.
func WithTokenValidator(tokens *accesstoken.Validator) Option {
	return func(p *Pipeline) { p.tokens = tokens }
}

// WithUserProvider enables the user stage: the session user's home
// tenant must match the bound tenant.
func WithUserProvider(users identity.Provider) Option {
	return func(p *Pipeline) { p.users = users }
}

// WithReporter records denied requests.
func WithReporter(reporter *violation.Reporter) Option {
	return func(p *Pipeline) { p.reporter = reporter }
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithRequireTenant rejects non-public requests that resolve no tenant.
func WithRequireTenant(require bool) Option {
	return func(p *Pipeline) { p.requireTenant = require }
}

// WithRequireToken rejects non-public requests without a bearer token.
// Used on pure API surfaces.
func WithRequireToken(require bool) Option {
	return func(p *Pipeline) { p.requireToken = require }
}

// New creates an isolation pipeline around tenant discovery.
func New(discovery *tenant.Discovery, opts ...Option) *Pipeline {
	if discovery == nil {
		panic("isolation: discovery cannot be nil")
	}

	p := &Pipeline{
		discovery: discovery,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewFromConfig creates a pipeline governed by the tenancy settings:
// Enabled turns the middleware into a passthrough, RequireTenant fails
// unresolved requests closed, and EnforceIsolation gates the session,
// user and token checks (discovery still binds the tenant so scoped
// repositories keep working in single-tenant deployments).
// Additional options are applied after the config.
func NewFromConfig(cfg tenant.Config, discovery *tenant.Discovery, opts ...Option) *Pipeline {
	configOpts := []Option{
		WithRequireTenant(cfg.RequireTenant),
	}

	p := New(discovery, append(configOpts, opts...)...)
	p.disabled = !cfg.Enabled
	p.skipChecks = !cfg.EnforceIsolation
	return p
}

// Middleware wires the pipeline into an HTTP handler chain.
func (p *Pipeline) Middleware(next http.Handler) http.Handler {
	if p.disabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Stale bindings must never leak into a new request.
		r = r.WithContext(tenant.WithoutTenant(r.Context()))

		if p.discovery.IsPublicRoute(r) {
			next.ServeHTTP(w, r)
			return
		}

		t, err := p.discovery.Resolve(r)
		if err != nil {
			p.deny(w, r, err)
			return
		}

		if t == nil {
			if p.requireTenant {
				p.deny(w, r, tenant.ErrTenantRequired)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		r = r.WithContext(tenant.WithTenant(r.Context(), t))

		r, ok := p.checkSession(w, r, t)
		if !ok {
			return
		}

		r, ok = p.checkToken(w, r)
		if !ok {
			return
		}

		next.ServeHTTP(w, r)
	})
}

// checkSession runs hijack detection, loads the session, and verifies
// the session user belongs to the bound tenant.
func (p *Pipeline) checkSession(w http.ResponseWriter, r *http.Request, t *tenant.Tenant) (*http.Request, bool) {
	if p.sessions == nil || p.skipChecks {
		return r, true
	}

	ctx := r.Context()

	if err := p.sessions.ValidateLoginTenant(ctx, w, r); errors.Is(err, session.ErrSessionHijacked) {
		// The manager already destroyed the session and reported the
		// hijack; the request that triggered it is still denied.
		p.logger.WarnContext(ctx, "session hijack remediated",
			slog.String("tenant_id", t.ID.String()))
		if p.reporter != nil {
			p.reporter.Report(ctx, violation.KindCrossTenantAccessAttempt,
				"authenticated session presented to another tenant",
				violation.WithActualTenant(t.ID),
				violation.WithPath(r.URL.Path))
		}
		p.deny(w, r, err)
		return r, false
	}

	sess, err := p.sessions.Get(ctx, r)
	if err != nil {
		return r, true
	}
	r = r.WithContext(session.WithSession(ctx, sess))

	if p.users == nil || !sess.IsAuthenticated() {
		return r, true
	}

	user, err := p.users.GetByID(ctx, *sess.UserID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			p.deny(w, r, err)
			return r, false
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return r, false
	}

	if user.TenantID != t.ID {
		if p.reporter != nil {
			p.reporter.Report(ctx, violation.KindCrossTenantAccessAttempt,
				"authenticated user addressed another tenant",
				violation.WithExpectedTenant(user.TenantID),
				violation.WithActualTenant(t.ID),
				violation.WithActorUserID(user.ID.String()),
				violation.WithPath(r.URL.Path))
		}
		p.deny(w, r, nil)
		return r, false
	}

	return r.WithContext(identity.WithUser(r.Context(), user)), true
}

// checkToken validates a bearer token when present.
func (p *Pipeline) checkToken(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	if p.tokens == nil || p.skipChecks {
		return r, true
	}

	raw, ok := accesstoken.FromRequest(r)
	if !ok {
		if p.requireToken {
			p.unauthorized(w)
			return r, false
		}
		return r, true
	}

	claims, err := p.tokens.Validate(r.Context(), raw)
	if err != nil {
		switch {
		case errors.Is(err, accesstoken.ErrTokenScopeViolation),
			errors.Is(err, accesstoken.ErrTokenUserMismatch):
			p.deny(w, r, err)
		default:
			p.unauthorized(w)
		}
		return r, false
	}

	return r.WithContext(withClaims(r.Context(), claims)), true
}

// deny writes the generic denial. Tenant resolution failures are
// reported here; the other stages report before calling deny.
func (p *Pipeline) deny(w http.ResponseWriter, r *http.Request, err error) {
	if p.reporter != nil && errors.Is(err, tenant.ErrTenantNotFound) {
		p.reporter.Report(r.Context(), violation.KindTenantNotFound,
			"request addressed an unknown tenant",
			violation.WithPath(r.URL.Path))
	}

	if err != nil {
		p.logger.WarnContext(r.Context(), "request denied",
			slog.String("path", r.URL.Path),
			slog.String("reason", err.Error()))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"error":"access denied"}`))
}

func (p *Pipeline) unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
}

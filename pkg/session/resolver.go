package session

import (
	"errors"
	"fmt"
	"net/http"
)

// TenantResolver resolves a tenant identifier from the session: the
// stamp applied at creation, or an explicit "tenant_id" value written
// when a user switches workspaces. It is the lowest-precedence
// discovery signal, behind subdomain, header and token claim.
type TenantResolver struct {
	// GetSession retrieves the session from the request.
	GetSession func(r *http.Request) (*Session, error)
}

// NewTenantResolver creates a session-based tenant resolver.
func NewTenantResolver(getSession func(r *http.Request) (*Session, error)) *TenantResolver {
	return &TenantResolver{GetSession: getSession}
}

// Resolve extracts the tenant identifier from the session. A request
// without a session resolves to no signal, not an error.
func (r *TenantResolver) Resolve(req *http.Request) (string, error) {
	if r.GetSession == nil {
		return "", errors.New("session resolver: GetSession function not configured")
	}

	session, err := r.GetSession(req)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionExpired) {
			return "", nil
		}
		return "", fmt.Errorf("session resolver: %w", err)
	}

	if session == nil {
		return "", nil
	}

	if value, ok := session.GetString("tenant_id"); ok && value != "" {
		return value, nil
	}

	if session.TenantID != nil {
		return session.TenantID.String(), nil
	}

	return "", nil
}

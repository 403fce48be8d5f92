package accesstoken

import (
	"github.com/google/uuid"

	"github.com/openacs/tenantkit/pkg/jwt"
)

// TenantClaimKey is the JSON key carrying the tenant binding.
const TenantClaimKey = "tid"

// Claims are the access token claims. The tenant binding is fixed at
// issuance and cannot be changed without re-issuing the token.
type Claims struct {
	jwt.StandardClaims

	// TenantID is the tenant the token was issued in. Empty for
	// platform-level tokens.
	TenantID string `json:"tid,omitempty"`
}

// UserID parses the token subject as a user id.
func (c Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}

// Tenant parses the tenant binding. ok is false for unbound tokens.
func (c Claims) Tenant() (uuid.UUID, bool) {
	if c.TenantID == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(c.TenantID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

package accesstoken

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/openacs/tenantkit/pkg/jwt"
	"github.com/openacs/tenantkit/pkg/tenant"
)

// Issuer mints access tokens bound to a tenant. The binding comes from
// the ambient tenant at issuance, so a token requested inside tenant A
// can never authorize work in tenant B.
type Issuer struct {
	svc    *jwt.Service
	issuer string
	ttl    time.Duration
}

// IssuerOption configures an Issuer.
type IssuerOption func(*Issuer)

// WithIssuerName sets the iss claim.
func WithIssuerName(name string) IssuerOption {
	return func(i *Issuer) { i.issuer = name }
}

// WithTTL sets the token lifetime. Default is one hour.
func WithTTL(ttl time.Duration) IssuerOption {
	return func(i *Issuer) { i.ttl = ttl }
}

// NewIssuer creates a token issuer on top of a JWT service.
func NewIssuer(svc *jwt.Service, opts ...IssuerOption) *Issuer {
	i := &Issuer{
		svc: svc,
		ttl: time.Hour,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue mints a token for the user bound to the ambient tenant. With no
// tenant in context the token is unbound; such tokens only pass
// validation where unbound tokens are permitted.
func (i *Issuer) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	var tenantID string
	if id, ok := tenant.IDFromContext(ctx); ok {
		tenantID = id.String()
	}
	return i.issue(userID, tenantID)
}

// IssueForTenant mints a token bound to an explicit tenant. Used by
// provisioning tools that operate outside request contexts.
func (i *Issuer) IssueForTenant(userID, tenantID uuid.UUID) (string, error) {
	return i.issue(userID, tenantID.String())
}

func (i *Issuer) issue(userID uuid.UUID, tenantID string) (string, error) {
	now := time.Now()
	return i.svc.Generate(Claims{
		StandardClaims: jwt.StandardClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			Issuer:    i.issuer,
			ExpiresAt: now.Add(i.ttl).Unix(),
			IssuedAt:  now.Unix(),
		},
		TenantID: tenantID,
	})
}

package accesstoken

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/openacs/tenantkit/pkg/identity"
	"github.com/openacs/tenantkit/pkg/jwt"
	"github.com/openacs/tenantkit/pkg/tenant"
	"github.com/openacs/tenantkit/pkg/violation"
)

// Validator verifies access tokens and enforces their tenant binding
// against the ambient tenant. Violations are reported and surface as
// generic errors so responses never reveal which check failed.
type Validator struct {
	svc           *jwt.Service
	reporter      *violation.Reporter
	users         identity.Provider
	allowUnbound  bool
	requireTenant bool
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithValidatorReporter records token violations.
func WithValidatorReporter(reporter *violation.Reporter) ValidatorOption {
	return func(v *Validator) { v.reporter = reporter }
}

// WithUserProvider enables the token-user tenant cross-check: the
// subject's home tenant must match the token's tenant binding.
func WithUserProvider(users identity.Provider) ValidatorOption {
	return func(v *Validator) { v.users = users }
}

// WithAllowUnbound permits tokens without a tenant binding inside
// tenant requests. Platform administration tokens need this.
func WithAllowUnbound(allow bool) ValidatorOption {
	return func(v *Validator) { v.allowUnbound = allow }
}

// WithRequireTenant rejects token validation outside tenant requests.
func WithRequireTenant(require bool) ValidatorOption {
	return func(v *Validator) { v.requireTenant = require }
}

// NewValidator creates a token validator on top of a JWT service.
func NewValidator(svc *jwt.Service, opts ...ValidatorOption) *Validator {
	v := &Validator{svc: svc}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate verifies the raw token and checks its tenant binding.
//
// The checks run in order: signature and expiry, tenant scope, then
// token-user consistency. Scope and user mismatches are recorded
// through the violation reporter before the generic error returns.
func (v *Validator) Validate(ctx context.Context, rawToken string) (*Claims, error) {
	var claims Claims
	if err := v.svc.Parse(rawToken, &claims); err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	ambient, bound := tenant.IDFromContext(ctx)
	tokenTenant, tokenBound := claims.Tenant()

	switch {
	case !bound && v.requireTenant:
		return nil, ErrTenantRequired

	case bound && !tokenBound && !v.allowUnbound:
		v.report(ctx, violation.KindTokenScopeViolation,
			"unbound token used in tenant request", claims,
			violation.WithActualTenant(ambient))
		return nil, ErrTokenScopeViolation

	case bound && tokenBound && tokenTenant != ambient:
		v.report(ctx, violation.KindTokenScopeViolation,
			"token used outside its tenant", claims,
			violation.WithExpectedTenant(tokenTenant),
			violation.WithActualTenant(ambient))
		return nil, ErrTokenScopeViolation
	}

	if v.users != nil && tokenBound {
		if err := v.checkUser(ctx, claims, tokenTenant); err != nil {
			return nil, err
		}
	}

	return &claims, nil
}

func (v *Validator) checkUser(ctx context.Context, claims Claims, tokenTenant uuid.UUID) error {
	userID, err := claims.UserID()
	if err != nil {
		return ErrInvalidToken
	}

	user, err := v.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return ErrInvalidToken
		}
		return err
	}

	if user.TenantID != tokenTenant {
		v.report(ctx, violation.KindTokenUserMismatch,
			"token subject does not belong to token tenant", claims,
			violation.WithExpectedTenant(user.TenantID),
			violation.WithActualTenant(tokenTenant))
		return ErrTokenUserMismatch
	}

	return nil
}

func (v *Validator) report(ctx context.Context, kind violation.Kind, description string, claims Claims, opts ...violation.RecordOption) {
	if v.reporter == nil {
		return
	}

	opts = append(opts,
		violation.WithActorUserID(claims.Subject),
		violation.WithMetadata("token_id", claims.ID),
	)
	v.reporter.Report(ctx, kind, description, opts...)
}

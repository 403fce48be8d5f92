package accesstoken

import "errors"

var (
	// ErrInvalidToken covers malformed tokens, bad signatures and
	// unknown subjects. Deliberately coarse so responses do not leak
	// which check failed.
	ErrInvalidToken = errors.New("accesstoken: invalid token")

	// ErrTokenExpired indicates the token passed signature checks but
	// has expired.
	ErrTokenExpired = errors.New("accesstoken: token expired")

	// ErrTokenScopeViolation indicates the token's tenant binding does
	// not cover the current tenant.
	ErrTokenScopeViolation = errors.New("accesstoken: token scope violation")

	// ErrTokenUserMismatch indicates the token subject does not belong
	// to the token's tenant.
	ErrTokenUserMismatch = errors.New("accesstoken: token user mismatch")

	// ErrTenantRequired indicates validation ran outside a tenant
	// request while the validator requires one.
	ErrTenantRequired = errors.New("accesstoken: tenant required")
)

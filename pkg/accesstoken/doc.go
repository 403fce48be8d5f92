// Package accesstoken issues and validates tenant-bound API tokens.
//
// Tokens carry a tid claim fixed at issuance. Validator enforces the
// binding against the ambient tenant of the request: a token issued in
// tenant A presented inside tenant B fails with a generic error, and
// the attempt is recorded through the violation reporter. When a user
// provider is configured, the token subject's home tenant is also
// cross-checked against the binding, which catches tokens that outlive
// a user's move between tenants.
//
//	issuer := accesstoken.NewIssuer(jwtSvc, accesstoken.WithIssuerName("acs"))
//	token, err := issuer.Issue(ctx, userID) // bound to the ambient tenant
//
//	validator := accesstoken.NewValidator(jwtSvc,
//	    accesstoken.WithValidatorReporter(reporter),
//	    accesstoken.WithUserProvider(users),
//	)
//	claims, err := validator.Validate(ctx, rawToken)
//
// PeekTenantClaim reads the tid claim without verification for use as
// a tenant discovery hint; discovery must never trust it for
// authorization.
package accesstoken

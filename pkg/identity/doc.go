// Package identity carries the authenticated user through request context.
//
// It is deliberately minimal: the toolkit only needs to know who the
// principal is and which tenant they belong to. Authentication itself
// (password, OAuth, protocol-level credentials) happens outside and stores
// the resulting User with WithUser before the isolation pipeline runs.
package identity

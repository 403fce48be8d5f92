package tenant

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// DefaultHeader is the discovery header recognized out of the box.
const DefaultHeader = "X-Tenant-ID"

// Resolver extracts a tenant identifier from an HTTP request.
// Resolvers only produce identifiers; loading and validating the tenant
// record is the Discovery's job.
type Resolver interface {
	// Resolve extracts the tenant identifier from the request.
	// Returns empty string if no identifier is present.
	Resolve(r *http.Request) (string, error)
}

// ResolverFunc adapts an ordinary function to the Resolver interface.
type ResolverFunc func(r *http.Request) (string, error)

// Resolve calls the function.
func (f ResolverFunc) Resolve(r *http.Request) (string, error) {
	return f(r)
}

// SubdomainResolver extracts the tenant identifier from the request host
// (e.g. "acme" from "acme.acs.example.com").
type SubdomainResolver struct {
	// Suffix is the base domain to strip, including the leading dot
	// (e.g. ".acs.example.com"). If empty, the first host label is used.
	Suffix string
}

// NewSubdomainResolver creates a subdomain resolver for the given base domain.
func NewSubdomainResolver(suffix string) *SubdomainResolver {
	return &SubdomainResolver{Suffix: suffix}
}

// Resolve extracts the tenant label from the request host.
func (r *SubdomainResolver) Resolve(req *http.Request) (string, error) {
	host := req.Host
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}

	// A bare base domain is not a tenant; require at least
	// subdomain.domain.tld before treating the first label as one.
	if len(strings.Split(host, ".")) < 3 {
		return "", nil
	}

	if r.Suffix != "" {
		if !strings.HasSuffix(host, r.Suffix) {
			return "", nil
		}
		host = host[:len(host)-len(r.Suffix)]
	}

	parts := strings.Split(host, ".")
	if len(parts) == 0 || parts[0] == "" {
		return "", nil
	}

	label := parts[0]
	if label == "www" {
		if len(parts) < 2 {
			return "", nil
		}
		label = parts[1]
	}

	return label, nil
}

// HeaderResolver extracts the tenant identifier from an HTTP header.
type HeaderResolver struct {
	// HeaderName is the header to read; defaults to DefaultHeader.
	HeaderName string
}

// NewHeaderResolver creates a header resolver.
func NewHeaderResolver(headerName string) *HeaderResolver {
	if headerName == "" {
		headerName = DefaultHeader
	}
	return &HeaderResolver{HeaderName: headerName}
}

// Resolve reads the configured header.
func (r *HeaderResolver) Resolve(req *http.Request) (string, error) {
	return req.Header.Get(r.HeaderName), nil
}

// ClaimResolver extracts the tenant identifier from a bearer token claim.
// Token verification and claim extraction are injected so this package
// stays independent of the token codec.
type ClaimResolver struct {
	// TenantClaim verifies the raw bearer token and returns its tenant
	// claim. Returns empty string when the token carries no tenant claim.
	TenantClaim func(rawToken string) (string, error)
}

// NewClaimResolver creates a resolver backed by the given claim extractor.
func NewClaimResolver(tenantClaim func(rawToken string) (string, error)) *ClaimResolver {
	return &ClaimResolver{TenantClaim: tenantClaim}
}

// Resolve extracts the tenant claim from the Authorization bearer token.
func (r *ClaimResolver) Resolve(req *http.Request) (string, error) {
	if r.TenantClaim == nil {
		return "", errors.New("claim resolver: TenantClaim function not configured")
	}

	auth := req.Header.Get("Authorization")
	if auth == "" {
		return "", nil
	}

	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", nil
	}

	id, err := r.TenantClaim(parts[1])
	if err != nil {
		// An unverifiable token is not a discovery signal; later
		// resolvers may still succeed, and token validation proper
		// happens downstream in the pipeline.
		return "", nil
	}

	return id, nil
}

// UserResolver falls back to the authenticated user's home tenant.
// It is the last resort in the discovery order: only consulted when no
// explicit request signal named a tenant.
type UserResolver struct {
	// HomeTenant returns the home tenant id of the request's
	// authenticated user, or false when the request is anonymous.
	HomeTenant func(req *http.Request) (string, bool)
}

// NewUserResolver creates a resolver backed by the given lookup.
func NewUserResolver(homeTenant func(req *http.Request) (string, bool)) *UserResolver {
	return &UserResolver{HomeTenant: homeTenant}
}

// Resolve returns the authenticated user's home tenant id.
func (r *UserResolver) Resolve(req *http.Request) (string, error) {
	if r.HomeTenant == nil {
		return "", errors.New("user resolver: HomeTenant function not configured")
	}

	id, ok := r.HomeTenant(req)
	if !ok {
		return "", nil
	}
	return id, nil
}

// CompositeResolver tries resolvers in order; the first non-empty
// identifier wins and later resolvers are not consulted.
type CompositeResolver struct {
	Resolvers []Resolver
}

// NewCompositeResolver creates a composite resolver.
func NewCompositeResolver(resolvers ...Resolver) *CompositeResolver {
	return &CompositeResolver{Resolvers: resolvers}
}

// Resolve tries each resolver in order, returning the first non-empty result.
func (c *CompositeResolver) Resolve(r *http.Request) (string, error) {
	var errs []error

	for _, resolver := range c.Resolvers {
		id, err := resolver.Resolve(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if id != "" {
			return id, nil
		}
	}

	if len(errs) > 0 {
		return "", fmt.Errorf("composite resolver errors: %w", errors.Join(errs...))
	}

	return "", nil
}

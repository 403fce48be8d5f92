// Package clientip extracts the originating client IP address from an
// *http.Request behind one or more reverse proxies.
//
// GetIP checks forwarded headers in priority order (CF-Connecting-IP,
// X-Forwarded-For, X-Real-IP) and falls back to RemoteAddr. Middleware
// resolves the address once per request and stores it in the context, where
// the session manager and violation reporter pick it up for actor
// attribution.
//
// GetIP never returns an error; an empty string means no valid address was
// found.
package clientip

package accesstoken

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
)

// FromRequest extracts a bearer token from the Authorization header.
// ok is false when the header is absent or not a bearer scheme.
func FromRequest(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(auth, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}

	return token, true
}

// PeekTenantClaim decodes the tenant claim without verifying the
// signature. Tenant discovery uses it as a routing hint only; the
// verified check happens in Validator.Validate. A malformed token
// yields an empty claim, not an error.
func PeekTenantClaim(rawToken string) (string, error) {
	parts := strings.Split(rawToken, ".")
	if len(parts) != 3 {
		return "", nil
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", nil
	}

	var claims struct {
		TenantID string `json:"tid"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return "", nil
	}

	return claims.TenantID, nil
}

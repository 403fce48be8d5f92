package violation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a detected tenant-boundary violation.
type Kind string

const (
	// KindTenantNotFound records a required discovery that resolved nothing.
	KindTenantNotFound Kind = "tenant.not_found"

	// KindCrossTenantAccessAttempt records an authenticated user whose home
	// tenant disagrees with the tenant the request resolved to.
	KindCrossTenantAccessAttempt Kind = "tenant.cross_access_attempt"

	// KindCrossTenantSessionAccess records a session read under a tenant
	// other than the one stamped on the session record.
	KindCrossTenantSessionAccess Kind = "session.cross_tenant_access"

	// KindSessionHijackSuspected records a session whose login-time tenant
	// disagrees with the tenant of a later request presenting it.
	KindSessionHijackSuspected Kind = "session.hijack_suspected"

	// KindTokenScopeViolation records a token used to reach a tenant other
	// than the one it was bound to at issuance.
	KindTokenScopeViolation Kind = "token.scope_violation"

	// KindTokenUserMismatch records a token whose tenant binding drifted
	// from its owning user's current tenant.
	KindTokenUserMismatch Kind = "token.user_mismatch"

	// KindNullTenantSessionRejected records a legacy session without a
	// tenant stamp rejected under strict policy.
	KindNullTenantSessionRejected Kind = "session.null_tenant_rejected"

	// KindUnscopedAccess records use of an explicit all-tenants escape hatch.
	KindUnscopedAccess Kind = "scope.unscoped_access"
)

// Severity grades a violation for alert routing.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityInfo:     0,
	SeverityWarning:  1,
	SeverityError:    2,
	SeverityCritical: 3,
}

// AtLeast reports whether s is at least as severe as min.
// Unknown severities compare as info.
func (s Severity) AtLeast(min Severity) bool {
	return severityRank[s] >= severityRank[min]
}

// ParseSeverity maps a configuration string to a Severity,
// defaulting to warning for unrecognized values.
func ParseSeverity(s string) Severity {
	switch Severity(s) {
	case SeverityInfo, SeverityWarning, SeverityError, SeverityCritical:
		return Severity(s)
	default:
		return SeverityWarning
	}
}

// Actor identifies who triggered the violation.
type Actor struct {
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// Record is a single append-only violation entry. ExpectedTenant and
// ActualTenant carry the full server-side detail; they are never echoed
// back to the requester.
type Record struct {
	ID             uuid.UUID      `json:"id"`
	Kind           Kind           `json:"kind"`
	Severity       Severity       `json:"severity"`
	Actor          Actor          `json:"actor"`
	Description    string         `json:"description"`
	ExpectedTenant string         `json:"expected_tenant,omitempty"`
	ActualTenant   string         `json:"actual_tenant,omitempty"`
	Path           string         `json:"path,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Validate checks required fields.
func (r *Record) Validate() error {
	if r.Kind == "" {
		return fmt.Errorf("%w: kind is required", ErrRecordValidation)
	}
	return nil
}

package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store defines the interface for session persistence.
type Store interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by token.
	Get(ctx context.Context, token string) (*Session, error)

	// Update updates an existing session.
	Update(ctx context.Context, session *Session) error

	// UpdateActivity updates only the last activity time.
	UpdateActivity(ctx context.Context, token string, lastActivity time.Time) error

	// Delete removes a session by token.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes all expired sessions.
	DeleteExpired(ctx context.Context) error
}

// StoreWithCleanup is an optional interface for stores that support
// bulk invalidation.
type StoreWithCleanup interface {
	Store

	// DeleteByUserID removes all sessions for a specific user.
	// Used for forced logout on suspected hijacking.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error

	// DeleteByTenantID removes all sessions stamped with a tenant.
	// Used when a tenant is suspended or offboarded.
	DeleteByTenantID(ctx context.Context, tenantID uuid.UUID) error
}

package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is the authenticated principal attached to a request.
// TenantID is the user's home tenant; isolation checks compare it against
// the ambient tenant and against token bindings on every request.
type User struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Provider loads users from a data source.
type Provider interface {
	// GetByID retrieves a user by id. Returns ErrUserNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

package identity

import "context"

type userContextKey struct{}

// WithUser stores the authenticated user in context for downstream access.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// FromContext retrieves the authenticated user from context.
// Returns nil, false for anonymous requests.
func FromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// UserIDFromContext retrieves just the authenticated user's id.
func UserIDFromContext(ctx context.Context) (string, bool) {
	user, ok := FromContext(ctx)
	if !ok {
		return "", false
	}
	return user.ID.String(), true
}

package auth

import (
	"context"
	"time"

	"github.com/platinummonkey/poolguide/pkg/contextkeys"
)

// User represents a registered account
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose hash
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicUser is the projection of a user returned to API clients
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Public returns the client-facing projection of the user
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
	}
}

// AuthContext holds authenticated user information
type AuthContext struct {
	User   *User
	Claims *Claims
}

// IsAdmin reports whether the authenticated user holds the admin role.
// The stored user record is authoritative over the token claim.
func (ac *AuthContext) IsAdmin() bool {
	return ac != nil && ac.User != nil && ac.User.IsAdmin
}

// WithAuthContext stores the auth context on ctx
func WithAuthContext(ctx context.Context, authCtx *AuthContext) context.Context {
	return contextkeys.WithAuth(ctx, authCtx)
}

// FromContext returns the auth context stored on ctx, or nil
func FromContext(ctx context.Context) *AuthContext {
	authCtx, ok := ctx.Value(contextkeys.AuthKey).(*AuthContext)
	if !ok {
		return nil
	}
	return authCtx
}

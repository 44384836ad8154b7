package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/platinummonkey/poolguide/pkg/auth"
	"github.com/platinummonkey/poolguide/pkg/contextkeys"
	"github.com/platinummonkey/poolguide/pkg/httputil"
	"github.com/platinummonkey/poolguide/pkg/observability"
	"github.com/platinummonkey/poolguide/pkg/storage"
)

// Client-facing auth failures
const (
	MsgNoToken       = "Not authorized, no token provided"
	MsgInvalidToken  = "Not authorized, invalid token"
	MsgUserNotFound  = "Not authorized, user not found"
	MsgAdminRequired = "Not authorized, admin access required"
)

// TokenVerifier validates a bearer token
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// UserLookup resolves the user a token refers to
type UserLookup interface {
	GetUserByID(ctx context.Context, id int64) (*auth.User, error)
}

// Authenticator provides authentication middleware
type Authenticator struct {
	verifier TokenVerifier
	users    UserLookup
	metrics  *observability.Metrics
}

// NewAuthenticator creates the auth gate. metrics may be nil.
func NewAuthenticator(verifier TokenVerifier, users UserLookup, metrics *observability.Metrics) *Authenticator {
	return &Authenticator{
		verifier: verifier,
		users:    users,
		metrics:  metrics,
	}
}

// bearerToken returns the token of an "Authorization: Bearer <token>" header
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer") {
		return ""
	}
	fields := strings.Fields(header)
	if len(fields) < 2 || fields[0] != "Bearer" {
		return ""
	}
	return fields[1]
}

// Handler rejects requests without a valid token for an existing user
func (a *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			a.reject(w, "no_token", MsgNoToken)
			return
		}

		claims, err := a.verifier.Verify(token)
		if err != nil {
			reason := "invalid_token"
			if errors.Is(err, auth.ErrTokenExpired) {
				reason = "expired_token"
			}
			a.reject(w, reason, MsgInvalidToken)
			return
		}

		user, err := a.users.GetUserByID(r.Context(), claims.UserID)
		if errors.Is(err, storage.ErrNotFound) {
			a.reject(w, "user_not_found", MsgUserNotFound)
			return
		}
		if err != nil {
			httputil.WriteAppError(w, r, err)
			return
		}

		ctx := auth.WithAuthContext(r.Context(), &auth.AuthContext{User: user, Claims: claims})
		ctx = contextkeys.WithUserID(ctx, strconv.FormatInt(user.ID, 10))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin authenticates the request and then rejects non-admin users
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return a.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !GetAuthContext(r).IsAdmin() {
			a.countRejection("not_admin")
			httputil.WriteForbidden(w, MsgAdminRequired)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func (a *Authenticator) reject(w http.ResponseWriter, reason, message string) {
	a.countRejection(reason)
	httputil.WriteUnauthorized(w, message)
}

func (a *Authenticator) countRejection(reason string) {
	if a.metrics != nil {
		a.metrics.AuthRejectionsTotal.WithLabelValues(reason).Inc()
	}
}

// GetAuthContext extracts auth context from request
func GetAuthContext(r *http.Request) *auth.AuthContext {
	return auth.FromContext(r.Context())
}

// Package middleware provides HTTP middlewares for authentication, request
// logging and metrics.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/atinyakov/TodoKeeper/internal/metrics"
	"github.com/atinyakov/TodoKeeper/internal/models"
	"github.com/atinyakov/TodoKeeper/internal/service"
	"github.com/atinyakov/TodoKeeper/internal/token"
	"go.uber.org/zap"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Verifier checks a raw bearer token and returns its subject.
type Verifier interface {
	Verify(raw string) (models.Identity, error)
}

// RoleLookup returns the current stored role of a user.
type RoleLookup interface {
	Role(ctx context.Context, userID int64) (models.Role, error)
}

// BearerAuth is a middleware that requires a valid "Authorization: Bearer <token>" header.
//
// On success the verified identity is stored in the request context and can be
// read downstream with IdentityFromContext. Missing, malformed, forged and
// expired tokens are rejected with 401 before the next handler runs.
func BearerAuth(verifier Verifier, logger *zap.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				m.AuthFailure("missing_token")
				unauthenticated(w, "missing bearer token")
				return
			}

			id, err := verifier.Verify(raw)
			if err != nil {
				reason := string(token.KindInvalidSignature)
				msg := "invalid token"
				if errors.Is(err, token.ErrExpired) {
					reason = string(token.KindExpired)
					msg = "token expired"
				}
				m.AuthFailure(reason)
				logger.Debug("rejected bearer token",
					zap.String("reason", reason),
					zap.String("path", r.URL.Path),
				)
				unauthenticated(w, msg)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext extracts the identity stored by BearerAuth.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	return id, ok
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// RequireAdmin allows the request only when the caller's stored role is admin.
// The role is looked up on every request, so promotions and demotions take
// effect without reissuing tokens. It must run after BearerAuth.
func RequireAdmin(roles RoleLookup, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				unauthenticated(w, "authentication required")
				return
			}

			role, err := roles.Role(r.Context(), id.UserID)
			switch {
			case errors.Is(err, service.ErrNotFound):
				writeError(w, http.StatusUnauthorized, "unauthorized", "admin role required")
				return
			case err != nil:
				logger.Error("role lookup failed", zap.Int64("user_id", id.UserID), zap.Error(err))
				writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
				return
			case role != models.RoleAdmin:
				writeError(w, http.StatusUnauthorized, "unauthorized", "admin role required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, raw, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

func unauthenticated(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, "unauthenticated", msg)
}

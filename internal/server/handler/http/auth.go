// Package http provides the HTTP handlers and router of the todo service.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/atinyakov/TodoKeeper/internal/metrics"
	"github.com/atinyakov/TodoKeeper/internal/models"
	"github.com/atinyakov/TodoKeeper/internal/service"
	"github.com/atinyakov/TodoKeeper/internal/validation"
	"go.uber.org/zap"
)

// AuthService defines the interface for authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// Register validates and stores a new user.
	Register(ctx context.Context, r validation.Registration) (models.User, error)
	// Login checks credentials and returns a signed access token.
	Login(ctx context.Context, username, password string) (string, error)
}

// AuthHandler handles HTTP requests for user registration and login.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	// TokenTTL is reported to clients as expires_in.
	TokenTTL time.Duration
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// TokenResponse is the body of a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
}

// Register handles user registration requests.
// It expects a JSON body with username, password and optional profile fields
// and responds 201 with the stored profile.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req validation.Registration
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.AuthService.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}

	orNop(h.Logger).Info("user registered", zap.Int64("user_id", u.ID), zap.String("username", u.Username))
	writeJSON(w, http.StatusCreated, u)
}

// Token handles password login. It expects an
// application/x-www-form-urlencoded body with username and password fields
// and responds with a bearer token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, KindBadRequest, "invalid form body")
		return
	}

	tok, err := h.AuthService.Login(r.Context(), r.PostForm.Get("username"), r.PostForm.Get("password"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.Metrics.AuthFailure("bad_credentials")
		}
		writeServiceError(w, r, h.Logger, err)
		return
	}

	h.Metrics.TokenIssued()
	writeJSON(w, http.StatusOK, TokenResponse{
		AccessToken: tok,
		TokenType:   "bearer",
		ExpiresIn:   int64(h.TokenTTL / time.Second),
	})
}

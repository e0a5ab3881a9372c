package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/TodoKeeper/internal/models"
	"github.com/atinyakov/TodoKeeper/internal/validation"
	"go.uber.org/zap"
)

// UserService defines the profile operations of the authenticated user.
type UserService interface {
	Profile(ctx context.Context, userID int64) (models.User, error)
	ChangePassword(ctx context.Context, userID int64, in validation.PasswordChange) error
	ChangePhone(ctx context.Context, userID int64, in validation.PhoneChange) error
}

// UserHandler serves /user routes.
type UserHandler struct {
	UserService UserService
	Logger      *zap.Logger
}

// Profile handles GET /user/profile.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	u, err := h.UserService.Profile(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// ChangePassword handles PUT /user/password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var in validation.PasswordChange
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := h.UserService.ChangePassword(r.Context(), id.UserID, in); err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	orNop(h.Logger).Info("password changed", zap.Int64("user_id", id.UserID))
	w.WriteHeader(http.StatusNoContent)
}

// ChangePhone handles PUT /user/phone.
func (h *UserHandler) ChangePhone(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var in validation.PhoneChange
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := h.UserService.ChangePhone(r.Context(), id.UserID, in); err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

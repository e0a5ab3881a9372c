package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/atinyakov/TodoKeeper/internal/middleware"
	"github.com/atinyakov/TodoKeeper/internal/models"
	"github.com/atinyakov/TodoKeeper/internal/service"
	"github.com/atinyakov/TodoKeeper/internal/validation"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Error kinds carried in the "error" field of every error response.
const (
	KindValidation      = "validation_error"
	KindUnauthenticated = "unauthenticated"
	KindUnauthorized    = "unauthorized"
	KindNotFound        = "not_found"
	KindConflict        = "conflict"
	KindInternal        = "internal_error"
	KindBadRequest      = "bad_request"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, ErrorResponse{Error: kind, Message: msg})
}

// writeServiceError maps service and validation errors onto status codes.
// Anything unrecognised is logged and reported as a bare 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var vErr *validation.Error
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: KindValidation, Message: vErr.Error(), Field: vErr.Field})
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, KindNotFound, "resource not found")
	case errors.Is(err, service.ErrUsernameTaken):
		writeError(w, http.StatusConflict, KindConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, KindUnauthenticated, "could not validate credentials")
	case errors.Is(err, service.ErrWrongPassword):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: KindValidation, Message: err.Error(), Field: "current_password"})
	default:
		orNop(logger).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, KindInternal, "internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, KindBadRequest, "invalid request body")
		return false
	}
	return true
}

// pathID parses the {id} URL parameter, which must be a positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, KindBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// identity returns the authenticated caller or writes a 401.
func identity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, KindUnauthenticated, "authentication required")
	}
	return id, ok
}

func orNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

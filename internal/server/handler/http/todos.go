package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/TodoKeeper/internal/models"
	"github.com/atinyakov/TodoKeeper/internal/validation"
	"go.uber.org/zap"
)

// TodoService defines the owner-scoped todo operations.
type TodoService interface {
	List(ctx context.Context, ownerID int64) ([]models.Todo, error)
	Get(ctx context.Context, ownerID, id int64) (models.Todo, error)
	Create(ctx context.Context, ownerID int64, in validation.TodoInput) (models.Todo, error)
	Update(ctx context.Context, ownerID, id int64, in validation.TodoInput) error
	Delete(ctx context.Context, ownerID, id int64) error
}

// TodoHandler serves the caller's own todos. Every operation is scoped to
// the authenticated identity; other users' todos answer 404.
type TodoHandler struct {
	TodoService TodoService
	Logger      *zap.Logger
}

// List handles GET /todos.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	todos, err := h.TodoService.List(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

// Get handles GET /todos/{id}.
func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	todoID, ok := pathID(w, r)
	if !ok {
		return
	}
	t, err := h.TodoService.Get(r.Context(), id.UserID, todoID)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Create handles POST /todos. Any owner in the body is ignored.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var in validation.TodoInput
	if !decodeJSON(w, r, &in) {
		return
	}
	t, err := h.TodoService.Create(r.Context(), id.UserID, in)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// Update handles PUT /todos/{id}.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	todoID, ok := pathID(w, r)
	if !ok {
		return
	}
	var in validation.TodoInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := h.TodoService.Update(r.Context(), id.UserID, todoID, in); err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /todos/{id}.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	todoID, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.TodoService.Delete(r.Context(), id.UserID, todoID); err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/TodoKeeper/internal/middleware"
	"github.com/atinyakov/TodoKeeper/internal/models"
	"go.uber.org/zap"
)

// AdminTodoService defines the unscoped todo operations.
type AdminTodoService interface {
	ListAll(ctx context.Context) ([]models.Todo, error)
	DeleteAny(ctx context.Context, id int64) error
}

// AdminHandler serves /admin routes. The router guards it with RequireAdmin.
type AdminHandler struct {
	TodoService AdminTodoService
	Logger      *zap.Logger
}

// ListTodos handles GET /admin/todos.
func (h *AdminHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := h.TodoService.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

// DeleteTodo handles DELETE /admin/todos/{id}.
func (h *AdminHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	todoID, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.TodoService.DeleteAny(r.Context(), todoID); err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	if id, ok := middleware.IdentityFromContext(r.Context()); ok {
		orNop(h.Logger).Info("admin deleted todo",
			zap.Int64("todo_id", todoID),
			zap.String("admin", id.Username),
		)
	}
	w.WriteHeader(http.StatusNoContent)
}

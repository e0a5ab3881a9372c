package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/TodoKeeper/internal/models"
	"go.uber.org/zap"
)

// BookService defines the catalog operations.
type BookService interface {
	List(ctx context.Context) ([]models.Book, error)
	Get(ctx context.Context, id int64) (models.Book, error)
}

// BookHandler serves the public book catalog.
type BookHandler struct {
	BookService BookService
	Logger      *zap.Logger
}

// List handles GET /books.
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.BookService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// Get handles GET /books/{id}.
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b, err := h.BookService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

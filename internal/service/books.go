package service

import (
	"context"

	"github.com/atinyakov/TodoKeeper/internal/models"
)

// BookRepository reads the book catalog.
type BookRepository interface {
	ListBooks(ctx context.Context) ([]models.Book, error)
	GetBook(ctx context.Context, id int64) (models.Book, error)
}

// BookService exposes the public catalog.
type BookService struct {
	repo BookRepository
}

// NewBookService constructs a BookService.
func NewBookService(repo BookRepository) *BookService {
	return &BookService{repo: repo}
}

// List returns every book.
func (s *BookService) List(ctx context.Context) ([]models.Book, error) {
	return s.repo.ListBooks(ctx)
}

// Get returns one book.
func (s *BookService) Get(ctx context.Context, id int64) (models.Book, error) {
	b, err := s.repo.GetBook(ctx, id)
	return b, mapNotFound(err)
}

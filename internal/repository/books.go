package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/TodoKeeper/internal/models"
)

// SQLBookRepository reads the public book catalog.
type SQLBookRepository struct {
	DB *sql.DB
}

// NewSQLBookRepository creates a new SQLBookRepository.
func NewSQLBookRepository(db *sql.DB) *SQLBookRepository {
	return &SQLBookRepository{DB: db}
}

// ListBooks returns the catalog ordered by id.
func (r *SQLBookRepository) ListBooks(ctx context.Context) ([]models.Book, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, title, author, description, rating FROM books ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := []models.Book{}
	for rows.Next() {
		var b models.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.Rating); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	return books, nil
}

// GetBook fetches a single catalog entry.
func (r *SQLBookRepository) GetBook(ctx context.Context, id int64) (models.Book, error) {
	var b models.Book
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, title, author, description, rating FROM books WHERE id = $1`, id,
	).Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.Rating)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Book{}, ErrNotFound
	}
	if err != nil {
		return models.Book{}, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

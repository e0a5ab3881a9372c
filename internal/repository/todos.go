package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/TodoKeeper/internal/models"
)

const todoColumns = `id, title, description, priority, complete, owner_id`

// SQLTodoRepository stores todos. Every owner-scoped statement filters on
// id and owner_id together, so a foreign id behaves exactly like a missing one.
type SQLTodoRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewSQLTodoRepository creates a new SQLTodoRepository using the provided *sql.DB.
func NewSQLTodoRepository(db *sql.DB) *SQLTodoRepository {
	return &SQLTodoRepository{DB: db}
}

// CreateTodo inserts t with id set to one more than the current maximum (1 for an empty table).
func (r *SQLTodoRepository) CreateTodo(ctx context.Context, t models.Todo) (models.Todo, error) {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO todos (id, title, description, priority, complete, owner_id)
		VALUES ((SELECT COALESCE(MAX(id), 0) + 1 FROM todos), $1, $2, $3, $4, $5)
		RETURNING id
	`, t.Title, t.Description, t.Priority, t.Complete, t.OwnerID).Scan(&t.ID)
	if err != nil {
		return models.Todo{}, fmt.Errorf("create todo: %w", err)
	}
	return t, nil
}

// ListTodosByOwner returns the todos owned by ownerID ordered by id.
func (r *SQLTodoRepository) ListTodosByOwner(ctx context.Context, ownerID int64) ([]models.Todo, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE owner_id = $1 ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return scanTodos(rows)
}

// ListAllTodos returns every todo ordered by id.
func (r *SQLTodoRepository) ListAllTodos(ctx context.Context) ([]models.Todo, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+todoColumns+` FROM todos ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list all todos: %w", err)
	}
	return scanTodos(rows)
}

// GetTodo fetches a todo by id that belongs to ownerID.
func (r *SQLTodoRepository) GetTodo(ctx context.Context, ownerID, id int64) (models.Todo, error) {
	var t models.Todo
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE id = $1 AND owner_id = $2`, id, ownerID,
	).Scan(&t.ID, &t.Title, &t.Description, &t.Priority, &t.Complete, &t.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Todo{}, ErrNotFound
	}
	if err != nil {
		return models.Todo{}, fmt.Errorf("get todo: %w", err)
	}
	return t, nil
}

// UpdateTodo overwrites the mutable fields of t.ID when it belongs to t.OwnerID.
func (r *SQLTodoRepository) UpdateTodo(ctx context.Context, t models.Todo) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE todos SET title = $1, description = $2, priority = $3, complete = $4
		WHERE id = $5 AND owner_id = $6
	`, t.Title, t.Description, t.Priority, t.Complete, t.ID, t.OwnerID)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	return expectOneRow(res, "update todo")
}

// DeleteTodo removes todo id when it belongs to ownerID.
func (r *SQLTodoRepository) DeleteTodo(ctx context.Context, ownerID, id int64) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM todos WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return expectOneRow(res, "delete todo")
}

// DeleteAnyTodo removes todo id regardless of owner.
func (r *SQLTodoRepository) DeleteAnyTodo(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return expectOneRow(res, "delete todo")
}

func scanTodos(rows *sql.Rows) ([]models.Todo, error) {
	defer rows.Close()

	todos := []models.Todo{}
	for rows.Next() {
		var t models.Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Priority, &t.Complete, &t.OwnerID); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	return todos, nil
}

package service

import (
	"context"
	"errors"

	"github.com/atinyakov/TodoKeeper/internal/models"
	"github.com/atinyakov/TodoKeeper/internal/repository"
	"github.com/atinyakov/TodoKeeper/internal/validation"
)

// TodoRepository is the todo store. Owner-scoped methods match on id and owner together.
type TodoRepository interface {
	CreateTodo(ctx context.Context, t models.Todo) (models.Todo, error)
	ListTodosByOwner(ctx context.Context, ownerID int64) ([]models.Todo, error)
	ListAllTodos(ctx context.Context) ([]models.Todo, error)
	GetTodo(ctx context.Context, ownerID, id int64) (models.Todo, error)
	UpdateTodo(ctx context.Context, t models.Todo) error
	DeleteTodo(ctx context.Context, ownerID, id int64) error
	DeleteAnyTodo(ctx context.Context, id int64) error
}

// TodoService manages todos on behalf of an authenticated owner.
// A todo owned by someone else is reported as ErrNotFound.
type TodoService struct {
	repo TodoRepository
}

// NewTodoService constructs a TodoService.
func NewTodoService(repo TodoRepository) *TodoService {
	return &TodoService{repo: repo}
}

// List returns the todos of ownerID.
func (s *TodoService) List(ctx context.Context, ownerID int64) ([]models.Todo, error) {
	return s.repo.ListTodosByOwner(ctx, ownerID)
}

// Get returns todo id if it belongs to ownerID.
func (s *TodoService) Get(ctx context.Context, ownerID, id int64) (models.Todo, error) {
	t, err := s.repo.GetTodo(ctx, ownerID, id)
	return t, mapNotFound(err)
}

// Create validates in and stores it as a new todo of ownerID.
func (s *TodoService) Create(ctx context.Context, ownerID int64, in validation.TodoInput) (models.Todo, error) {
	if err := validation.ValidateTodo(&in); err != nil {
		return models.Todo{}, err
	}
	return s.repo.CreateTodo(ctx, models.Todo{
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Complete:    in.Complete,
		OwnerID:     ownerID,
	})
}

// Update replaces the fields of todo id when it belongs to ownerID.
func (s *TodoService) Update(ctx context.Context, ownerID, id int64, in validation.TodoInput) error {
	if err := validation.ValidateTodo(&in); err != nil {
		return err
	}
	return mapNotFound(s.repo.UpdateTodo(ctx, models.Todo{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Complete:    in.Complete,
		OwnerID:     ownerID,
	}))
}

// Delete removes todo id when it belongs to ownerID.
func (s *TodoService) Delete(ctx context.Context, ownerID, id int64) error {
	return mapNotFound(s.repo.DeleteTodo(ctx, ownerID, id))
}

// ListAll returns every todo. Callers must have checked the admin role.
func (s *TodoService) ListAll(ctx context.Context) ([]models.Todo, error) {
	return s.repo.ListAllTodos(ctx)
}

// DeleteAny removes todo id regardless of owner. Callers must have checked the admin role.
func (s *TodoService) DeleteAny(ctx context.Context, id int64) error {
	return mapNotFound(s.repo.DeleteAnyTodo(ctx, id))
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

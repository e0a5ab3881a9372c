// Package service provides the business logic of the todo service:
// registration and login, owner-scoped todo management, profile changes
// and the book catalog. Persistence is delegated to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/TodoKeeper/internal/models"
	"github.com/atinyakov/TodoKeeper/internal/repository"
	"github.com/atinyakov/TodoKeeper/internal/validation"
)

// UserRepository defines the credential store operations
// required by the authentication service.
type UserRepository interface {
	// CreateUser stores u and returns it with its assigned ID.
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	// GetUserByUsername loads a user by username.
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, encoded string) (bool, error)
}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(user models.User) (string, error)
}

// AuthService implements registration and login by delegating
// to a UserRepository.
type AuthService struct {
	// repo performs the data-layer operations.
	repo   UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
}

// NewAuthService constructs a new AuthService.
func NewAuthService(repo UserRepository, hasher PasswordHasher, tokens TokenIssuer) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens}
}

// Register validates r, hashes the password and stores a new active user.
// A duplicate username yields ErrUsernameTaken.
func (s *AuthService) Register(ctx context.Context, r validation.Registration) (models.User, error) {
	if err := validation.ValidateRegistration(&r); err != nil {
		return models.User{}, err
	}

	hash, err := s.hasher.Hash(r.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.repo.CreateUser(ctx, models.User{
		Username:     r.Username,
		Email:        r.Email,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		PasswordHash: hash,
		Role:         models.Role(r.Role),
		IsActive:     true,
	})
	if errors.Is(err, repository.ErrConflict) {
		return models.User{}, ErrUsernameTaken
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Authenticate returns the user whose stored digest matches password.
// Unknown users, wrong passwords and inactive accounts all yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	creds := validation.Credentials{Username: username, Password: password}
	if err := validation.ValidateCredentials(&creds); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	u, err := s.repo.GetUserByUsername(ctx, creds.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}

	ok, err := s.hasher.Verify(creds.Password, u.PasswordHash)
	if err != nil {
		return models.User{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok || !u.IsActive {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Login authenticates the credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	tok, err := s.tokens.Issue(u)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return tok, nil
}

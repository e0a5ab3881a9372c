package service

import (
	"context"
	"fmt"

	"github.com/atinyakov/TodoKeeper/internal/models"
	"github.com/atinyakov/TodoKeeper/internal/validation"
)

// ProfileRepository is the subset of the credential store used by UserService.
type ProfileRepository interface {
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	GetRole(ctx context.Context, id int64) (models.Role, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	UpdatePhoneNumber(ctx context.Context, id int64, phone string) error
}

// UserService serves the authenticated user's own profile.
type UserService struct {
	repo   ProfileRepository
	hasher PasswordHasher
}

// NewUserService constructs a UserService.
func NewUserService(repo ProfileRepository, hasher PasswordHasher) *UserService {
	return &UserService{repo: repo, hasher: hasher}
}

// Profile returns the stored user record.
func (s *UserService) Profile(ctx context.Context, userID int64) (models.User, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	return u, mapNotFound(err)
}

// Role returns the current stored role of userID.
func (s *UserService) Role(ctx context.Context, userID int64) (models.Role, error) {
	role, err := s.repo.GetRole(ctx, userID)
	return role, mapNotFound(err)
}

// ChangePassword replaces the password after re-verifying the current one.
// The stored digest is untouched when verification fails.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, in validation.PasswordChange) error {
	if err := validation.ValidatePasswordChange(&in); err != nil {
		return err
	}
	if err := s.verifyCurrent(ctx, userID, in.CurrentPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return mapNotFound(s.repo.UpdatePasswordHash(ctx, userID, hash))
}

// ChangePhone replaces the phone number after re-verifying the current password.
func (s *UserService) ChangePhone(ctx context.Context, userID int64, in validation.PhoneChange) error {
	if err := validation.ValidatePhoneChange(&in); err != nil {
		return err
	}
	if err := s.verifyCurrent(ctx, userID, in.CurrentPassword); err != nil {
		return err
	}
	return mapNotFound(s.repo.UpdatePhoneNumber(ctx, userID, in.NewPhone))
}

func (s *UserService) verifyCurrent(ctx context.Context, userID int64, current string) error {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return mapNotFound(err)
	}
	ok, err := s.hasher.Verify(current, u.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrWrongPassword
	}
	return nil
}

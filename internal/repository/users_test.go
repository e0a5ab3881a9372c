package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/atinyakov/TodoKeeper/internal/models"
	"github.com/lib/pq"
)

var userRowColumns = []string{"id", "username", "email", "first_name", "last_name", "hashed_password", "role", "phone_number", "is_active"}

func setupUserMock(t *testing.T) (*SQLUserRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewSQLUserRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func TestCreateUser_Success(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	u := models.User{
		Username:     "alice",
		Email:        "alice@example.com",
		FirstName:    "Alice",
		LastName:     "Liddell",
		PasswordHash: "$argon2id$digest",
		Role:         models.RoleUser,
		IsActive:     true,
	}
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (username, email, first_name, last_name, hashed_password, role, is_active)`)).
		WithArgs("alice", "alice@example.com", "Alice", "Liddell", "$argon2id$digest", "user", true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	got, err := repo.CreateUser(context.Background(), u)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 1 {
		t.Errorf("ID = %d; want 1", got.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCreateUser_Duplicate(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.CreateUser(context.Background(), models.User{Username: "alice", Role: models.RoleUser})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("error = %v; want ErrConflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetUserByUsername(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE username = $1`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(int64(3), "alice", "a@example.com", "Alice", "L", "hash", "admin", "5551234567", true))

	u, err := repo.GetUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != 3 || u.Role != models.RoleAdmin || u.PasswordHash != "hash" {
		t.Errorf("unexpected user: %+v", u)
	}
	if u.PhoneNumber == nil || *u.PhoneNumber != "5551234567" {
		t.Errorf("phone = %v; want 5551234567", u.PhoneNumber)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetUserByID_NullPhone(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(int64(3), "alice", "", "", "", "hash", "user", nil, true))

	u, err := repo.GetUserByID(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.PhoneNumber != nil {
		t.Errorf("phone = %v; want nil", *u.PhoneNumber)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetUserByUsername_NotFound(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE username = $1`)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := repo.GetUserByUsername(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v; want ErrNotFound", err)
	}
}

func TestGetRole(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT role FROM users WHERE id = $1`)).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("admin"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT role FROM users WHERE id = $1`)).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"role"}))

	role, err := repo.GetRole(context.Background(), 9)
	if err != nil || role != models.RoleAdmin {
		t.Errorf("GetRole(9) = %q, %v; want admin", role, err)
	}
	if _, err := repo.GetRole(context.Background(), 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRole(10) error = %v; want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpdatePasswordHash(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET hashed_password = $1 WHERE id = $2`)).
		WithArgs("newhash", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET hashed_password = $1 WHERE id = $2`)).
		WithArgs("newhash", int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.UpdatePasswordHash(context.Background(), 1, "newhash"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := repo.UpdatePasswordHash(context.Background(), 2, "newhash"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v; want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpdatePhoneNumber_Error(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET phone_number = $1 WHERE id = $2`)).
		WithArgs("5551234567", int64(1)).
		WillReturnError(errors.New("update failed"))

	err := repo.UpdatePhoneNumber(context.Background(), 1, "5551234567")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v; want storage error", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

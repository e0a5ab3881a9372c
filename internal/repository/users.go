package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/TodoKeeper/internal/models"
)

const userColumns = `id, username, email, first_name, last_name, hashed_password, role, phone_number, is_active`

// SQLUserRepository is the credential store.
type SQLUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewSQLUserRepository creates a new SQLUserRepository with the given database connection.
func NewSQLUserRepository(db *sql.DB) *SQLUserRepository {
	return &SQLUserRepository{DB: db}
}

// CreateUser inserts u and returns it with the server-assigned ID.
// A duplicate username yields ErrConflict.
func (r *SQLUserRepository) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO users (username, email, first_name, last_name, hashed_password, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash, string(u.Role), u.IsActive).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrConflict
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// GetUserByUsername fetches the user with the given username.
func (r *SQLUserRepository) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row, "get user by username")
}

// GetUserByID fetches the user with the given id.
func (r *SQLUserRepository) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row, "get user by id")
}

// GetRole returns the current stored role of the user.
func (r *SQLUserRepository) GetRole(ctx context.Context, id int64) (models.Role, error) {
	var role string
	err := r.DB.QueryRowContext(ctx, `SELECT role FROM users WHERE id = $1`, id).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get role: %w", err)
	}
	return models.Role(role), nil
}

// UpdatePasswordHash replaces the stored password digest.
func (r *SQLUserRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET hashed_password = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return expectOneRow(res, "update password")
}

// UpdatePhoneNumber replaces the stored phone number.
func (r *SQLUserRepository) UpdatePhoneNumber(ctx context.Context, id int64, phone string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET phone_number = $1 WHERE id = $2`, phone, id)
	if err != nil {
		return fmt.Errorf("update phone number: %w", err)
	}
	return expectOneRow(res, "update phone number")
}

func scanUser(row *sql.Row, op string) (models.User, error) {
	var (
		u     models.User
		role  string
		phone sql.NullString
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
		&u.PasswordHash, &role, &phone, &u.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	u.Role = models.Role(role)
	if phone.Valid {
		u.PhoneNumber = &phone.String
	}
	return u, nil
}

func expectOneRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

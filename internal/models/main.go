// Package models defines the core data structures for users, todos and books.
package models

// Role names the privilege level of a user.
type Role string

const (
	// RoleUser is the default role assigned at registration.
	RoleUser Role = "user"
	// RoleAdmin may list and delete every todo.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents an application user with credentials.
type User struct {
	// ID is the unique, server-assigned identifier for the user.
	ID int64 `json:"id"`
	// Username is the login name chosen by the user.
	Username string `json:"username"`
	// Email is the contact address of the user.
	Email string `json:"email"`
	// FirstName is the given name of the user.
	FirstName string `json:"first_name"`
	// LastName is the family name of the user.
	LastName string `json:"last_name"`
	// PasswordHash is the encoded argon2id digest of the password.
	PasswordHash string `json:"-"`
	// Role is the current privilege level of the user.
	Role Role `json:"role"`
	// PhoneNumber is optional; nil when never set.
	PhoneNumber *string `json:"phone_number"`
	// IsActive is false for disabled accounts.
	IsActive bool `json:"is_active"`
}

// Todo is a task owned by exactly one user.
type Todo struct {
	// ID is the unique, server-assigned identifier for the todo.
	ID int64 `json:"id"`
	// Title is a short summary of the task.
	Title string `json:"title"`
	// Description holds the task details.
	Description string `json:"description"`
	// Priority ranges from 1 to 5 inclusive.
	Priority int `json:"priority"`
	// Complete marks the task as done.
	Complete bool `json:"complete"`
	// OwnerID references the user that created the todo.
	OwnerID int64 `json:"owner_id"`
}

// Book is an entry in the public read-only catalog.
type Book struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Rating      int    `json:"rating"`
}

// Identity is the verified subject of an access token.
type Identity struct {
	// Username is the token subject.
	Username string
	// UserID is the id of the subject in the credential store.
	UserID int64
}

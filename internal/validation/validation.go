// Package validation checks request payloads before they reach the services.
//
// Each input shape has its own function returning either nil or an *Error
// naming the first offending field. Validation never touches storage.
package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/atinyakov/TodoKeeper/internal/models"
)

// Field limits.
const (
	MinTitleLength       = 3
	MaxTitleLength       = 100
	MinDescriptionLength = 0
	MaxDescriptionLength = 100
	MinPriority          = 1
	MaxPriority          = 5
	MinPasswordLength    = 8
	MaxPasswordLength    = 100
	MinPhoneLength       = 10
	MaxPhoneLength       = 15
	MaxUsernameLength    = 64
	MaxNameLength        = 100
)

// Error describes a single invalid field.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Registration is the input of the register endpoint.
type Registration struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

// TodoInput is the input of the create and update todo endpoints.
type TodoInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
	Complete    bool   `json:"complete"`
}

// PasswordChange is the input of the change-password endpoint.
type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// PhoneChange is the input of the change-phone endpoint.
type PhoneChange struct {
	CurrentPassword string `json:"current_password"`
	NewPhone        string `json:"new_phone"`
}

// Credentials is the input of the token endpoint.
type Credentials struct {
	Username string
	Password string
}

// ValidateRegistration checks r and fills the default role.
func ValidateRegistration(r *Registration) error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)

	if r.Username == "" {
		return invalid("username", "is required")
	}
	if utf8.RuneCountInString(r.Username) > MaxUsernameLength {
		return invalid("username", "must be at most %d characters", MaxUsernameLength)
	}
	if strings.ContainsFunc(r.Username, unicode.IsSpace) {
		return invalid("username", "must not contain whitespace")
	}
	if r.Email != "" {
		if _, err := mail.ParseAddress(r.Email); err != nil {
			return invalid("email", "is not a valid address")
		}
	}
	if utf8.RuneCountInString(r.FirstName) > MaxNameLength {
		return invalid("first_name", "must be at most %d characters", MaxNameLength)
	}
	if utf8.RuneCountInString(r.LastName) > MaxNameLength {
		return invalid("last_name", "must be at most %d characters", MaxNameLength)
	}
	if err := checkPassword("password", r.Password); err != nil {
		return err
	}
	if r.Role == "" {
		r.Role = string(models.RoleUser)
	}
	if !models.Role(r.Role).Valid() {
		return invalid("role", "must be %q or %q", models.RoleUser, models.RoleAdmin)
	}
	return nil
}

// ValidateTodo checks the title, description and priority bounds.
func ValidateTodo(t *TodoInput) error {
	if err := checkLength("title", t.Title, MinTitleLength, MaxTitleLength); err != nil {
		return err
	}
	if err := checkLength("description", t.Description, MinDescriptionLength, MaxDescriptionLength); err != nil {
		return err
	}
	if t.Priority < MinPriority || t.Priority > MaxPriority {
		return invalid("priority", "must be between %d and %d", MinPriority, MaxPriority)
	}
	return nil
}

// ValidatePasswordChange requires the current password and a well-formed new one.
func ValidatePasswordChange(p *PasswordChange) error {
	if p.CurrentPassword == "" {
		return invalid("current_password", "is required")
	}
	return checkPassword("new_password", p.NewPassword)
}

// ValidatePhoneChange requires the current password and a plausible phone number.
func ValidatePhoneChange(p *PhoneChange) error {
	if p.CurrentPassword == "" {
		return invalid("current_password", "is required")
	}
	p.NewPhone = strings.TrimSpace(p.NewPhone)
	if err := checkLength("new_phone", p.NewPhone, MinPhoneLength, MaxPhoneLength); err != nil {
		return err
	}
	for i, r := range p.NewPhone {
		if r == '+' && i == 0 {
			continue
		}
		if !unicode.IsDigit(r) && r != '-' && r != ' ' {
			return invalid("new_phone", "may only contain digits, spaces, dashes and a leading +")
		}
	}
	return nil
}

// ValidateCredentials requires both login fields.
func ValidateCredentials(c *Credentials) error {
	if c.Username == "" {
		return invalid("username", "is required")
	}
	if c.Password == "" {
		return invalid("password", "is required")
	}
	return nil
}

func checkPassword(field, pw string) error {
	return checkLength(field, pw, MinPasswordLength, MaxPasswordLength)
}

func checkLength(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min || n > max {
		return invalid(field, "must be between %d and %d characters", min, max)
	}
	return nil
}

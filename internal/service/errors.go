package service

import "errors"

var (
	// ErrNotFound means the resource does not exist or is not visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials is returned for an unknown username or a wrong password at login.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrWrongPassword is returned when re-verification of the current password fails.
	ErrWrongPassword = errors.New("current password is incorrect")
)

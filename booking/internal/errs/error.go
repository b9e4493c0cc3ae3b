package errs

import (
	"errors"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrTableNotFound = errors.New("table not found")
	ErrSlotConflict  = errors.New("conflicting reservation")
	ErrStorage       = errors.New("storage error")
	ErrTimeout       = errors.New("operation timed out")

	ErrNotFound    = errors.New("not found")
	ErrTableExists = errors.New("table already exists")

	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserNotConfirmed   = errors.New("user needs to confirm account")
	ErrInvalidCredentials = errors.New("Invalid email or password")
)

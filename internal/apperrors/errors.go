// Package apperrors holds the error taxonomy shared by repositories, services
// and handlers. Handlers pick a response per class with errors.Is.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

var (
	// ErrIdentityNotFound is returned when the calling identity does not exist.
	ErrIdentityNotFound = fmt.Errorf("identity %w", ErrNotFound)
	// ErrTargetNotFound is returned when the identity an admin operation
	// addresses (by email) does not exist.
	ErrTargetNotFound      = fmt.Errorf("target identity %w", ErrNotFound)
	ErrAccountNotFound     = fmt.Errorf("account %w", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("transaction %w", ErrNotFound)

	ErrInvalidAmount = fmt.Errorf("invalid amount: %w", ErrValidation)
	ErrEmailTaken    = errors.New("email already exists")
)

package store

import "errors"

var (
	// ErrAuthenticationRequired is returned by mutating calls made with no current user
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrInvalidCredentials is returned by Authenticate for anything but the demo account
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrInsufficientFunds = errors.New("insufficient funds")

	ErrItemNotFound = errors.New("store item not found")

	// ErrNotFound is returned when a create operation references a missing subject
	ErrNotFound = errors.New("not found")

	ErrValidation = errors.New("validation failed")

	// ErrGeneration marks generator output that breaks the question contract
	ErrGeneration = errors.New("invalid generated content")
)

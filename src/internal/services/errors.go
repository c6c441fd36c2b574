package services

import "errors"

// Error kinds surfaced by the vault services. Handlers translate these to
// HTTP statuses; anything else that bubbles up is a persistence failure.
var (
	ErrNotFound         = errors.New("record not found")
	ErrInvalidHierarchy = errors.New("only one level of collection nesting is allowed")
	ErrUserExists       = errors.New("username or email already exists")
)

package models

import "errors"

// Shared error kinds raised by the core packages. Handlers map these to
// HTTP statuses; callers match them with errors.Is.
var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrUnknownMenuItem        = errors.New("unknown menu item")
	ErrEmptyCart              = errors.New("cart is empty")
	ErrIllegalTransition      = errors.New("illegal status transition")
	ErrNotFound               = errors.New("not found")
	ErrConcurrentModification = errors.New("another operation on this entity is in flight")
	ErrPersistence            = errors.New("persistence failure")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
)

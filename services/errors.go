package services

import "errors"

// Sentinel errors returned by the service layer. Controllers map these to
// HTTP statuses; anything else is treated as an internal error.
var (
	ErrMissingFields         = errors.New("required fields are missing")
	ErrEmailTaken            = errors.New("email is already registered")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrTicketAlreadyAssigned = errors.New("ticket is already assigned")
	ErrInvalidStatus         = errors.New("invalid ticket status")
	ErrUserNotFound          = errors.New("user not found")
	ErrRoleNotFound          = errors.New("role not found")
)

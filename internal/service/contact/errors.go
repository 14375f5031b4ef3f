package contact

import "errors"

// Sentinel errors for the contact service layer.
var (
	ErrNotFound     = errors.New("contact not found")
	ErrDuplicate    = errors.New("contact with this email already exists")
	ErrInvalidEmail = errors.New("invalid email address")
)

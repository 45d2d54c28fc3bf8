package domain

import "errors"

// Sentinel errors for the domain layer.
var (
	ErrNotFound      = errors.New("domain: not found")
	ErrAlreadyExists = errors.New("domain: already exists")
	ErrValidation    = errors.New("domain: validation failed")
)

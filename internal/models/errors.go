package models

import "errors"

// Custom errors
var (
	ErrPlayerNameRequired = errors.New("player name is required")
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateKey       = errors.New("duplicate key violation")
	ErrInvalidID          = errors.New("invalid ID format")
	ErrInvalidOutcome     = errors.New("invalid game outcome code")
)

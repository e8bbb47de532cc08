package model

import "errors"

// Sentinel kinds for domain validation errors.
var (
	ErrInvalidInput = errors.New("invalid input")
)

package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrMissingPath = errors.New("missing path parameter")
)

// wrap prefixes err with the handler operation.
func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// badRequest wraps a decoding or validation failure as ErrBadRequest.
func badRequest(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err)
}

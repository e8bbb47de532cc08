package scoring

import (
	"errors"

	"github.com/okian/taskflow/internal/domain/model"
)

// Sentinel kinds for scoring errors. These allow errors.Is from callers.
var (
	// ErrDivisionByZero is returned when a candidate has no sprint capacity.
	ErrDivisionByZero = errors.New("division by zero: pointsPerSprint is zero")
	// ErrInvalidInput is the model validation error, re-exported for callers
	// that only import this package.
	ErrInvalidInput = model.ErrInvalidInput
)

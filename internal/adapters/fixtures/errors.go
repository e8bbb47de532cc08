package fixtures

import "errors"

// Sentinel kinds for fixture errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported fixture format")
	ErrDuplicateRecord   = errors.New("duplicate fixture record")
)

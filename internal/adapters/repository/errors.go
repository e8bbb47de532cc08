package repository

import "errors"

// Sentinel kinds for directory errors.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrTaskNotFound    = errors.New("task not found")
	ErrAlreadyAssigned = errors.New("task already assigned")
	ErrDuplicate       = errors.New("duplicate directory record")
)

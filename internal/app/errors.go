package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted       = errors.New("service not started")
	ErrBackpressure     = errors.New("recommendation queue is full")
	ErrBatchTooLarge    = errors.New("batch exceeds maximum size")
	ErrDuplicateRequest = errors.New("request is already being processed")
)

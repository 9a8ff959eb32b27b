package storage

import "errors"

// Common storage errors
var (
	// ErrRecordNotFound indicates that room record was not found in storage
	ErrRecordNotFound = errors.New("room record not found")
)

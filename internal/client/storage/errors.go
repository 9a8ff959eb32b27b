package storage

import "errors"

// Common client storage errors
var (
	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")

	// ErrStateNotFound indicates that no persisted state exists yet
	ErrStateNotFound = errors.New("persisted state not found")
)

package storage

import "errors"

// Common storage errors
var (
	// ErrClockNotFound indicates that no clock state was persisted yet
	ErrClockNotFound = errors.New("clock state not found")

	// ErrMessageNotFound indicates that no message exists for the requested cell
	ErrMessageNotFound = errors.New("message not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)

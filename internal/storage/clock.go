package storage

import "context"

//go:generate moq -out clockstorage_mock.go . ClockStorage

// ClockStorage stores the serialized clock state of a replica.
// It works with raw bytes: encoding is done by the clockstore package.
type ClockStorage interface {
	// SaveClock replaces the stored clock state
	SaveClock(ctx context.Context, raw []byte) error

	// LoadClock returns the stored clock state as-is
	// Returns ErrClockNotFound if nothing was saved yet
	LoadClock(ctx context.Context) ([]byte, error)
}

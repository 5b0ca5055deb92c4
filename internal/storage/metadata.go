package storage

import (
	"context"

	"github.com/iudanet/gophsync/internal/crdt"
)

//go:generate moq -out metadata_mock.go . MetadataStorage

// MetadataStorage defines interface for storing replica metadata
type MetadataStorage interface {
	// SaveLastSyncTimestamp saves the timestamp of the last successful sync
	SaveLastSyncTimestamp(ctx context.Context, ts crdt.Timestamp) error

	// GetLastSyncTimestamp retrieves the timestamp of the last successful sync
	// Returns false if no sync has been performed yet
	GetLastSyncTimestamp(ctx context.Context) (crdt.Timestamp, bool, error)
}

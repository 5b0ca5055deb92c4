package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/gophsync/internal/crdt"
	"github.com/iudanet/gophsync/internal/storage"
)

const (
	keyLastSyncTimestamp = "last_sync_timestamp"
)

// SaveLastSyncTimestamp saves the timestamp of the last successful sync
func (s *Storage) SaveLastSyncTimestamp(ctx context.Context, ts crdt.Timestamp) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		// Храним каноническую строку, она же формат обмена
		if err := bucket.Put([]byte(keyLastSyncTimestamp), []byte(ts.String())); err != nil {
			return fmt.Errorf("failed to save last sync timestamp: %w", err)
		}

		return nil
	})
}

// GetLastSyncTimestamp retrieves the timestamp of the last successful sync
// Returns false if no sync has been performed yet
func (s *Storage) GetLastSyncTimestamp(ctx context.Context) (crdt.Timestamp, bool, error) {
	if s.db == nil {
		return crdt.Timestamp{}, false, storage.ErrStorageClosed
	}

	var (
		ts    crdt.Timestamp
		found bool
	)

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		data := bucket.Get([]byte(keyLastSyncTimestamp))
		if data == nil {
			// Синхронизации еще не было
			return nil
		}

		parsed, ok := crdt.Parse(string(data))
		if !ok {
			return fmt.Errorf("invalid stored timestamp %q", string(data))
		}
		ts, found = parsed, true
		return nil
	})

	if err != nil {
		return crdt.Timestamp{}, false, fmt.Errorf("failed to get last sync timestamp: %w", err)
	}

	return ts, found, nil
}

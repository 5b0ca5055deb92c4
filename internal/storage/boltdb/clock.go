package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/gophsync/internal/storage"
)

const (
	keyClockState = "state"
)

// SaveClock replaces the stored clock state
func (s *Storage) SaveClock(ctx context.Context, raw []byte) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketClock)
		if bucket == nil {
			return fmt.Errorf("clock bucket not found")
		}

		if err := bucket.Put([]byte(keyClockState), raw); err != nil {
			return fmt.Errorf("failed to save clock state: %w", err)
		}

		return nil
	})
}

// LoadClock returns the stored clock state
// Returns ErrClockNotFound if nothing was saved yet
func (s *Storage) LoadClock(ctx context.Context) ([]byte, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var raw []byte

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketClock)
		if bucket == nil {
			return fmt.Errorf("clock bucket not found")
		}

		data := bucket.Get([]byte(keyClockState))
		if data == nil {
			return storage.ErrClockNotFound
		}

		// Значение валидно только внутри транзакции
		raw = make([]byte, len(data))
		copy(raw, data)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to load clock state: %w", err)
	}

	return raw, nil
}

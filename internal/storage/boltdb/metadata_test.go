package boltdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/iudanet/gophsync/internal/crdt"
	"github.com/iudanet/gophsync/internal/storage"
)

func TestSaveAndGetLastSyncTimestamp(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	// Изначально, если timestamp не сохранён, found == false
	_, found, err := store.GetLastSyncTimestamp(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	// Сохраняем timestamp
	expected := crdt.MustParse("2018-11-13T13:20:40.000Z-0007-0000000000000abc")
	err = store.SaveLastSyncTimestamp(ctx, expected)
	require.NoError(t, err)

	// Получаем и проверяем
	got, found, err := store.GetLastSyncTimestamp(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, expected, got)
}

func TestGetLastSyncTimestamp_Corrupted(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	err := store.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMetadata).Put([]byte(keyLastSyncTimestamp), []byte("garbage"))
	})
	require.NoError(t, err)

	_, _, err = store.GetLastSyncTimestamp(ctx)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid stored timestamp")
}

func TestGetLastSyncTimestamp_BucketMissing(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	// Удаляем bucket metadata напрямую
	err := store.db.Update(func(tx *bbolt.Tx) error {
		return tx.DeleteBucket(bucketMetadata)
	})
	require.NoError(t, err)

	// Попытка получить timestamp должна вернуть ошибку
	_, _, err = store.GetLastSyncTimestamp(ctx)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "metadata bucket not found")
}

func TestSaveLastSyncTimestamp_BucketMissing(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	// Удаляем bucket metadata напрямую
	err := store.db.Update(func(tx *bbolt.Tx) error {
		return tx.DeleteBucket(bucketMetadata)
	})
	require.NoError(t, err)

	// Попытка сохранить timestamp должна вернуть ошибку
	err = store.SaveLastSyncTimestamp(ctx, crdt.Zero())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "metadata bucket not found")
}

func TestLastSyncTimestamp_Closed(t *testing.T) {
	ctx := context.Background()
	store, _ := createTestStorage(t)
	require.NoError(t, store.Close())

	err := store.SaveLastSyncTimestamp(ctx, crdt.Zero())
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	_, _, err = store.GetLastSyncTimestamp(ctx)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

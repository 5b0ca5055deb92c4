package boltdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/iudanet/gophsync/internal/storage"
)

func TestStorage_SaveLoadClock(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	// До первого сохранения состояния нет
	_, err := store.LoadClock(ctx)
	assert.ErrorIs(t, err, storage.ErrClockNotFound)

	first := []byte(`{"timestamp":"2018-11-13T13:20:40.000Z-0000-0000000000000001","merkle":{}}`)
	require.NoError(t, store.SaveClock(ctx, first))

	got, err := store.LoadClock(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	// Сохранение заменяет предыдущее состояние целиком
	second := []byte(`{"timestamp":"2018-11-13T13:20:41.000Z-0000-0000000000000001","merkle":{}}`)
	require.NoError(t, store.SaveClock(ctx, second))

	got, err = store.LoadClock(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestStorage_LoadClock_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	require.NoError(t, store.SaveClock(ctx, []byte("abc")))

	got, err := store.LoadClock(ctx)
	require.NoError(t, err)
	got[0] = 'x'

	again, err := store.LoadClock(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestStorage_Clock_BucketMissing(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	// Удаляем bucket clock напрямую
	err := store.db.Update(func(tx *bbolt.Tx) error {
		return tx.DeleteBucket(bucketClock)
	})
	require.NoError(t, err)

	err = store.SaveClock(ctx, []byte("{}"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "clock bucket not found")

	_, err = store.LoadClock(ctx)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "clock bucket not found")
}

func TestStorage_Clock_Closed(t *testing.T) {
	ctx := context.Background()
	store, _ := createTestStorage(t)
	require.NoError(t, store.Close())

	err := store.SaveClock(ctx, []byte("{}"))
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	_, err = store.LoadClock(ctx)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

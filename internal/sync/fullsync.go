package sync

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/iudanet/gophsync/internal/crdt"
	"github.com/iudanet/gophsync/internal/merkle"
	"github.com/iudanet/gophsync/pkg/api"
)

// ErrOutOfSync означает, что реплики так и не сошлись за отведенное число
// раундов. Обычно это признак поврежденного trie (см. RepairMerkle).
var ErrOutOfSync = errors.New("replicas out of sync")

// SyncResult contains sync operation results
type SyncResult struct {
	Since  crdt.Timestamp // нижняя граница первого раунда
	Rounds int            // количество раундов обмена
	Pushed int            // количество отправленных сообщений
	Pulled int            // количество полученных сообщений
	Merged int            // количество впервые сохраненных полученных сообщений
}

// FullSync синхронизирует реплику с peer, пока их trie не совпадут.
//
// Каждый раунд отправляет свои сообщения после since и применяет ответ.
// Затем trie peer сравнивается с локальным; при расхождении следующий раунд
// начинается с найденной точки. Если точка расхождения повторяется
// MaxRepeats раз подряд или раундов больше MaxAttempts, возвращается
// ErrOutOfSync. Раунд, во время которого локальные часы ушли вперед,
// сбрасывает счетчик повторов.
func (r *Replica) FullSync(ctx context.Context, peer Peer) (*SyncResult, error) {
	since, err := r.syncStart(ctx)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{Since: since}

	var (
		count    int
		prevDiff *crdt.Timestamp
	)

	for {
		if err := ctx.Err(); err != nil {
			return result, errors.Wrap(err, "full sync")
		}
		result.Rounds++

		// Снимок часов, чтобы понять, менялось ли что-то локально во время раунда
		currentTime := r.Timestamp()

		local, err := r.MessagesSince(ctx, since)
		if err != nil {
			return result, err
		}

		r.logger.Info("Syncing since",
			"since", since.String(),
			"messages", len(local),
			"attempt", count)

		resp, err := peer.HandleSync(ctx, api.SyncRequest{
			Since:    since.String(),
			NodeID:   r.NodeID(),
			Messages: encodeMessages(local),
		})
		if err != nil {
			return result, errors.Wrap(err, "peer sync")
		}
		result.Pushed += len(local)

		remoteTrie, err := decodeMerkle(resp.Merkle)
		if err != nil {
			return result, err
		}
		incoming, err := decodeMessages(resp.Messages)
		if err != nil {
			return result, errors.Wrap(err, "peer response")
		}

		localTimeChanged := !r.Timestamp().Equal(currentTime)

		merged, err := r.ReceiveMessages(ctx, incoming)
		if err != nil {
			return result, err
		}
		result.Pulled += len(incoming)
		result.Merged += merged

		diffTime, diverged := merkle.Diff(remoteTrie, r.Merkle())
		if !diverged {
			break
		}

		if (count >= r.cfg.MaxRepeats && prevDiff != nil && diffTime.Equal(*prevDiff)) || count >= r.cfg.MaxAttempts {
			return result, r.outOfSync(ctx, count, diffTime, remoteTrie)
		}

		since = diffTime
		prevDiff = &diffTime
		if localTimeChanged {
			count = 0
		} else {
			count++
		}
	}

	// Все сошлось: запоминаем текущее время для следующей синхронизации
	if err := r.metadata.SaveLastSyncTimestamp(ctx, r.Timestamp()); err != nil {
		// Не прерываем синхронизацию из-за ошибки сохранения timestamp
		r.logger.Warn("Failed to save last sync timestamp", "error", err)
	}

	r.logger.Info("Synchronization completed",
		"rounds", result.Rounds,
		"pushed", result.Pushed,
		"pulled", result.Pulled,
		"merged", result.Merged)

	return result, nil
}

// syncStart выбирает нижнюю границу первого раунда: время последней
// успешной синхронизации или now-Lookback.
func (r *Replica) syncStart(ctx context.Context) (crdt.Timestamp, error) {
	last, found, err := r.metadata.GetLastSyncTimestamp(ctx)
	if err != nil {
		r.logger.Warn("Failed to get last sync timestamp, using lookback", "error", err)
	}
	if err == nil && found {
		return last, nil
	}

	now := time.Now
	if r.cfg.Now != nil {
		now = r.cfg.Now
	}
	millis := now().Add(-r.cfg.Lookback).UnixMilli()
	if millis < 0 {
		millis = 0
	}
	return crdt.Since(uint64(millis)), nil
}

// outOfSync собирает диагностическую ошибку: пересчитанный из журнала trie
// показывает, виноват ли сохраненный индекс.
func (r *Replica) outOfSync(ctx context.Context, count int, diffTime crdt.Timestamp, remote *merkle.Trie) error {
	local := r.Merkle()
	err := errors.WithDetailf(ErrOutOfSync,
		"attempts: %d, diff time: %s, local hash: %d, remote hash: %d",
		count, diffTime, local.RootHash(), remote.RootHash())

	rebuilt, n, rebuildErr := r.RebuildMerkle(ctx)
	if rebuildErr == nil {
		err = errors.WithDetailf(err, "rebuilt hash: %d from %d messages", rebuilt.RootHash(), n)
		if rebuilt.RootHash() != local.RootHash() {
			err = errors.WithHint(err, "the stored merkle trie does not match the message log; run rebuild --repair")
		}
	}

	r.logger.Error("Replicas out of sync",
		"attempts", count,
		"diff_time", diffTime.String(),
		"local_hash", local.RootHash(),
		"remote_hash", remote.RootHash())

	return err
}

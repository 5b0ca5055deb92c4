package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iudanet/gophsync/internal/config"
	"github.com/iudanet/gophsync/internal/storage/boltdb"
	"github.com/iudanet/gophsync/internal/storage/sqlite"
	"github.com/iudanet/gophsync/internal/sync"
)

// Node реплика вместе с открытыми файлами хранилищ.
type Node struct {
	Replica  *sync.Replica
	clocks   *boltdb.Storage
	messages *sqlite.Storage
}

// OpenNode открывает BoltDB с состоянием часов, SQLite с журналом сообщений
// и поднимает поверх них реплику.
func OpenNode(ctx context.Context, clockDB, messagesDB string, cfg sync.Config, logger *slog.Logger) (*Node, error) {
	clocks, err := boltdb.New(ctx, clockDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open clock database: %w", err)
	}

	messages, err := sqlite.New(ctx, messagesDB)
	if err != nil {
		_ = clocks.Close()
		return nil, fmt.Errorf("failed to open messages database: %w", err)
	}

	replica, err := sync.Open(ctx, sync.Deps{
		Clocks:   clocks,
		Metadata: clocks,
		Messages: messages,
		Logger:   logger,
	}, cfg)
	if err != nil {
		_ = messages.Close()
		_ = clocks.Close()
		return nil, err
	}

	return &Node{Replica: replica, clocks: clocks, messages: messages}, nil
}

// Close закрывает оба хранилища. Повторный вызов безопасен.
func (n *Node) Close() error {
	if n == nil {
		return nil
	}
	var firstErr error
	if n.messages != nil {
		if err := n.messages.Close(); err != nil {
			firstErr = fmt.Errorf("failed to close messages database: %w", err)
		}
		n.messages = nil
	}
	if n.clocks != nil {
		if err := n.clocks.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close clock database: %w", err)
		}
		n.clocks = nil
	}
	return firstErr
}

// ReplicaConfig переносит настройки из файла конфигурации в sync.Config.
func ReplicaConfig(cfg *config.Config) sync.Config {
	rc := sync.DefaultConfig()
	rc.NodeID = cfg.NodeID
	rc.MaxDrift = cfg.MaxDrift
	rc.PruneWidth = cfg.PruneWidth
	rc.Lookback = cfg.Sync.DefaultLookback
	rc.MaxAttempts = cfg.Sync.MaxAttempts
	rc.MaxRepeats = cfg.Sync.MaxRepeats
	return rc
}

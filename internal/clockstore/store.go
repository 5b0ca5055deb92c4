package clockstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/gophsync/internal/crdt"
	"github.com/iudanet/gophsync/internal/storage"
)

// Store loads and saves ClockState through a ClockStorage.
type Store struct {
	storage storage.ClockStorage
	logger  *slog.Logger
	nodeID  string
}

// NewStore creates a Store. nodeID is used only when a fresh state has to be
// created; an empty nodeID generates a random one.
func NewStore(clockStorage storage.ClockStorage, nodeID string, logger *slog.Logger) *Store {
	return &Store{
		storage: clockStorage,
		nodeID:  nodeID,
		logger:  logger,
	}
}

// Load returns the persisted state. When there is none, or it cannot be
// decoded, a fresh state is created and saved, and the second result is
// true. Storage failures other than absence are returned.
func (s *Store) Load(ctx context.Context) (*ClockState, bool, error) {
	raw, err := s.storage.LoadClock(ctx)
	if err != nil && !errors.Is(err, storage.ErrClockNotFound) {
		return nil, false, fmt.Errorf("failed to load clock state: %w", err)
	}

	if err == nil {
		state, decodeErr := decode(raw)
		if decodeErr == nil {
			if s.nodeID != "" && crdt.New(0, 0, s.nodeID).NodeKey() != state.Timestamp.NodeKey() {
				s.logger.Info("Configured node id ignored, using persisted one",
					"configured", s.nodeID,
					"node_id", state.Timestamp.Node())
			}
			s.logger.Debug("Clock state loaded",
				"timestamp", state.Timestamp.String(),
				"merkle_hash", state.Merkle.RootHash())
			return state, false, nil
		}
		s.logger.Warn("Corrupted clock state, starting fresh", "error", decodeErr)
	}

	state := Fresh(s.nodeID)
	if err := s.Save(ctx, state); err != nil {
		return nil, false, err
	}

	s.logger.Info("Fresh clock state created", "node_id", state.Timestamp.Node())
	return state, true, nil
}

// Save persists the state.
func (s *Store) Save(ctx context.Context, state *ClockState) error {
	raw, err := Save(state)
	if err != nil {
		return err
	}

	if err := s.storage.SaveClock(ctx, raw); err != nil {
		return fmt.Errorf("failed to save clock state: %w", err)
	}

	return nil
}

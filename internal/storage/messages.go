package storage

import (
	"context"

	"github.com/iudanet/gophsync/internal/crdt"
	"github.com/iudanet/gophsync/internal/models"
)

// MessageStorage is the append-only message log of a replica.
// Messages are identified by their timestamp and never updated.
type MessageStorage interface {
	// SaveMessage stores a message unless one with the same timestamp exists.
	// Returns true if the message was newly stored.
	SaveMessage(ctx context.Context, msg *models.Message) (bool, error)

	// GetMessagesSince returns messages with timestamp strictly after since,
	// ordered by timestamp
	GetMessagesSince(ctx context.Context, since crdt.Timestamp) ([]*models.Message, error)

	// ListMessages returns the whole log ordered by timestamp
	ListMessages(ctx context.Context) ([]*models.Message, error)

	// GetLatest returns the winning (newest) message for a cell
	// Returns ErrMessageNotFound if the cell was never written
	GetLatest(ctx context.Context, dataset, row, column string) (*models.Message, error)

	// CountMessages returns the number of stored messages
	CountMessages(ctx context.Context) (int, error)
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/gophsync/internal/crdt"
	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/storage"
)

const messageColumns = `timestamp, dataset, row_id, column_name, value`

// SaveMessage appends a message to the log.
// The log is keyed by timestamp: a message that is already stored is ignored.
// Returns true if the message was newly stored.
func (s *Storage) SaveMessage(ctx context.Context, msg *models.Message) (bool, error) {
	query := `
		INSERT OR IGNORE INTO messages (` + messageColumns + `)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		msg.Timestamp.String(),
		msg.Dataset,
		msg.Row,
		msg.Column,
		msg.Value,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert message: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows == 1, nil
}

// GetMessagesSince returns messages with timestamp strictly after since.
// Canonical timestamp strings sort in timestamp order, so the text column
// is compared directly.
func (s *Storage) GetMessagesSince(ctx context.Context, since crdt.Timestamp) (msgs []*models.Message, err error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE timestamp > ?
		ORDER BY timestamp
	`

	rows, err := s.db.QueryContext(ctx, query, since.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return s.scanMessages(rows)
}

// ListMessages returns the whole log ordered by timestamp
func (s *Storage) ListMessages(ctx context.Context) (msgs []*models.Message, err error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		ORDER BY timestamp
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return s.scanMessages(rows)
}

// GetLatest returns the newest message written to a cell
// Returns ErrMessageNotFound if the cell was never written
func (s *Storage) GetLatest(ctx context.Context, dataset, row, column string) (*models.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE dataset = ? AND row_id = ? AND column_name = ?
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var ts string
	msg := &models.Message{}
	err := s.db.QueryRowContext(ctx, query, dataset, row, column).Scan(
		&ts,
		&msg.Dataset,
		&msg.Row,
		&msg.Column,
		&msg.Value,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to get latest message: %w", err)
	}

	if err := msg.Timestamp.UnmarshalText([]byte(ts)); err != nil {
		return nil, fmt.Errorf("failed to decode message timestamp: %w", err)
	}

	return msg, nil
}

// CountMessages returns the number of stored messages
func (s *Storage) CountMessages(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

// scanMessages is a helper function to scan multiple messages from rows
func (s *Storage) scanMessages(rows *sql.Rows) ([]*models.Message, error) {
	var msgs []*models.Message

	for rows.Next() {
		var ts string
		msg := &models.Message{}

		err := rows.Scan(
			&ts,
			&msg.Dataset,
			&msg.Row,
			&msg.Column,
			&msg.Value,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		if err := msg.Timestamp.UnmarshalText([]byte(ts)); err != nil {
			return nil, fmt.Errorf("failed to decode message timestamp: %w", err)
		}

		msgs = append(msgs, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return msgs, nil
}

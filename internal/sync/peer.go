package sync

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"

	"github.com/iudanet/gophsync/internal/crdt"
	"github.com/iudanet/gophsync/internal/merkle"
	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/pkg/api"
)

//go:generate moq -out peer_mock.go . Peer

// Peer отвечающая сторона обмена. Транспорт (HTTP, файл, процесс) находится
// за пределами пакета; *Replica сама реализует Peer для обмена в процессе.
type Peer interface {
	HandleSync(ctx context.Context, req api.SyncRequest) (*api.SyncResponse, error)
}

var _ Peer = (*Replica)(nil)

// HandleSync отвечает на запрос синхронизации: собирает свои сообщения
// после req.Since (до применения входящих), применяет входящие и
// возвращает их вместе с урезанным trie.
func (r *Replica) HandleSync(ctx context.Context, req api.SyncRequest) (*api.SyncResponse, error) {
	since := crdt.Zero()
	if req.Since != "" {
		ts, ok := crdt.Parse(req.Since)
		if !ok {
			return nil, errors.Newf("invalid since timestamp %q", req.Since)
		}
		since = ts
	}

	incoming, err := decodeMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	outgoing, err := r.MessagesSince(ctx, since)
	if err != nil {
		return nil, err
	}

	// Сообщения самого запрашивающего узла ему уже известны
	if req.NodeID != "" {
		requester := crdt.New(0, 0, req.NodeID).NodeKey()
		filtered := outgoing[:0]
		for _, msg := range outgoing {
			if msg.Timestamp.NodeKey() != requester {
				filtered = append(filtered, msg)
			}
		}
		outgoing = filtered
	}

	if _, err := r.ReceiveMessages(ctx, incoming); err != nil {
		return nil, err
	}

	trie, err := json.Marshal(r.SyncMerkle())
	if err != nil {
		return nil, errors.Wrap(err, "encode merkle")
	}

	r.logger.Info("Handled sync request",
		"since", since.String(),
		"node_id", req.NodeID,
		"received", len(incoming),
		"sent", len(outgoing))

	return &api.SyncResponse{
		Merkle:   trie,
		Messages: encodeMessages(outgoing),
	}, nil
}

// encodeMessages конвертирует сообщения в формат обмена
func encodeMessages(msgs []*models.Message) []api.Message {
	out := make([]api.Message, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, api.Message{
			Timestamp: msg.Timestamp.String(),
			Dataset:   msg.Dataset,
			Row:       msg.Row,
			Column:    msg.Column,
			Value:     msg.Value,
		})
	}
	return out
}

// decodeMessages конвертирует сообщения из формата обмена
func decodeMessages(msgs []api.Message) ([]*models.Message, error) {
	out := make([]*models.Message, 0, len(msgs))
	for _, m := range msgs {
		ts, ok := crdt.Parse(m.Timestamp)
		if !ok {
			return nil, errors.Newf("invalid message timestamp %q", m.Timestamp)
		}
		out = append(out, &models.Message{
			Timestamp: ts,
			Dataset:   m.Dataset,
			Row:       m.Row,
			Column:    m.Column,
			Value:     m.Value,
		})
	}
	return out, nil
}

// decodeMerkle читает trie из ответа; отсутствие trie означает пустое.
func decodeMerkle(raw json.RawMessage) (*merkle.Trie, error) {
	trie := merkle.New()
	if len(raw) == 0 || string(raw) == "null" {
		return trie, nil
	}
	if err := json.Unmarshal(raw, trie); err != nil {
		return nil, errors.Wrap(err, "decode peer merkle")
	}
	return trie, nil
}

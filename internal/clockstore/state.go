// Package clockstore persists the clock of a replica together with its
// merkle trie.
package clockstore

import (
	"encoding/json"
	"fmt"

	"github.com/iudanet/gophsync/internal/crdt"
	"github.com/iudanet/gophsync/internal/merkle"
)

// ClockState is the persisted pair of the current clock reading and the
// merkle trie of every accepted message.
type ClockState struct {
	Timestamp crdt.Timestamp
	Merkle    *merkle.Trie
}

// record is the on-disk form: {"timestamp":"<canonical>","merkle":{...}}
type record struct {
	Timestamp string          `json:"timestamp"`
	Merkle    json.RawMessage `json:"merkle"`
}

// Fresh returns the first-run state: the zero clock of the given node and
// an empty trie. An empty nodeID generates a new one.
func Fresh(nodeID string) *ClockState {
	if nodeID == "" {
		nodeID = crdt.NewNodeID()
	}
	return &ClockState{
		Timestamp: crdt.New(0, 0, nodeID),
		Merkle:    merkle.New(),
	}
}

// Load decodes a persisted record. Missing or malformed input never fails:
// a fresh state is returned instead and the second result is true, so the
// caller can persist it right away.
func Load(raw []byte) (*ClockState, bool) {
	state, err := decode(raw)
	if err != nil {
		return Fresh(""), true
	}
	return state, false
}

// Save encodes the state into its persisted form.
func Save(state *ClockState) ([]byte, error) {
	trie, err := json.Marshal(orEmpty(state.Merkle))
	if err != nil {
		return nil, fmt.Errorf("failed to encode merkle trie: %w", err)
	}

	raw, err := json.Marshal(record{
		Timestamp: state.Timestamp.String(),
		Merkle:    trie,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode clock state: %w", err)
	}

	return raw, nil
}

func decode(raw []byte) (*ClockState, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty clock state")
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode clock state: %w", err)
	}

	ts, ok := crdt.Parse(rec.Timestamp)
	if !ok {
		return nil, fmt.Errorf("invalid clock timestamp %q", rec.Timestamp)
	}

	trie := merkle.New()
	if len(rec.Merkle) > 0 && string(rec.Merkle) != "null" {
		if err := json.Unmarshal(rec.Merkle, trie); err != nil {
			return nil, fmt.Errorf("failed to decode merkle trie: %w", err)
		}
	}

	return &ClockState{Timestamp: ts, Merkle: trie}, nil
}

func orEmpty(t *merkle.Trie) *merkle.Trie {
	if t == nil {
		return merkle.New()
	}
	return t
}

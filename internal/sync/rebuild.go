package sync

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/iudanet/gophsync/internal/merkle"
)

// RepairResult describes a RepairMerkle run.
type RepairResult struct {
	Messages   int
	BeforeHash uint32
	AfterHash  uint32
}

// RebuildMerkle recomputes the trie from the message log. It returns the
// rebuilt trie and the number of messages indexed; the replica is not
// changed.
func (r *Replica) RebuildMerkle(ctx context.Context) (*merkle.Trie, int, error) {
	msgs, err := r.messages.ListMessages(ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, "rebuild merkle")
	}

	trie := merkle.New()
	for _, msg := range msgs {
		trie = trie.Insert(msg.Timestamp)
	}
	return trie, len(msgs), nil
}

// RepairMerkle replaces the trie with one rebuilt from the message log and
// persists it.
func (r *Replica) RepairMerkle(ctx context.Context) (*RepairResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	trie, n, err := r.RebuildMerkle(ctx)
	if err != nil {
		return nil, err
	}

	result := &RepairResult{
		Messages:   n,
		BeforeHash: r.trie.RootHash(),
		AfterHash:  trie.RootHash(),
	}
	r.trie = trie

	if result.BeforeHash != result.AfterHash {
		r.logger.Warn("Merkle trie repaired",
			"before", result.BeforeHash,
			"after", result.AfterHash,
			"messages", n)
	}

	return result, r.finish(ctx, nil)
}

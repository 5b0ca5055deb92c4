package cli

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/iudanet/gophsync/internal/sync"
)

func (c *Cli) newSyncCommand() *cobra.Command {
	var peerClockDB, peerMessagesDB string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize with another replica stored on this machine",
		Long: `Synchronize with another replica whose clock and messages databases
are given by --peer-clock-db and --peer-messages-db. Both replicas end up
with the same message log and merkle trie.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// Узел peer получает свой node id из собственного состояния
			peerCfg := ReplicaConfig(c.cfg)
			peerCfg.NodeID = ""

			peer, err := OpenNode(ctx, peerClockDB, peerMessagesDB, peerCfg, c.logger.With("replica", "peer"))
			if err != nil {
				return fmt.Errorf("failed to open peer: %w", err)
			}
			defer func() {
				if err := peer.Close(); err != nil {
					c.logger.Error("failed to close peer", "error", err)
				}
			}()

			return c.runSync(ctx, peer.Replica)
		},
	}

	cmd.Flags().StringVar(&peerClockDB, "peer-clock-db", "", "path to the peer clock database")
	cmd.Flags().StringVar(&peerMessagesDB, "peer-messages-db", "", "path to the peer messages database")
	_ = cmd.MarkFlagRequired("peer-clock-db")
	_ = cmd.MarkFlagRequired("peer-messages-db")

	return cmd
}

func (c *Cli) runSync(ctx context.Context, peer sync.Peer) error {
	c.io.Println("Starting synchronization with peer...")

	result, err := c.replica.FullSync(ctx, peer)
	if err != nil {
		if errors.Is(err, sync.ErrOutOfSync) {
			for _, hint := range errors.GetAllHints(err) {
				c.io.Printf("Hint: %s\n", hint)
			}
		}
		return fmt.Errorf("sync failed: %w", err)
	}

	c.io.Println("Synchronization completed successfully")
	c.io.Printf("Since:           %s\n", result.Since)
	c.io.Printf("Rounds:          %d\n", result.Rounds)
	c.io.Printf("Pushed to peer:  %d messages\n", result.Pushed)
	c.io.Printf("Pulled:          %d messages\n", result.Pulled)
	c.io.Printf("Merged locally:  %d messages\n", result.Merged)
	c.io.Printf("Merkle hash:     %d\n", c.replica.Merkle().RootHash())
	return nil
}

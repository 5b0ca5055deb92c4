package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func (c *Cli) newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show replica clock, merkle root and log size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStatus(cmd.Context())
		},
	}
}

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Replica Status ===")
	c.io.Println()

	count, err := c.messages.CountMessages(ctx)
	if err != nil {
		return fmt.Errorf("failed to count messages: %w", err)
	}

	lastSync, ok, err := c.metadata.GetLastSyncTimestamp(ctx)
	if err != nil {
		return fmt.Errorf("failed to get last sync timestamp: %w", err)
	}

	trie := c.replica.Merkle()

	c.io.Printf("Node ID:      %s\n", c.replica.NodeID())
	c.io.Printf("Clock:        %s\n", c.replica.Timestamp())
	c.io.Printf("Merkle hash:  %d\n", trie.RootHash())
	c.io.Printf("Merkle nodes: %d\n", trie.Count())
	c.io.Printf("Messages:     %d\n", count)
	if ok {
		c.io.Printf("Last sync:    %s\n", lastSync)
	} else {
		c.io.Println("Last sync:    never")
	}

	return nil
}

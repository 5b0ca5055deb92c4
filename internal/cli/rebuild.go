package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func (c *Cli) newRebuildCommand() *cobra.Command {
	var repair bool

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Recompute the merkle trie from the message log",
		Long: `Recompute the merkle trie from the message log and compare it with the
persisted one. With --repair the persisted trie is replaced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRebuild(cmd.Context(), repair)
		},
	}

	cmd.Flags().BoolVar(&repair, "repair", false, "replace the persisted trie with the rebuilt one")

	return cmd
}

func (c *Cli) runRebuild(ctx context.Context, repair bool) error {
	if repair {
		result, err := c.replica.RepairMerkle(ctx)
		if err != nil {
			return fmt.Errorf("failed to repair merkle trie: %w", err)
		}
		c.io.Printf("Indexed %d messages\n", result.Messages)
		if result.BeforeHash == result.AfterHash {
			c.io.Printf("Merkle trie is consistent (hash %d)\n", result.AfterHash)
		} else {
			c.io.Printf("Merkle trie repaired: %d -> %d\n", result.BeforeHash, result.AfterHash)
		}
		return nil
	}

	rebuilt, n, err := c.replica.RebuildMerkle(ctx)
	if err != nil {
		return fmt.Errorf("failed to rebuild merkle trie: %w", err)
	}

	current := c.replica.Merkle().RootHash()
	c.io.Printf("Indexed %d messages\n", n)
	if rebuilt.RootHash() == current {
		c.io.Printf("Merkle trie is consistent (hash %d)\n", current)
	} else {
		c.io.Printf("Merkle trie differs: persisted %d, rebuilt %d\n", current, rebuilt.RootHash())
		c.io.Println("Run 'gophsync rebuild --repair' to replace it")
	}
	return nil
}

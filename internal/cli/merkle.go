package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func (c *Cli) newMerkleCommand() *cobra.Command {
	var (
		prune  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "merkle",
		Short: "Print the merkle trie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMerkle(prune, asJSON)
		},
	}

	cmd.Flags().IntVarP(&prune, "prune", "p", -1, "keep only the N newest children per level (-1 prints the full trie)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the wire JSON form")

	return cmd
}

func (c *Cli) runMerkle(prune int, asJSON bool) error {
	trie := c.replica.Merkle()
	if prune >= 0 {
		trie = trie.Prune(prune)
	}

	if asJSON {
		data, err := json.MarshalIndent(trie, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode merkle trie: %w", err)
		}
		_, err = c.io.Write(append(data, '\n'))
		return err
	}

	_, err := c.io.Write([]byte(trie.Debug()))
	return err
}

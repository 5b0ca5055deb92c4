package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/gophsync/internal/storage"
)

func (c *Cli) newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <dataset> <row> <column>",
		Short: "Show the current value of a cell",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGet(cmd.Context(), args[0], args[1], args[2])
		},
	}
}

func (c *Cli) runGet(ctx context.Context, dataset, row, column string) error {
	value, err := c.replica.Value(ctx, dataset, row, column)
	if err != nil {
		if errors.Is(err, storage.ErrMessageNotFound) {
			return fmt.Errorf("no value for %s.%s.%s", dataset, row, column)
		}
		return fmt.Errorf("failed to get value: %w", err)
	}

	c.io.Println(formatValue(value))
	return nil
}

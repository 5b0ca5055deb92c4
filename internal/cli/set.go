package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/iudanet/gophsync/internal/sync"
	"github.com/iudanet/gophsync/internal/validation"
)

// Типы значений для set
const (
	kindString = "string"
	kindNumber = "number"
	kindNull   = "null"
)

func (c *Cli) newSetCommand() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "set <dataset> <row> <column> [value]",
		Short: "Record a new value for a cell",
		Long: `Record a new value for a cell. The change is stamped with the local
hybrid logical clock, stored in the message log and indexed in the merkle
trie. When value is omitted it is read from stdin.`,
		Args: cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSet(cmd.Context(), args, kind)
		},
	}

	cmd.Flags().StringVarP(&kind, "type", "t", kindString, "value type (string|number|null)")

	return cmd
}

func (c *Cli) runSet(ctx context.Context, args []string, kind string) error {
	dataset, row, column := args[0], args[1], args[2]

	if err := validation.ValidateName("dataset", dataset); err != nil {
		return err
	}
	if err := validation.ValidateRowID(row); err != nil {
		return err
	}
	if err := validation.ValidateName("column", column); err != nil {
		return err
	}

	var raw string
	switch {
	case len(args) == 4:
		raw = args[3]
	case kind != kindNull:
		input, err := c.io.ReadInput("Value: ")
		if err != nil {
			return fmt.Errorf("failed to read value: %w", err)
		}
		raw = input
	}

	value, err := parseValue(raw, kind)
	if err != nil {
		return err
	}

	msgs, err := c.replica.SendMessages(ctx, []sync.Change{{
		Dataset: dataset,
		Row:     row,
		Column:  column,
		Value:   value,
	}})
	if err != nil {
		return fmt.Errorf("failed to set value: %w", err)
	}

	for _, msg := range msgs {
		c.io.Printf("%s %s.%s.%s = %s\n", msg.Timestamp, msg.Dataset, msg.Row, msg.Column, formatValue(value))
	}
	return nil
}

func parseValue(raw, kind string) (any, error) {
	switch kind {
	case kindString:
		return raw, nil
	case kindNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", raw, err)
		}
		return n, nil
	case kindNull:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown value type %q: must be one of string, number, null", kind)
	}
}

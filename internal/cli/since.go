package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/gophsync/internal/crdt"
	"github.com/iudanet/gophsync/internal/models"
)

func (c *Cli) newSinceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "since [timestamp]",
		Short: "List messages stamped after a timestamp",
		Long: `List messages from the local log stamped strictly after the given
timestamp (canonical form, e.g. 2018-11-13T13:20:40.000Z-0000-0000000000000000).
Without an argument the whole log is listed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := ""
			if len(args) == 1 {
				raw = args[0]
			}
			return c.runSince(cmd.Context(), raw)
		},
	}
}

func (c *Cli) runSince(ctx context.Context, raw string) error {
	since := crdt.Zero()
	if raw != "" {
		ts, ok := crdt.Parse(raw)
		if !ok {
			return fmt.Errorf("invalid timestamp %q", raw)
		}
		since = ts
	}

	msgs, err := c.replica.MessagesSince(ctx, since)
	if err != nil {
		return fmt.Errorf("failed to list messages: %w", err)
	}

	for _, msg := range msgs {
		c.io.Printf("%s %s.%s.%s = %s\n", msg.Timestamp, msg.Dataset, msg.Row, msg.Column, displayValue(msg))
	}
	c.io.Printf("Total: %d messages\n", len(msgs))
	return nil
}

// displayValue показывает сохраненное значение, не падая на чужом формате.
func displayValue(msg *models.Message) string {
	v, err := models.DeserializeValue(msg.Value)
	if err != nil {
		return msg.Value
	}
	return formatValue(v)
}

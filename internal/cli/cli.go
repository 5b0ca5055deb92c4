package cli

import (
	"log/slog"
	"strconv"

	"github.com/iudanet/gophsync/internal/config"
	"github.com/iudanet/gophsync/internal/iocli"
	"github.com/iudanet/gophsync/internal/storage"
	"github.com/iudanet/gophsync/internal/sync"
)

// VersionInfo is set via ldflags during build
type VersionInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

type Cli struct {
	io       iocli.IO
	cfg      *config.Config
	logger   *slog.Logger
	node     *Node
	replica  *sync.Replica
	messages storage.MessageStorage
	metadata storage.MetadataStorage
}

func New(io iocli.IO) *Cli {
	return &Cli{io: io, logger: slog.Default()}
}

// attach подключает открытый узел к командам.
func (c *Cli) attach(cfg *config.Config, logger *slog.Logger, node *Node) {
	c.cfg = cfg
	c.logger = logger
	c.node = node
	c.replica = node.Replica
	c.messages = node.messages
	c.metadata = node.clocks
}

// Close закрывает открытый узел, если он был открыт.
func (c *Cli) Close() error {
	if c.node == nil {
		return nil
	}
	err := c.node.Close()
	c.node = nil
	return err
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return "?"
	}
}

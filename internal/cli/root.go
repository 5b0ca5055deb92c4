package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/iudanet/gophsync/internal/config"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	configFile string
	clockDB    string
	messagesDB string
	nodeID     string
	logLevel   string
}

// flagKeys связывает глобальные флаги с ключами конфигурации
var flagKeys = map[string]string{
	"clock-db":    "clock_db",
	"messages-db": "messages_db",
	"node-id":     "node_id",
	"log-level":   "log_level",
}

// RootCommand creates the root command. The replica is opened before any
// subcommand runs and stays open until Close.
func (c *Cli) RootCommand(info VersionInfo) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "gophsync",
		Short: "gophsync - offline-first replica with HLC and merkle sync",
		Long: `gophsync keeps a local log of cell changes stamped with a hybrid
logical clock and reconciles it with other replicas by comparing merkle
tries of one-minute time buckets.`,
		SilenceUsage:  true,
		SilenceErrors: true, // ошибку печатает main
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open(cmd, opts)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "path to config file (yaml, json or toml)")
	cmd.PersistentFlags().StringVar(&opts.clockDB, "clock-db", "", "path to clock database (default gophsync-clock.db)")
	cmd.PersistentFlags().StringVar(&opts.messagesDB, "messages-db", "", "path to messages database (default gophsync-messages.db)")
	cmd.PersistentFlags().StringVar(&opts.nodeID, "node-id", "", "node id for a fresh replica (hex, up to 16 chars)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug|info|warn|error)")

	// Add subcommands
	cmd.AddCommand(c.newStatusCommand())
	cmd.AddCommand(c.newSetCommand())
	cmd.AddCommand(c.newGetCommand())
	cmd.AddCommand(c.newSinceCommand())
	cmd.AddCommand(c.newMerkleCommand())
	cmd.AddCommand(c.newSyncCommand())
	cmd.AddCommand(c.newRebuildCommand())
	cmd.AddCommand(newVersionCommand(info))

	return cmd
}

// open загружает конфигурацию и открывает локальную реплику.
func (c *Cli) open(cmd *cobra.Command, opts *rootOptions) error {
	v, err := config.NewViper(opts.configFile)
	if err != nil {
		return err
	}

	flags := cmd.Root().PersistentFlags()
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	node, err := OpenNode(cmd.Context(), cfg.ClockDB, cfg.MessagesDB, ReplicaConfig(cfg), logger)
	if err != nil {
		return err
	}
	c.attach(cfg, logger, node)
	return nil
}

func newVersionCommand(info VersionInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// версия не открывает базы
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "gophsync\n")
			_, _ = fmt.Fprintf(out, "Version:    %s\n", info.Version)
			_, _ = fmt.Fprintf(out, "Build Date: %s\n", info.BuildDate)
			_, _ = fmt.Fprintf(out, "Git Commit: %s\n", info.GitCommit)
		},
	}
}

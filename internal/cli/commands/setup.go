package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdw/internal/cli/output"
	"github.com/leapstack-labs/leapdw/internal/config"
	"github.com/leapstack-labs/leapdw/internal/journal"
	"github.com/leapstack-labs/leapdw/pkg/adapter"
	"github.com/leapstack-labs/leapdw/pkg/sqlgen"
	"github.com/leapstack-labs/leapdw/pkg/warehouse"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Client   *warehouse.Client
	Journal  *journal.Store
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with a warehouse client and renderer.
// When withJournal is set the transfer journal is opened as well.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command, withJournal bool) (*CommandContext, func(), error) {
	cc, err := NewCommandContextWithoutClient(cmd)
	if err != nil {
		return nil, nil, err
	}

	client, err := openClient(cc.Cfg, cc.Logger)
	if err != nil {
		return nil, nil, err
	}
	cc.Client = client

	if withJournal {
		store, err := journal.Open(cmd.Context(), cc.Cfg.StatePath, cc.Logger)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		cc.Journal = store
	}

	cleanup := func() {
		if cc.Journal != nil {
			_ = cc.Journal.Close()
		}
		_ = cc.Client.Close()
	}
	return cc, cleanup, nil
}

// NewCommandContextWithoutClient creates a CommandContext without a warehouse client.
// Useful for commands that don't need warehouse access.
func NewCommandContextWithoutClient(cmd *cobra.Command) (*CommandContext, error) {
	cfg := getConfig(cmd.Context())
	mode, err := output.ParseMode(cfg.OutputFormat)
	if err != nil {
		return nil, err
	}
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode),
	}, nil
}

// getConfig returns the configuration loaded by the root command, or defaults.
func getConfig(ctx context.Context) *config.Config {
	if cfg := config.FromContext(ctx); cfg != nil {
		return cfg
	}
	return &config.Config{
		StatePath:    config.DefaultStateFile,
		Environment:  config.DefaultEnv,
		OutputFormat: config.DefaultOutput,
		Quote:        config.DefaultQuote,
		Target:       &config.TargetConfig{Type: config.DefaultTargetType, Schema: "main"},
	}
}

func openClient(cfg *config.Config, logger *slog.Logger) (*warehouse.Client, error) {
	quote, err := sqlgen.ParseQuoteMode(cfg.Quote)
	if err != nil {
		return nil, err
	}
	return warehouse.New(cfg.Target.ConnectionConfig(),
		warehouse.WithLogger(logger),
		warehouse.WithGeneratorOptions(sqlgen.Options{Quote: quote}),
		warehouse.WithPool(adapter.PoolOptions{MaxOpenConns: cfg.MaxOpenConns}),
	)
}

// record writes a journal entry for a finished transfer. Journal failures are
// logged and joined onto the transfer's own error.
func (cc *CommandContext) record(ctx context.Context, t journal.Transfer, transferErr error) error {
	if cc.Journal == nil {
		return transferErr
	}
	t.Target = cc.Cfg.Target.Type
	t.FinishedAt = time.Now()
	t.Status = journal.StatusSuccess
	if transferErr != nil {
		t.Status = journal.StatusFailed
		t.Error = transferErr.Error()
	}
	if _, err := cc.Journal.Record(ctx, t); err != nil {
		cc.Logger.Warn("failed to record transfer", slog.String("table", t.Table), slog.Any("error", err))
		return errors.Join(transferErr, err)
	}
	return transferErr
}

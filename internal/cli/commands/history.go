package commands

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdw/internal/journal"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Table string
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded transfers",
		Long: `Show the exports, loads and seeds recorded in the local state database,
newest first.`,
		Example: `  leapdw history --limit 20
  leapdw history --table public.orders --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Table, "table", "", "Only show transfers of this table")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 50, "Maximum number of records (0 for all)")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	cc, err := NewCommandContextWithoutClient(cmd)
	if err != nil {
		return err
	}
	r := cc.Renderer

	if _, err := os.Stat(cc.Cfg.StatePath); os.IsNotExist(err) {
		if handled, err := r.Structured([]journal.Transfer{}); handled {
			return err
		}
		r.Muted("No transfers recorded yet (" + cc.Cfg.StatePath + ")")
		return nil
	}

	store, err := journal.Open(cmd.Context(), cc.Cfg.StatePath, cc.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	transfers, err := store.List(cmd.Context(), journal.ListOptions{Table: opts.Table, Limit: opts.Limit})
	if err != nil {
		return err
	}

	if handled, err := r.Structured(transfers); handled {
		return err
	}

	rows := make([][]any, len(transfers))
	for i, t := range transfers {
		rows[i] = []any{
			t.StartedAt.Local().Format("2006-01-02 15:04:05"),
			string(t.Kind),
			t.Table,
			t.Path,
			rowCount(t.Rows),
			string(t.Status),
			t.Duration().Round(time.Millisecond).String(),
			t.Error,
		}
	}
	return r.Table([]string{"started", "kind", "table", "path", "rows", "status", "duration", "error"}, rows)
}

func rowCount(n int) any {
	if n < 0 {
		return ""
	}
	return n
}

package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/leapdw/pkg/core"
	"github.com/leapstack-labs/leapdw/pkg/executor"
)

// errLimitReached stops a stream once --limit rows were collected.
var errLimitReached = errors.New("row limit reached")

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Input string
	Count bool
	Limit int
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run a SQL statement against the warehouse",
		Long: `Run a SQL statement against the warehouse and print its result.

The statement comes from the arguments, from --input, or from stdin when it
is piped. With --count only the scalar count of the first row is printed.`,
		Example: `  # Run SQL directly
  leapdw query "SELECT * FROM public.orders LIMIT 10"

  # Row count
  leapdw query --count "SELECT COUNT(*) AS count FROM public.orders"

  # From a file, as CSV
  leapdw query --input report.sql --output csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")
	cmd.Flags().BoolVar(&opts.Count, "count", false, "Print only the scalar count")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Stop after this many rows (0 for all)")

	return cmd
}

// readQuery resolves the SQL text from args, a file or piped stdin.
func readQuery(cmd *cobra.Command, args []string, input string) (string, error) {
	var sql string
	switch {
	case len(args) > 0:
		sql = strings.Join(args, " ")
	case input != "":
		content, err := os.ReadFile(input)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		sql = string(content)
	default:
		in := cmd.InOrStdin()
		if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) { //nolint:gosec // Fd fits in int on supported platforms
			return "", fmt.Errorf("no SQL given: pass it as an argument, with --input, or on stdin")
		}
		content, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		sql = string(content)
	}

	sql = strings.TrimSpace(sql)
	if sql == "" {
		return "", fmt.Errorf("no SQL given")
	}
	return sql, nil
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	sql, err := readQuery(cmd, args, opts.Input)
	if err != nil {
		return err
	}

	cc, cleanup, err := NewCommandContext(cmd, false)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	r := cc.Renderer
	stmt := core.SQL(sql)

	if opts.Count {
		n, err := cc.Client.ExecuteQuery(ctx, stmt, executor.QueryOptions{Count: true})
		if err != nil {
			return err
		}
		if handled, err := r.Structured(map[string]int64{"count": n.Count}); handled {
			return err
		}
		r.Println(n.Count)
		return nil
	}

	var (
		columns []string
		rows    [][]any
	)
	_, err = cc.Client.ExecuteQuery(ctx, stmt, executor.QueryOptions{
		Mode: executor.Stream(func(row core.Row) error {
			if opts.Limit > 0 && len(rows) >= opts.Limit {
				return errLimitReached
			}
			if columns == nil {
				columns = row.Keys()
			}
			rows = append(rows, row.Values)
			return nil
		}),
	})
	if err != nil && !errors.Is(err, errLimitReached) {
		return err
	}
	if columns == nil {
		columns = []string{}
	}
	return r.Table(columns, rows)
}

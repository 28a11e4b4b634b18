// Package executor runs statement batches and queries on connections scoped
// by an adapter.Provider.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapdw/pkg/adapter"
	"github.com/leapstack-labs/leapdw/pkg/core"
	"github.com/leapstack-labs/leapdw/pkg/cursor"
)

// Executor runs statements through a Provider. It holds no connection
// between calls and is safe for concurrent use.
type Executor struct {
	provider *adapter.Provider
	logger   *slog.Logger
}

// New creates an Executor. If logger is nil, a discard logger is used.
func New(p *adapter.Provider, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor{provider: p, logger: logger}
}

// Execute runs stmts in order on a single connection and stops at the first
// failure, which is returned as a *core.ExecutionError. Statements after the
// failing one are never sent.
func (e *Executor) Execute(ctx context.Context, stmts ...core.Statement) error {
	if len(stmts) == 0 {
		return nil
	}

	if len(stmts) > 1 {
		e.logger.Debug("executing batch", slog.Int("statements", len(stmts)), slog.String("sql", core.JoinSQL(stmts)))
	}

	return e.provider.WithConnection(ctx, func(ctx context.Context, conn *sql.Conn) error {
		for i, stmt := range stmts {
			e.logger.Info("executing sql", slog.String("sql", stmt.SQL))
			if err := e.run(ctx, conn, stmt); err != nil {
				return &core.ExecutionError{Statement: stmt.SQL, Index: i, Err: err}
			}
		}
		return nil
	})
}

func (e *Executor) run(ctx context.Context, conn *sql.Conn, stmt core.Statement) error {
	if stmt.Input != nil {
		copier, ok := e.provider.Adapter().(adapter.Copier)
		if !ok {
			return core.ErrCopyUnsupported
		}
		rows, err := copier.CopyFrom(ctx, conn, stmt)
		if err != nil {
			return err
		}
		e.logger.Debug("rows copied", slog.String("path", stmt.Input.Path), slog.Int64("rows", rows))
		return nil
	}

	_, err := conn.ExecContext(ctx, stmt.SQL, stmt.Args...)
	return err
}

// ExecuteQuery runs stmt and consumes its result according to opts.
// Any failure, including one returned by a stream handler, is a
// *core.QueryError.
func (e *Executor) ExecuteQuery(ctx context.Context, stmt core.Statement, opts QueryOptions) (*QueryResult, error) {
	e.logger.Info("executing sql", slog.String("sql", stmt.SQL))

	result := &QueryResult{}
	err := e.provider.WithConnection(ctx, func(ctx context.Context, conn *sql.Conn) error {
		//nolint:rowserrcheck // the cursor checks rows.Err
		rows, err := conn.QueryContext(ctx, stmt.SQL, stmt.Args...)
		if err != nil {
			return &core.QueryError{Query: stmt.SQL, Err: err}
		}
		c, err := cursor.New(rows)
		if err != nil {
			return &core.QueryError{Query: stmt.SQL, Err: err}
		}
		defer func() { _ = c.Close() }()

		if opts.Count {
			n, err := scalarCount(c)
			if err != nil {
				return &core.QueryError{Query: stmt.SQL, Err: err}
			}
			result.Count = n
			return nil
		}

		switch m := opts.Mode.(type) {
		case streamMode:
			handler := m.handler
			if handler == nil {
				handler = func(core.Row) error { return nil }
			}
			n, err := c.ForEach(handler)
			result.Handled = n
			if err != nil {
				return &core.QueryError{Query: stmt.SQL, Err: err}
			}
		default:
			rows, err := c.Collect()
			if err != nil {
				return &core.QueryError{Query: stmt.SQL, Err: err}
			}
			result.Rows = rows
			result.Handled = len(rows)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// QueryCount returns the scalar count produced by stmt.
func (e *Executor) QueryCount(ctx context.Context, stmt core.Statement) (int64, error) {
	res, err := e.ExecuteQuery(ctx, stmt, QueryOptions{Count: true})
	if err != nil {
		return 0, err
	}
	return res.Count, nil
}

// QueryStream calls fn once per result row and returns the number of rows handled.
func (e *Executor) QueryStream(ctx context.Context, stmt core.Statement, fn func(core.Row) error) (int, error) {
	res, err := e.ExecuteQuery(ctx, stmt, QueryOptions{Mode: Stream(fn)})
	if err != nil {
		return 0, err
	}
	return res.Handled, nil
}

// QueryAll materializes every result row.
func (e *Executor) QueryAll(ctx context.Context, stmt core.Statement) ([]core.Row, error) {
	res, err := e.ExecuteQuery(ctx, stmt, QueryOptions{Mode: Materialize()})
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

// scalarCount reads the first row's "count" column, or its only column.
// An empty result counts as zero.
func scalarCount(c *cursor.Cursor) (int64, error) {
	if !c.Next() {
		return 0, c.Err()
	}
	row := c.Row()

	v, ok := row.Get("count")
	if !ok {
		if len(row.Values) != 1 {
			return 0, fmt.Errorf("count result has no count column (columns: %s)", strings.Join(row.Columns, ", "))
		}
		v = row.Values[0]
	}
	return toInt64(v)
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case uint64:
		return int64(n), nil //nolint:gosec // row counts fit in int64
	case float64:
		return int64(n), nil
	case []byte:
		return strconv.ParseInt(string(n), 10, 64)
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected count type %T", v)
	}
}

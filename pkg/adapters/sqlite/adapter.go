// Package sqlite provides a pure-Go SQLite adapter for leapdw, used for local
// work and in-process tests.
package sqlite

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/leapstack-labs/leapdw/pkg/adapter"
	"github.com/leapstack-labs/leapdw/pkg/adapters/sqlite/dialect"
	"github.com/leapstack-labs/leapdw/pkg/core"
	"github.com/leapstack-labs/leapdw/pkg/csvfile"

	_ "modernc.org/sqlite" // sqlite driver
)

const busyTimeoutMillis = 5000

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.Base
}

// New creates a new SQLite adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	return &Adapter{
		Base: adapter.NewBase("sqlite", "sqlite", dialect.SQLite, logger),
	}
}

// DSN returns a file: URI for cfg.Path with a busy timeout and WAL journal.
// Options are applied as additional pragmas.
func (a *Adapter) DSN(cfg core.ConnectionConfig) (string, error) {
	return buildSQLiteDSN(cfg)
}

func buildSQLiteDSN(cfg core.ConnectionConfig) (string, error) {
	if cfg.Path == "" {
		return "", fmt.Errorf("sqlite: path is required")
	}

	pragmas := []string{
		fmt.Sprintf("_pragma=busy_timeout(%d)", busyTimeoutMillis),
		"_pragma=journal_mode(wal)",
	}
	keys := make([]string, 0, len(cfg.Options))
	for k := range cfg.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pragmas = append(pragmas, fmt.Sprintf("_pragma=%s(%s)", k, cfg.Options[k]))
	}

	return "file:" + cfg.Path + "?" + strings.Join(pragmas, "&"), nil
}

// CopyFrom reads the statement's input file and executes the prepared
// INSERT once per record inside a single transaction on conn.
// Empty fields are inserted as NULL.
func (a *Adapter) CopyFrom(ctx context.Context, conn *sql.Conn, stmt core.Statement) (n int64, err error) {
	in := stmt.Input
	if in == nil {
		return 0, fmt.Errorf("sqlite: statement has no copy input")
	}

	r, err := csvfile.Open(in.Path)
	if err != nil {
		return 0, &core.IOError{Op: "open", Path: in.Path, Err: err}
	}
	defer func() { _ = r.Close() }()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin copy transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	insert, err := tx.PrepareContext(ctx, stmt.SQL)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = insert.Close() }()

	br := bufio.NewReader(csvfile.StripBOM(r))
	first := 1
	if in.Header {
		// The header is skipped raw; its names were already cleaned by the caller.
		if _, err := csvfile.ReadLine(br); err != nil {
			return 0, &core.IOError{Op: "read", Path: in.Path, Err: err}
		}
		first = 2
	}

	reader := csv.NewReader(br)
	reader.Comma = in.Delimiter
	if reader.Comma == 0 {
		reader.Comma = ','
	}
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	args := make([]any, len(in.Columns))
	for line := first; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return n, &core.IOError{Op: "read", Path: in.Path, Err: err}
		}
		if len(record) != len(in.Columns) {
			return n, fmt.Errorf("line %d of %s: expected %d fields, got %d",
				line, in.Path, len(in.Columns), len(record))
		}

		for i, field := range record {
			if field == "" {
				args[i] = nil
			} else {
				args[i] = field
			}
		}
		if _, err := insert.ExecContext(ctx, args...); err != nil {
			return n, fmt.Errorf("failed to insert line %d: %w", line, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit copy: %w", err)
	}

	a.Logger.Debug("copy finished", slog.String("table", in.Table), slog.Int64("rows", n))
	return n, nil
}

// Ensure Adapter implements the adapter interfaces
var (
	_ adapter.Adapter = (*Adapter)(nil)
	_ adapter.Copier  = (*Adapter)(nil)
)

// Package duckdb provides a DuckDB database adapter for leapdw.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"sort"

	"github.com/leapstack-labs/leapdw/pkg/adapter"
	"github.com/leapstack-labs/leapdw/pkg/adapters/duckdb/dialect"
	"github.com/leapstack-labs/leapdw/pkg/core"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.Base
	params *Params
}

// New creates a new DuckDB adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	return &Adapter{
		Base:   adapter.NewBase("duckdb", "duckdb", dialect.DuckDB, logger),
		params: &Params{},
	}
}

// DSN returns the database path, ":memory:" when unset, with Options
// appended as DuckDB config arguments. It also captures cfg.Params, which
// InitSession applies to every connection.
func (a *Adapter) DSN(cfg core.ConnectionConfig) (string, error) {
	params, err := parseParams(cfg.Params)
	if err != nil {
		return "", err
	}
	a.params = params
	return buildDuckDBDSN(cfg), nil
}

func buildDuckDBDSN(cfg core.ConnectionConfig) string {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	if len(cfg.Options) == 0 {
		return path
	}

	q := url.Values{}
	for k, v := range cfg.Options {
		q.Set(k, v)
	}
	return path + "?" + q.Encode()
}

// InitSession installs and loads extensions and applies settings.
// Every statement is idempotent.
func (a *Adapter) InitSession(ctx context.Context, conn *sql.Conn) error {
	for _, ext := range a.params.Extensions {
		for _, stmt := range []string{"INSTALL " + ext, "LOAD " + ext} {
			if _, err := conn.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to load extension %s: %w", ext, err)
			}
		}
	}

	keys := make([]string, 0, len(a.params.Settings))
	for k := range a.params.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		stmt := fmt.Sprintf("SET %s = %s", k, quote(a.params.Settings[k]))
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply setting %s: %w", k, err)
		}
	}

	if len(a.params.Extensions)+len(keys) > 0 {
		a.Logger.Debug("duckdb session initialized",
			slog.Int("extensions", len(a.params.Extensions)),
			slog.Int("settings", len(keys)))
	}
	return nil
}

// Ensure Adapter implements the adapter interfaces
var (
	_ adapter.Adapter            = (*Adapter)(nil)
	_ adapter.SessionInitializer = (*Adapter)(nil)
)

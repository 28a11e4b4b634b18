// Package postgres provides a PostgreSQL database adapter for leapdw.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/leapstack-labs/leapdw/pkg/adapter"
	"github.com/leapstack-labs/leapdw/pkg/adapters/postgres/dialect"
	"github.com/leapstack-labs/leapdw/pkg/core"
	"github.com/leapstack-labs/leapdw/pkg/csvfile"
)

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.Base
}

// New creates a new PostgreSQL adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	return &Adapter{
		Base: adapter.NewBase("postgres", "pgx", dialect.Postgres, logger),
	}
}

// DSN builds a key=value connection string for the pgx driver.
func (a *Adapter) DSN(cfg core.ConnectionConfig) (string, error) {
	a.Logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.DatabaseName()))
	return buildPostgresDSN(cfg), nil
}

// buildPostgresDSN constructs a PostgreSQL connection string.
func buildPostgresDSN(cfg core.ConnectionConfig) string {
	// Build key=value format: host=localhost port=5432 user=postgres ...
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := cfg.Option("sslmode", "disable")

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, cfg.DatabaseName(), sslmode)

	if cfg.Username != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.Username)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}

	return dsn
}

// CopyFrom streams the statement's input file through COPY ... FROM STDIN on
// conn. Compressed inputs are decompressed on the client.
func (a *Adapter) CopyFrom(ctx context.Context, conn *sql.Conn, stmt core.Statement) (int64, error) {
	if stmt.Input == nil {
		return 0, fmt.Errorf("postgres: statement has no copy input")
	}

	r, err := csvfile.Open(stmt.Input.Path)
	if err != nil {
		return 0, &core.IOError{Op: "open", Path: stmt.Input.Path, Err: err}
	}
	defer func() { _ = r.Close() }()

	var rows int64
	err = conn.Raw(func(driverConn any) error {
		c, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("postgres: unexpected driver connection %T", driverConn)
		}
		tag, err := c.Conn().PgConn().CopyFrom(ctx, r, stmt.SQL)
		if err != nil {
			return err
		}
		rows = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}

	a.Logger.Debug("copy finished", slog.String("table", stmt.Input.Table), slog.Int64("rows", rows))
	return rows, nil
}

// Ensure Adapter implements the adapter interfaces
var (
	_ adapter.Adapter = (*Adapter)(nil)
	_ adapter.Copier  = (*Adapter)(nil)
)

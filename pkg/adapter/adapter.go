// Package adapter defines the transport contract between leapdw and a
// database/sql driver, and the Provider that scopes connections from the
// driver's pool.
//
// Concrete adapter implementations are in pkg/adapters/ subdirectories and
// register themselves in init(). Import pkg/adapters/all to register every
// built-in adapter.
package adapter

import (
	"context"
	"database/sql"

	"github.com/leapstack-labs/leapdw/pkg/core"
	"github.com/leapstack-labs/leapdw/pkg/dialect"
)

// Adapter describes how to reach one kind of warehouse.
// Adapters hold no connection state; the Provider owns the pool.
type Adapter interface {
	// Name returns the registry name (e.g. "vertica").
	Name() string

	// DriverName returns the database/sql driver name passed to sql.Open.
	DriverName() string

	// DSN builds the driver connection string from cfg.
	DSN(cfg core.ConnectionConfig) (string, error)

	// Dialect returns the SQL dialect used to generate statements for this adapter.
	Dialect() *dialect.Dialect
}

// SessionInitializer is implemented by adapters that prepare every acquired
// connection before use (session settings, extensions).
type SessionInitializer interface {
	InitSession(ctx context.Context, conn *sql.Conn) error
}

// Copier is implemented by adapters that stream a local file through the
// connection for statements carrying a core.CopyInput.
// It returns the number of rows loaded.
type Copier interface {
	CopyFrom(ctx context.Context, conn *sql.Conn, stmt core.Statement) (int64, error)
}

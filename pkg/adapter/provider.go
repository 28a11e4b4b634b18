package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/leapdw/pkg/core"
)

// PoolOptions configures the database/sql connection pool.
// Zero values keep the database/sql defaults.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func (o PoolOptions) apply(db *sql.DB) {
	if o.MaxOpenConns > 0 {
		db.SetMaxOpenConns(o.MaxOpenConns)
	}
	if o.MaxIdleConns > 0 {
		db.SetMaxIdleConns(o.MaxIdleConns)
	}
	if o.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(o.ConnMaxLifetime)
	}
	if o.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(o.ConnMaxIdleTime)
	}
}

// Provider hands out scoped connections from an adapter's pool.
// It holds only the pool and the adapter; it is safe for concurrent use.
type Provider struct {
	adapter Adapter
	db      *sql.DB
	logger  *slog.Logger
}

// Open builds the DSN for cfg and opens the adapter's driver pool.
// No connection is made until first use.
func Open(a Adapter, cfg core.ConnectionConfig, pool PoolOptions, logger *slog.Logger) (*Provider, error) {
	dsn, err := a.DSN(cfg)
	if err != nil {
		return nil, &core.ConnectionError{Adapter: a.Name(), Err: err}
	}

	db, err := sql.Open(a.DriverName(), dsn)
	if err != nil {
		return nil, &core.ConnectionError{Adapter: a.Name(), Err: err}
	}
	pool.apply(db)

	return NewProvider(a, db, logger), nil
}

// NewProvider wraps an already opened pool. If logger is nil, a discard
// logger is used.
func NewProvider(a Adapter, db *sql.DB, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Provider{adapter: a, db: db, logger: logger}
}

// Adapter returns the adapter the provider was opened with.
func (p *Provider) Adapter() Adapter {
	return p.adapter
}

// WithConnection acquires one connection, runs fn with it and releases it.
// The connection is released on every path, including a panic in fn.
// A release failure is reported only when fn itself succeeded.
func (p *Provider) WithConnection(ctx context.Context, fn func(ctx context.Context, conn *sql.Conn) error) (err error) {
	if p.db == nil {
		return &core.ConnectionError{Adapter: p.adapter.Name(), Err: core.ErrNoConnection}
	}

	conn, err := p.db.Conn(ctx)
	if err != nil {
		return &core.ConnectionError{Adapter: p.adapter.Name(), Err: err}
	}
	p.logger.Debug("connection acquired", slog.String("adapter", p.adapter.Name()))

	defer func() {
		cerr := conn.Close()
		p.logger.Debug("connection released", slog.String("adapter", p.adapter.Name()))
		if cerr != nil && err == nil {
			err = fmt.Errorf("failed to release connection: %w", cerr)
		}
	}()

	if init, ok := p.adapter.(SessionInitializer); ok {
		if err := init.InitSession(ctx, conn); err != nil {
			return &core.ConnectionError{Adapter: p.adapter.Name(), Err: err}
		}
	}

	return fn(ctx, conn)
}

// Ping verifies that the warehouse is reachable.
func (p *Provider) Ping(ctx context.Context) error {
	return p.WithConnection(ctx, func(ctx context.Context, conn *sql.Conn) error {
		if err := conn.PingContext(ctx); err != nil {
			return &core.ConnectionError{Adapter: p.adapter.Name(), Err: err}
		}
		return nil
	})
}

// Close closes the pool.
func (p *Provider) Close() error {
	if p.db == nil {
		return nil
	}
	p.logger.Debug("closing connection pool", slog.String("adapter", p.adapter.Name()))
	return p.db.Close()
}

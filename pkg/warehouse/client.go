// Package warehouse is the high-level client for table lifecycle and bulk
// CSV transfer.
//
// A Client composes the SQL generator, the connection provider and the
// statement executor for one warehouse. Every operation acquires its own
// connection scope, so a Client is safe for concurrent use; nothing runs in
// the background and nothing is retried.
package warehouse

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapdw/pkg/adapter"
	"github.com/leapstack-labs/leapdw/pkg/core"
	"github.com/leapstack-labs/leapdw/pkg/dialect"
	"github.com/leapstack-labs/leapdw/pkg/executor"
	"github.com/leapstack-labs/leapdw/pkg/sqlgen"
)

// Client manages tables and CSV transfers for one warehouse.
type Client struct {
	adapter  adapter.Adapter
	provider *adapter.Provider
	exec     *executor.Executor
	gen      *sqlgen.Generator
	logger   *slog.Logger
}

type options struct {
	logger  *slog.Logger
	gen     sqlgen.Options
	pool    adapter.PoolOptions
	adapter adapter.Adapter
}

// Option configures a Client.
type Option func(*options)

// WithLogger sets the structured logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithGeneratorOptions sets the schema and identifier quoting used for
// generated statements.
func WithGeneratorOptions(opts sqlgen.Options) Option {
	return func(o *options) { o.gen = opts }
}

// WithPool sets connection pool limits.
func WithPool(pool adapter.PoolOptions) Option {
	return func(o *options) { o.pool = pool }
}

// WithAdapter bypasses the registry lookup on cfg.Type.
func WithAdapter(a adapter.Adapter) Option {
	return func(o *options) { o.adapter = a }
}

// New creates a Client for cfg. The adapter for cfg.Type must be registered,
// typically by importing pkg/adapters/all. No connection is made until the
// first operation.
func New(cfg core.ConnectionConfig, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	a := o.adapter
	if a == nil {
		var err error
		a, err = adapter.NewAdapter(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create adapter: %w", err)
		}
	}
	if a.Dialect() == nil {
		return nil, fmt.Errorf("adapter %q: %w", a.Name(), dialect.ErrDialectRequired)
	}

	genOpts := o.gen
	if genOpts.Schema == "" {
		genOpts.Schema = cfg.Schema
	}

	p, err := adapter.Open(a, cfg, o.pool, logger)
	if err != nil {
		return nil, err
	}

	logger.Debug("warehouse client created",
		"adapter", a.Name(),
		"dialect", a.Dialect().Name,
		"quote", genOpts.Quote.String())

	return &Client{
		adapter:  a,
		provider: p,
		exec:     executor.New(p, logger),
		gen:      sqlgen.New(a.Dialect(), genOpts),
		logger:   logger,
	}, nil
}

// Adapter returns the client's adapter.
func (c *Client) Adapter() adapter.Adapter {
	return c.adapter
}

// Generator returns the statement generator bound to the client's dialect.
func (c *Client) Generator() *sqlgen.Generator {
	return c.gen
}

// Execute runs stmts in order and stops at the first failure.
func (c *Client) Execute(ctx context.Context, stmts ...core.Statement) error {
	return c.exec.Execute(ctx, stmts...)
}

// ExecuteQuery runs stmt and consumes its result according to opts.
func (c *Client) ExecuteQuery(ctx context.Context, stmt core.Statement, opts executor.QueryOptions) (*executor.QueryResult, error) {
	return c.exec.ExecuteQuery(ctx, stmt, opts)
}

// Ping verifies that the warehouse is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.provider.Ping(ctx)
}

// Close closes the connection pool.
func (c *Client) Close() error {
	return c.provider.Close()
}

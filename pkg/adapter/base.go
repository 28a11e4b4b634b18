package adapter

import (
	"log/slog"

	"github.com/leapstack-labs/leapdw/pkg/dialect"
)

// Base provides the common Adapter accessors.
// Embed this struct in concrete adapter implementations and add DSN.
type Base struct {
	AdapterName string
	Driver      string
	SQLDialect  *dialect.Dialect
	Logger      *slog.Logger
}

// NewBase returns a Base. If logger is nil, a discard logger is used.
func NewBase(name, driver string, d *dialect.Dialect, logger *slog.Logger) Base {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return Base{
		AdapterName: name,
		Driver:      driver,
		SQLDialect:  d,
		Logger:      logger,
	}
}

// Name returns the registry name.
func (b *Base) Name() string {
	return b.AdapterName
}

// DriverName returns the database/sql driver name.
func (b *Base) DriverName() string {
	return b.Driver
}

// Dialect returns the SQL dialect configuration.
func (b *Base) Dialect() *dialect.Dialect {
	return b.SQLDialect
}

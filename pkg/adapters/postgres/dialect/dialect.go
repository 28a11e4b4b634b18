// Package dialect provides the PostgreSQL SQL dialect definition.
// This package is lightweight and has no database driver dependencies.
package dialect

import (
	"github.com/leapstack-labs/leapdw/pkg/core"
	"github.com/leapstack-labs/leapdw/pkg/dialect"
)

func init() {
	dialect.Register(Postgres)
}

// postgresReservedWords contains common PostgreSQL reserved words.
// This is a manually maintained list of frequently problematic identifiers.
// For a complete list, use pg_get_keywords() at runtime.
var postgresReservedWords = []string{
	"any", "array", "asymmetric", "authorization", "binary", "both", "cast",
	"collate", "current_catalog", "current_date", "current_role", "current_schema",
	"current_time", "current_timestamp", "current_user", "deferrable", "do",
	"fetch", "freeze", "grant", "ilike", "index", "initially", "isnull",
	"lateral", "leading", "localtime", "localtimestamp", "natural", "notnull",
	"only", "overlaps", "placing", "returning", "session_user", "similar",
	"some", "symmetric", "trailing", "variadic", "verbose", "window",
}

// Postgres is the PostgreSQL dialect configuration.
var Postgres = dialect.NewDialect("postgres").
	Identifiers(`"`, `"`, `""`, core.NormLowercase). // Postgres folds unquoted identifiers to lowercase
	DefaultSchema("public").
	PlaceholderStyle(core.PlaceholderDollar).
	TextType("TEXT").
	Catalog(core.CatalogInformationSchema).
	LoadStyle(core.LoadCopyStdin).
	Supports(true, true, true).
	WithReservedWords(dialect.CommonReservedWords...).
	WithReservedWords(postgresReservedWords...).
	Build()

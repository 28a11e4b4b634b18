// Package dialect provides the SQLite SQL dialect definition.
// This package is lightweight and has no database driver dependencies.
package dialect

import (
	"github.com/leapstack-labs/leapdw/pkg/core"
	"github.com/leapstack-labs/leapdw/pkg/dialect"
)

func init() {
	dialect.Register(SQLite)
}

// SQLite is the SQLite dialect configuration.
var SQLite = dialect.NewDialect("sqlite").
	Identifiers(`"`, `"`, `""`, core.NormCaseInsensitive).
	DefaultSchema("main").
	PlaceholderStyle(core.PlaceholderQuestion).
	TextType("TEXT").
	Catalog(core.CatalogSQLite).
	LoadStyle(core.LoadInsert).
	Supports(true, true, false).
	TruncateFormat("DELETE FROM %s").
	WithReservedWords(dialect.CommonReservedWords...).
	WithReservedWords("abort", "autoincrement", "glob", "index", "isnull", "notnull", "pragma", "regexp", "vacuum").
	Build()

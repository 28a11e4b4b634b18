// Package dialect provides the DuckDB SQL dialect definition.
// This package is lightweight and has no database driver dependencies.
package dialect

import (
	"github.com/leapstack-labs/leapdw/pkg/core"
	"github.com/leapstack-labs/leapdw/pkg/dialect"
)

func init() {
	dialect.Register(DuckDB)
}

// DuckDB is the DuckDB dialect configuration.
var DuckDB = dialect.NewDialect("duckdb").
	Identifiers(`"`, `"`, `""`, core.NormCaseInsensitive).
	DefaultSchema("main").
	PlaceholderStyle(core.PlaceholderQuestion).
	TextType("VARCHAR").
	Catalog(core.CatalogInformationSchema).
	LoadStyle(core.LoadCopyPath).
	Supports(true, true, true).
	TruncateFormat("DELETE FROM %s").
	WithReservedWords(dialect.CommonReservedWords...).
	WithReservedWords("pivot", "unpivot", "qualify", "window", "lateral", "summarize").
	Build()

// Package dialect provides the Vertica SQL dialect definition used for
// columnar warehouse instances.
// This package is lightweight and has no database driver dependencies.
package dialect

import (
	"github.com/leapstack-labs/leapdw/pkg/core"
	"github.com/leapstack-labs/leapdw/pkg/dialect"
)

func init() {
	dialect.Register(Vertica)
}

var verticaReservedWords = []string{
	"analyse", "analyze", "array", "binary", "both", "cast", "correlation",
	"encoded", "flex", "grant", "ilike", "ilikeb", "initially", "intervalym",
	"isnull", "ksafe", "leading", "likeb", "localtime", "localtimestamp",
	"minus", "notnull", "only", "pinned", "placing", "projection", "schema",
	"segmented", "some", "timeseries", "trailing", "unbounded", "unsegmented",
	"within",
}

// Vertica is the Vertica dialect configuration.
var Vertica = dialect.NewDialect("vertica").
	Identifiers(`"`, `"`, `""`, core.NormCaseInsensitive).
	DefaultSchema("public").
	PlaceholderStyle(core.PlaceholderQuestion).
	TextType("VARCHAR(1023)").
	Catalog(core.CatalogVertica).
	LoadStyle(core.LoadCopyLocal).
	Supports(true, true, true).
	WithReservedWords(dialect.CommonReservedWords...).
	WithReservedWords(verticaReservedWords...).
	Build()

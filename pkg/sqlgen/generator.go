// Package sqlgen turns structural table operations into dialect-correct SQL.
//
// The generator is pure: it performs no I/O, never checks that a table exists
// and never validates names beyond the configured QuoteMode. Statements that
// read metadata bind names as parameters through squirrel.
package sqlgen

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/leapstack-labs/leapdw/pkg/core"
	"github.com/leapstack-labs/leapdw/pkg/dialect"
)

// Generator builds statements for one dialect.
type Generator struct {
	d    *dialect.Dialect
	opts Options
	sb   sq.StatementBuilderType
}

// New creates a generator for d.
func New(d *dialect.Dialect, opts Options) *Generator {
	if opts.Schema == "" {
		opts.Schema = d.DefaultSchema
	}
	var format sq.PlaceholderFormat = sq.Question
	if d.Placeholder == core.PlaceholderDollar {
		format = sq.Dollar
	}
	return &Generator{
		d:    d,
		opts: opts,
		sb:   sq.StatementBuilder.PlaceholderFormat(format),
	}
}

// Dialect returns the generator's dialect.
func (g *Generator) Dialect() *dialect.Dialect {
	return g.d
}

// SelectAll selects every column of table, bounded by limit when limit > 0.
func (g *Generator) SelectAll(table string, limit int) core.Statement {
	q := g.sb.Select("*").From(g.tableRef(table))
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return build(q)
}

// RenameTable renames oldName to newName.
func (g *Generator) RenameTable(oldName, newName string) core.Statement {
	return core.SQL(fmt.Sprintf("ALTER TABLE %s RENAME TO %s", g.tableRef(oldName), g.tableRef(newName)))
}

// DropTable drops table.
func (g *Generator) DropTable(table string, opts DropOptions) core.Statement {
	var b strings.Builder
	b.WriteString("DROP TABLE ")
	if opts.IfExists && g.d.SupportsIfExists {
		b.WriteString("IF EXISTS ")
	}
	b.WriteString(g.tableRef(table))
	if opts.Cascade && g.d.SupportsCascade {
		b.WriteString(" CASCADE")
	}
	return core.SQL(b.String())
}

// CreateTable creates table with cols. Columns without a type get
// opts.ColumnType or the dialect's generic text type.
func (g *Generator) CreateTable(table string, cols []core.Column, opts CreateOptions) core.Statement {
	defaultType := g.d.TextType
	if opts.ColumnType != "" {
		defaultType = opts.ColumnType
	}

	defs := make([]string, len(cols))
	for i, c := range cols {
		typ := c.Type
		if typ == "" {
			typ = defaultType
		}
		defs[i] = g.ident(c.Name) + " " + typ
	}

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if opts.IfNotExists && g.d.SupportsIfNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(g.tableRef(table))
	b.WriteString(" (")
	b.WriteString(strings.Join(defs, ", "))
	b.WriteString(")")
	return core.SQL(b.String())
}

// Truncate empties table.
func (g *Generator) Truncate(table string) core.Statement {
	return core.SQL(g.d.Truncate(g.tableRef(table)))
}

// TableCount returns a statement whose single row holds a "count" column that
// is positive when table exists.
func (g *Generator) TableCount(table string) core.Statement {
	schema, name := g.catalogName(table)
	count := g.sb.Select("COUNT(*) AS count")

	switch g.d.Catalog {
	case core.CatalogSQLite:
		return build(count.From("sqlite_master").
			Where(sq.Eq{"type": "table"}).
			Where(sq.Eq{"name": name}))
	case core.CatalogVertica:
		return build(count.From("v_catalog.tables").
			Where(sq.Eq{"table_schema": schema}).
			Where(sq.Eq{"table_name": name}))
	default:
		return build(count.From("information_schema.tables").
			Where(sq.Eq{"table_schema": schema}).
			Where(sq.Eq{"table_name": name}))
	}
}

// GetColumns returns one row per column of table with column_name and
// data_type, in ordinal order.
func (g *Generator) GetColumns(table string) core.Statement {
	schema, name := g.catalogName(table)

	switch g.d.Catalog {
	case core.CatalogSQLite:
		return build(g.sb.Select("name AS column_name", "type AS data_type").
			From("pragma_table_info(" + quoteLiteral(name) + ")").
			OrderBy("cid"))
	case core.CatalogVertica:
		return build(g.sb.Select("column_name", "data_type").
			From("v_catalog.columns").
			Where(sq.Eq{"table_schema": schema}).
			Where(sq.Eq{"table_name": name}).
			OrderBy("ordinal_position"))
	default:
		return build(g.sb.Select("column_name", "data_type").
			From("information_schema.columns").
			Where(sq.Eq{"table_schema": schema}).
			Where(sq.Eq{"table_name": name}).
			OrderBy("ordinal_position"))
	}
}

// ParseQualifiedName splits a table reference into schema and name.
// Uses defaultSchema if not specified.
func ParseQualifiedName(table, defaultSchema string) (schema, name string) {
	if parts := strings.SplitN(table, ".", 2); len(parts) == 2 {
		return parts[0], parts[1]
	}
	return defaultSchema, table
}

// tableRef renders a possibly schema-qualified table name.
func (g *Generator) tableRef(table string) string {
	if schema, name, ok := strings.Cut(table, "."); ok {
		return g.ident(schema) + "." + g.ident(name)
	}
	return g.ident(table)
}

func (g *Generator) ident(name string) string {
	switch g.opts.Quote {
	case QuoteAll:
		return g.d.QuoteIdentifier(name)
	case QuoteReserved:
		return g.d.QuoteIdentifierIfNeeded(name)
	default:
		return name
	}
}

// catalogName returns the schema and table name as the catalog stores them.
// Unquoted names are folded the way the dialect folds them on create.
func (g *Generator) catalogName(table string) (schema, name string) {
	schema, name = ParseQualifiedName(table, g.opts.Schema)
	return g.fold(schema), g.fold(name)
}

func (g *Generator) fold(name string) string {
	if g.ident(name) != name {
		return name
	}
	switch g.d.Identifiers.Normalization {
	case core.NormLowercase:
		return strings.ToLower(name)
	case core.NormUppercase:
		return strings.ToUpper(name)
	default:
		return name
	}
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// build renders a squirrel builder. The builders here always carry columns and
// a FROM clause, so ToSql cannot fail short of a programming error.
func build(b sq.Sqlizer) core.Statement {
	text, args, err := b.ToSql()
	if err != nil {
		panic(fmt.Sprintf("sqlgen: invalid statement builder: %v", err))
	}
	return core.Statement{SQL: text, Args: args}
}

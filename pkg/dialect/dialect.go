// Package dialect describes the SQL dialects leapdw can generate statements for.
//
// A Dialect is static data: identifier quoting, the generic text type used for
// CSV-derived columns, the metadata catalog to introspect, and the bulk-load
// style. Concrete dialects live next to their adapters in pkg/adapters/*/dialect
// and register themselves in init().
package dialect

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapdw/pkg/core"
)

// Dialect represents a SQL dialect configuration.
type Dialect struct {
	Name        string
	Identifiers core.IdentifierConfig

	// Database-specific settings
	DefaultSchema string                // Default schema name ("public" for Vertica and Postgres, "main" for DuckDB)
	Placeholder   core.PlaceholderStyle // How to format query parameters
	TextType      string                // Generic text type for untyped columns
	Catalog       core.CatalogKind      // Where table and column metadata lives
	Load          core.LoadStyle        // How CSV files are bulk loaded

	// Statement support
	SupportsIfExists    bool
	SupportsIfNotExists bool
	SupportsCascade     bool
	truncateFormat      string

	reservedWords map[string]struct{}
}

var plainIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// GetName returns the dialect name.
func (d *Dialect) GetName() string {
	return d.Name
}

// NormalizeName normalizes an identifier according to dialect rules.
func (d *Dialect) NormalizeName(name string) string {
	switch d.Identifiers.Normalization {
	case core.NormUppercase:
		return strings.ToUpper(name)
	case core.NormLowercase, core.NormCaseInsensitive:
		return strings.ToLower(name)
	default: // NormCaseSensitive
		return name
	}
}

// FormatPlaceholder returns a placeholder for the given parameter index (1-based).
func (d *Dialect) FormatPlaceholder(index int) string {
	switch d.Placeholder {
	case core.PlaceholderDollar:
		return "$" + strconv.Itoa(index)
	default: // PlaceholderQuestion
		return "?"
	}
}

// IsReservedWord returns true if the word needs quoting when used as an identifier.
func (d *Dialect) IsReservedWord(word string) bool {
	_, ok := d.reservedWords[d.NormalizeName(word)]
	return ok
}

// QuoteIdentifier quotes an identifier using the dialect's quote characters.
func (d *Dialect) QuoteIdentifier(name string) string {
	escaped := strings.ReplaceAll(name, d.Identifiers.QuoteEnd, d.Identifiers.Escape)
	return d.Identifiers.Quote + escaped + d.Identifiers.QuoteEnd
}

// NeedsQuoting reports whether name is a reserved word or contains characters
// that are not valid in an unquoted identifier.
func (d *Dialect) NeedsQuoting(name string) bool {
	return !plainIdentifier.MatchString(name) || d.IsReservedWord(name)
}

// QuoteIdentifierIfNeeded quotes an identifier only if NeedsQuoting reports true.
func (d *Dialect) QuoteIdentifierIfNeeded(name string) string {
	if d.NeedsQuoting(name) {
		return d.QuoteIdentifier(name)
	}
	return name
}

// Truncate returns the statement that empties table.
func (d *Dialect) Truncate(table string) string {
	return fmt.Sprintf(d.truncateFormat, table)
}

// Builder provides a fluent API for constructing dialects.
type Builder struct {
	dialect *Dialect
}

// NewDialect creates a new dialect builder with the given name.
// Defaults follow ANSI SQL: double-quoted identifiers, ? placeholders,
// information_schema catalog and a TEXT column type.
func NewDialect(name string) *Builder {
	return &Builder{
		dialect: &Dialect{
			Name: name,
			Identifiers: core.IdentifierConfig{
				Quote:         `"`,
				QuoteEnd:      `"`,
				Escape:        `""`,
				Normalization: core.NormLowercase,
			},
			TextType:            "TEXT",
			Catalog:             core.CatalogInformationSchema,
			Load:                core.LoadInsert,
			SupportsIfExists:    true,
			SupportsIfNotExists: true,
			truncateFormat:      "TRUNCATE TABLE %s",
			reservedWords:       make(map[string]struct{}),
		},
	}
}

// Identifiers configures identifier quoting and normalization.
func (b *Builder) Identifiers(quote, quoteEnd, escape string, norm core.NormalizationStrategy) *Builder {
	b.dialect.Identifiers = core.IdentifierConfig{
		Quote:         quote,
		QuoteEnd:      quoteEnd,
		Escape:        escape,
		Normalization: norm,
	}
	return b
}

// DefaultSchema sets the default schema name.
func (b *Builder) DefaultSchema(schema string) *Builder {
	b.dialect.DefaultSchema = schema
	return b
}

// PlaceholderStyle sets how query parameters are formatted.
func (b *Builder) PlaceholderStyle(style core.PlaceholderStyle) *Builder {
	b.dialect.Placeholder = style
	return b
}

// TextType sets the generic column type used for CSV-derived columns.
func (b *Builder) TextType(typ string) *Builder {
	b.dialect.TextType = typ
	return b
}

// Catalog sets the metadata catalog.
func (b *Builder) Catalog(kind core.CatalogKind) *Builder {
	b.dialect.Catalog = kind
	return b
}

// LoadStyle sets how CSV files are bulk loaded.
func (b *Builder) LoadStyle(style core.LoadStyle) *Builder {
	b.dialect.Load = style
	return b
}

// Supports toggles optional DDL clauses.
func (b *Builder) Supports(ifExists, ifNotExists, cascade bool) *Builder {
	b.dialect.SupportsIfExists = ifExists
	b.dialect.SupportsIfNotExists = ifNotExists
	b.dialect.SupportsCascade = cascade
	return b
}

// TruncateFormat sets the fmt template used to empty a table, e.g. "DELETE FROM %s".
func (b *Builder) TruncateFormat(format string) *Builder {
	b.dialect.truncateFormat = format
	return b
}

// WithReservedWords registers words that need quoting when used as identifiers.
func (b *Builder) WithReservedWords(words ...string) *Builder {
	for _, w := range words {
		b.dialect.reservedWords[b.dialect.NormalizeName(w)] = struct{}{}
	}
	return b
}

// Build returns the constructed dialect.
func (b *Builder) Build() *Dialect {
	return b.dialect
}

package core

// NormalizationStrategy defines how unquoted identifiers are normalized.
type NormalizationStrategy int

const (
	// NormLowercase normalizes unquoted identifiers to lowercase (default SQL behavior).
	NormLowercase NormalizationStrategy = iota
	// NormUppercase normalizes unquoted identifiers to uppercase.
	NormUppercase
	// NormCaseSensitive preserves identifier case exactly.
	NormCaseSensitive
	// NormCaseInsensitive compares case-insensitively but stores as written (Vertica, DuckDB).
	NormCaseInsensitive
)

// PlaceholderStyle defines how query parameters are formatted.
type PlaceholderStyle int

const (
	// PlaceholderQuestion uses ? for all parameters (Vertica, DuckDB, SQLite).
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar uses $1, $2, etc. for parameters (PostgreSQL).
	PlaceholderDollar
)

// IdentifierConfig defines how identifiers are quoted and normalized.
type IdentifierConfig struct {
	Quote         string                // Quote character: ", `, [
	QuoteEnd      string                // End quote character (usually same as Quote, ] for [)
	Escape        string                // Escape sequence: "", ``, ]]
	Normalization NormalizationStrategy // How to normalize unquoted identifiers
}

// LoadStyle selects how a dialect bulk-loads a local CSV file.
type LoadStyle int

const (
	// LoadCopyLocal sends COPY ... FROM LOCAL; the driver streams the file (Vertica).
	LoadCopyLocal LoadStyle = iota
	// LoadCopyPath lets the engine read the file path itself (DuckDB).
	LoadCopyPath
	// LoadCopyStdin issues COPY ... FROM STDIN and the adapter streams the file (PostgreSQL).
	LoadCopyStdin
	// LoadInsert replays the file as prepared inserts inside one transaction (SQLite).
	LoadInsert
)

// String returns the string representation of LoadStyle.
func (s LoadStyle) String() string {
	switch s {
	case LoadCopyLocal:
		return "copy-local"
	case LoadCopyPath:
		return "copy-path"
	case LoadCopyStdin:
		return "copy-stdin"
	case LoadInsert:
		return "insert"
	default:
		return "unknown"
	}
}

// CatalogKind selects the metadata catalog used for existence and column lookups.
type CatalogKind int

const (
	// CatalogInformationSchema queries information_schema.tables/columns.
	CatalogInformationSchema CatalogKind = iota
	// CatalogVertica queries v_catalog.tables/columns.
	CatalogVertica
	// CatalogSQLite queries sqlite_master and pragma_table_info.
	CatalogSQLite
)

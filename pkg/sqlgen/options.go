package sqlgen

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapdw/pkg/csvfile"
)

// QuoteMode controls identifier escaping for table and column names.
type QuoteMode int

const (
	// QuoteNone emits names exactly as given.
	QuoteNone QuoteMode = iota
	// QuoteReserved quotes reserved words and names that are not plain identifiers.
	QuoteReserved
	// QuoteAll quotes every identifier.
	QuoteAll
)

// String returns the mode name.
func (m QuoteMode) String() string {
	switch m {
	case QuoteNone:
		return "none"
	case QuoteReserved:
		return "reserved"
	case QuoteAll:
		return "all"
	default:
		return "unknown"
	}
}

// ParseQuoteMode maps a mode name to a QuoteMode.
func ParseQuoteMode(name string) (QuoteMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return QuoteNone, nil
	case "reserved":
		return QuoteReserved, nil
	case "all":
		return QuoteAll, nil
	default:
		return QuoteNone, fmt.Errorf("unknown quote mode %q (expected none, reserved or all)", name)
	}
}

// Options configures a Generator.
type Options struct {
	// Schema used for catalog lookups of unqualified names.
	// Defaults to the dialect's default schema.
	Schema string

	// Quote selects identifier escaping. Defaults to QuoteNone.
	Quote QuoteMode
}

// DropOptions configures DropTable.
type DropOptions struct {
	// IfExists makes the statement succeed when the table is absent.
	IfExists bool
	// Cascade drops dependent objects on dialects that support it.
	Cascade bool
}

// CreateOptions configures CreateTable.
type CreateOptions struct {
	// IfNotExists makes the statement succeed when the table already exists.
	IfNotExists bool
	// ColumnType overrides the dialect's generic text type for untyped columns.
	ColumnType string
}

// LoadOptions configures LoadData.
type LoadOptions struct {
	// Columns overrides the header-derived column list.
	Columns []string
	// Truncate empties the table before loading.
	Truncate bool
	// Delimiter separates fields. Defaults to ','.
	Delimiter rune
	// SkipHeader skips the first line. Defaults to true.
	SkipHeader *bool
	// RejectedPath and ExceptionsPath collect rejected rows (Vertica only).
	RejectedPath   string
	ExceptionsPath string
	// AbortOnError stops the load at the first bad row (Vertica only).
	AbortOnError bool
	// Compression of the input file. CompressionAuto detects it from the extension.
	Compression csvfile.Compression
}

func (o LoadOptions) delimiter() rune {
	if o.Delimiter == 0 {
		return ','
	}
	return o.Delimiter
}

func (o LoadOptions) skipHeader() bool {
	return o.SkipHeader == nil || *o.SkipHeader
}

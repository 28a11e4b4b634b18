package sqlgen

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapdw/pkg/core"
	"github.com/leapstack-labs/leapdw/pkg/csvfile"
)

// LoadData returns the statements that bulk-load the CSV file at path into
// table, binding cols in exactly the given order. With opts.Truncate the
// batch starts with a truncate statement.
func (g *Generator) LoadData(table, path string, cols []string, opts LoadOptions) []core.Statement {
	var stmts []core.Statement
	if opts.Truncate {
		stmts = append(stmts, g.Truncate(table))
	}

	columns := make([]string, len(cols))
	for i, c := range cols {
		columns[i] = g.ident(c)
	}
	target := fmt.Sprintf("%s (%s)", g.tableRef(table), strings.Join(columns, ", "))

	switch g.d.Load {
	case core.LoadCopyLocal:
		stmts = append(stmts, core.SQL(g.copyLocal(target, path, opts)))

	case core.LoadCopyPath:
		stmts = append(stmts, core.SQL(fmt.Sprintf("COPY %s FROM %s (FORMAT csv, HEADER %t, DELIMITER %s)",
			target, quoteLiteral(path), opts.skipHeader(), quoteLiteral(string(opts.delimiter())))))

	case core.LoadCopyStdin:
		stmt := core.SQL(fmt.Sprintf("COPY %s FROM STDIN WITH (FORMAT csv, HEADER %t, DELIMITER %s)",
			target, opts.skipHeader(), quoteLiteral(string(opts.delimiter()))))
		stmt.Input = g.copyInput(table, path, cols, opts)
		stmts = append(stmts, stmt)

	default: // LoadInsert
		placeholders := make([]string, len(cols))
		for i := range cols {
			placeholders[i] = g.d.FormatPlaceholder(i + 1)
		}
		stmt := core.SQL(fmt.Sprintf("INSERT INTO %s VALUES (%s)", target, strings.Join(placeholders, ", ")))
		stmt.Input = g.copyInput(table, path, cols, opts)
		stmts = append(stmts, stmt)
	}

	return stmts
}

func (g *Generator) copyLocal(target, path string, opts LoadOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "COPY %s FROM LOCAL %s", target, quoteLiteral(path))

	switch opts.Compression.Resolve(path) {
	case csvfile.CompressionGzip:
		b.WriteString(" GZIP")
	case csvfile.CompressionZstd:
		b.WriteString(" ZSTD")
	}

	fmt.Fprintf(&b, " DELIMITER %s ENCLOSED BY '\"' ESCAPE AS '\"'", quoteLiteral(string(opts.delimiter())))
	if opts.skipHeader() {
		b.WriteString(" SKIP 1")
	}
	if opts.RejectedPath != "" {
		fmt.Fprintf(&b, " REJECTED DATA %s", quoteLiteral(opts.RejectedPath))
	}
	if opts.ExceptionsPath != "" {
		fmt.Fprintf(&b, " EXCEPTIONS %s", quoteLiteral(opts.ExceptionsPath))
	}
	if opts.AbortOnError {
		b.WriteString(" ABORT ON ERROR")
	}
	return b.String()
}

func (g *Generator) copyInput(table, path string, cols []string, opts LoadOptions) *core.CopyInput {
	return &core.CopyInput{
		Path:      path,
		Table:     table,
		Columns:   append([]string(nil), cols...),
		Header:    opts.skipHeader(),
		Delimiter: opts.delimiter(),
	}
}

package core

import "strings"

// Statement is one SQL statement with its bound arguments.
type Statement struct {
	SQL  string
	Args []any

	// Input marks a client-side bulk load: the adapter streams the local
	// file through the connection instead of running SQL directly.
	Input *CopyInput
}

// CopyInput describes the local CSV file behind a client-side bulk load.
type CopyInput struct {
	Path      string
	Table     string
	Columns   []string
	Header    bool
	Delimiter rune
}

// String returns the SQL text.
func (s Statement) String() string {
	return s.SQL
}

// SQL wraps raw SQL text in a Statement.
func SQL(text string, args ...any) Statement {
	return Statement{SQL: text, Args: args}
}

// JoinSQL renders a batch for logs and error messages.
func JoinSQL(stmts []Statement) string {
	parts := make([]string, len(stmts))
	for i, s := range stmts {
		parts[i] = s.SQL
	}
	return strings.Join(parts, ";\n")
}

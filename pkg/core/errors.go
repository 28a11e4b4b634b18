package core

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Sentinel errors shared across packages.
var (
	// ErrNoConnection is returned when an operation runs without an open pool.
	ErrNoConnection = errors.New("database connection not established")

	// ErrExhausted is returned when a single-pass cursor is consumed twice.
	ErrExhausted = errors.New("cursor already consumed")

	// ErrCopyUnsupported is returned when a statement needs a client-side copy
	// the adapter cannot perform.
	ErrCopyUnsupported = errors.New("adapter does not support client-side copy")

	// ErrColumnMismatch is returned when introspected columns are missing from a live row.
	ErrColumnMismatch = errors.New("column not present in result")
)

// ConnectionError reports a failure to open or initialize a connection.
type ConnectionError struct {
	Adapter string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Adapter, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ExecutionError reports the statement that stopped an Execute batch.
type ExecutionError struct {
	Statement string
	Index     int
	Err       error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("failed to execute statement %d (%s): %v", e.Index+1, truncate(e.Statement), e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// QueryError reports a failed query together with its text.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("failed to execute query (%s): %v", truncate(e.Query), e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// IOError reports a CSV file that could not be opened, read or written.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

const maxStatementInError = 200

// truncate shortens s to at most maxStatementInError bytes without splitting a rune.
func truncate(s string) string {
	if len(s) <= maxStatementInError {
		return s
	}
	cut := maxStatementInError
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

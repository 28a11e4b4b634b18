// Package cursor streams query results row by row.
//
// A Cursor wraps *sql.Rows and is single-pass: once iteration has finished
// (or Close has been called) any further consumption returns
// core.ErrExhausted. ForEach keeps only the current row in memory.
package cursor

import (
	"database/sql"
	"fmt"

	"github.com/leapstack-labs/leapdw/pkg/core"
)

// Cursor iterates over a result set.
type Cursor struct {
	rows    *sql.Rows
	columns []string
	current core.Row
	err     error
	started bool
	done    bool
}

// New wraps rows and reads the column names once.
func New(rows *sql.Rows) (*Cursor, error) {
	cols, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}
	return &Cursor{rows: rows, columns: cols}, nil
}

// Columns returns the result column names in warehouse order.
func (c *Cursor) Columns() []string {
	return c.columns
}

// Next advances to the next row. It returns false at the end of the result
// set or on error; check Err afterwards.
func (c *Cursor) Next() bool {
	if c.done {
		return false
	}
	c.started = true

	if !c.rows.Next() {
		c.finish(c.rows.Err())
		return false
	}

	values := make([]any, len(c.columns))
	ptrs := make([]any, len(c.columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := c.rows.Scan(ptrs...); err != nil {
		c.finish(fmt.Errorf("failed to scan row: %w", err))
		return false
	}
	for i, v := range values {
		// Drivers may reuse byte buffers between rows.
		if b, ok := v.([]byte); ok {
			values[i] = append([]byte(nil), b...)
		}
	}

	c.current = core.Row{Columns: c.columns, Values: values}
	return true
}

// Row returns the row Next advanced to.
func (c *Cursor) Row() core.Row {
	return c.current
}

// Err returns the first error met during iteration.
func (c *Cursor) Err() error {
	return c.err
}

// Close releases the underlying rows. It is safe to call more than once.
func (c *Cursor) Close() error {
	if c.done {
		return nil
	}
	c.done = true
	return c.rows.Close()
}

// ForEach calls fn once per row in warehouse order and returns the number
// of rows handled. An error from fn stops iteration and is returned as is.
func (c *Cursor) ForEach(fn func(core.Row) error) (int, error) {
	if err := c.begin(); err != nil {
		return 0, err
	}
	defer func() { _ = c.Close() }()

	n := 0
	for c.Next() {
		if err := fn(c.current); err != nil {
			return n, err
		}
		n++
	}
	return n, c.err
}

// Collect reads every remaining row into memory.
func (c *Cursor) Collect() ([]core.Row, error) {
	var out []core.Row
	_, err := c.ForEach(func(r core.Row) error {
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []core.Row{}
	}
	return out, nil
}

func (c *Cursor) begin() error {
	if c.done || c.started {
		return core.ErrExhausted
	}
	return nil
}

func (c *Cursor) finish(err error) {
	if c.err == nil {
		c.err = err
	}
	if cerr := c.Close(); cerr != nil && c.err == nil {
		c.err = cerr
	}
}

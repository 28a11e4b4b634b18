package warehouse

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/leapstack-labs/leapdw/pkg/core"
	"github.com/leapstack-labs/leapdw/pkg/csvfile"
	"golang.org/x/sync/errgroup"
)

// ExportOptions configures ExportTable.
type ExportOptions struct {
	// Compression of the output file. CompressionAuto picks it from the extension.
	Compression csvfile.Compression
	// Delimiter separates fields. Defaults to ','.
	Delimiter rune
}

// ExportTable streams every row of table into a CSV file at csvPath and
// returns the number of data rows written.
//
// The header is the table's introspected column list. A one-row probe maps
// each header name to the key the live cursor uses for it, and every data row
// is written in header order through that mapping. Every field is quoted.
// An empty table produces a header-only file. Missing parent directories are
// created. On failure the partial file is removed.
func (c *Client) ExportTable(ctx context.Context, table, csvPath string, opts ExportOptions) (n int, err error) {
	cols, err := c.GetColumns(ctx, table)
	if err != nil {
		return 0, err
	}
	header := core.ColumnNames(cols)

	probeStmt := c.gen.SelectAll(table, 1)
	probe, err := c.exec.QueryAll(ctx, probeStmt)
	if err != nil {
		return 0, err
	}

	var keys []string
	if len(probe) > 0 {
		keys, err = liveKeys(header, probe[0])
		if err != nil {
			return 0, &core.QueryError{Query: probeStmt.SQL, Err: err}
		}
	}

	path, err := filepath.Abs(csvPath)
	if err != nil {
		return 0, &core.IOError{Op: "resolve", Path: csvPath, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return 0, &core.IOError{Op: "create", Path: filepath.Dir(path), Err: err}
	}

	out, err := csvfile.Create(path, opts.Compression)
	if err != nil {
		return 0, &core.IOError{Op: "create", Path: path, Err: err}
	}
	closed := false
	defer func() {
		if err == nil {
			return
		}
		if !closed {
			_ = out.Close()
		}
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			err = errors.Join(err, fmt.Errorf("failed to remove partial export: %w", rmErr))
		}
		n = 0
	}()

	w := csvfile.NewWriter(out)
	if opts.Delimiter != 0 {
		w.Comma = opts.Delimiter
	}
	if err := w.Write(header); err != nil {
		return 0, &core.IOError{Op: "write", Path: path, Err: err}
	}

	if len(probe) > 0 {
		n, err = c.exec.QueryStream(ctx, c.gen.SelectAll(table, 0), func(row core.Row) error {
			if err := w.WriteValues(row.ValuesAt(keys...)); err != nil {
				return &core.IOError{Op: "write", Path: path, Err: err}
			}
			return nil
		})
		if err != nil {
			var ioErr *core.IOError
			if errors.As(err, &ioErr) {
				return 0, ioErr
			}
			return 0, err
		}
	}

	if err := w.Flush(); err != nil {
		return 0, &core.IOError{Op: "write", Path: path, Err: err}
	}
	closed = true
	if err := out.Close(); err != nil {
		return 0, &core.IOError{Op: "close", Path: path, Err: err}
	}

	c.logger.Info("table exported", "table", table, "path", path, "rows", n)
	return n, nil
}

// liveKeys maps each header name to the matching key of a live row, exactly
// first and then case-insensitively.
func liveKeys(header []string, probe core.Row) ([]string, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("%w: catalog lists no columns for a table with rows", core.ErrColumnMismatch)
	}
	keys := make([]string, len(header))
	for i, name := range header {
		idx := probe.Index(name)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q (live columns: %v)", core.ErrColumnMismatch, name, probe.Keys())
		}
		keys[i] = probe.Columns[idx]
	}
	return keys, nil
}

// ExportResult is the outcome of one export run by ExportTables.
type ExportResult struct {
	Table string
	Path  string
	Rows  int
	Err   error
}

// ExportTables exports several tables concurrently. exports maps a table
// name to its output path. At most limit exports run at once; limit <= 0
// means no limit. The first failure cancels the exports still running and
// is returned as the error. Results hold one entry per table, sorted by
// table name, whether or not its export succeeded.
func (c *Client) ExportTables(ctx context.Context, exports map[string]string, limit int) ([]ExportResult, error) {
	tables := make([]string, 0, len(exports))
	for t := range exports {
		tables = append(tables, t)
	}
	sort.Strings(tables)

	results := make([]ExportResult, len(tables))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, table := range tables {
		path := exports[table]
		g.Go(func() error {
			n, err := c.ExportTable(gctx, table, path, ExportOptions{})
			if err != nil {
				err = fmt.Errorf("failed to export %s: %w", table, err)
			}
			results[i] = ExportResult{Table: table, Path: path, Rows: n, Err: err}
			return err
		})
	}
	return results, g.Wait()
}

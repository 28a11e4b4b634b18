package warehouse

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leapstack-labs/leapdw/pkg/core"
	"github.com/leapstack-labs/leapdw/pkg/csvfile"
	"github.com/leapstack-labs/leapdw/pkg/sqlgen"
)

// CreateTableFromCSVHeader creates table with one text column per field of
// the CSV header and returns the cleaned column names. Only the first line of
// the file is read. An empty file or blank first line returns an empty slice
// and creates nothing.
func (c *Client) CreateTableFromCSVHeader(ctx context.Context, table, csvPath string, opts sqlgen.CreateOptions) ([]string, error) {
	header, err := readHeader(csvPath)
	if err != nil {
		return nil, err
	}
	if len(header) == 0 {
		c.logger.Debug("csv header is empty, skipping create", "table", table, "path", csvPath)
		return header, nil
	}

	if err := c.exec.Execute(ctx, c.gen.CreateTable(table, core.TextColumns(header), opts)); err != nil {
		return nil, err
	}
	return header, nil
}

// CSVToNewTable creates table from the CSV header and loads the file into it
// using exactly the header's columns. It returns the column names. An empty
// header is a no-op.
func (c *Client) CSVToNewTable(ctx context.Context, table, csvPath string, opts sqlgen.CreateOptions) ([]string, error) {
	header, err := c.CreateTableFromCSVHeader(ctx, table, csvPath, opts)
	if err != nil || len(header) == 0 {
		return header, err
	}

	if err := c.LoadDataFromCSV(ctx, table, csvPath, sqlgen.LoadOptions{Columns: header}); err != nil {
		return nil, err
	}
	return header, nil
}

// LoadDataFromCSV bulk-loads the CSV file into an existing table. Columns are
// taken from opts.Columns, or from the file's header when unset. An empty
// header loads nothing.
func (c *Client) LoadDataFromCSV(ctx context.Context, table, csvPath string, opts sqlgen.LoadOptions) error {
	cols := opts.Columns
	if len(cols) == 0 {
		header, err := readHeader(csvPath)
		if err != nil {
			return err
		}
		cols = header
	}
	if len(cols) == 0 {
		c.logger.Debug("no columns to load", "table", table, "path", csvPath)
		return nil
	}

	path, err := filepath.Abs(csvPath)
	if err != nil {
		return &core.IOError{Op: "resolve", Path: csvPath, Err: err}
	}

	if err := c.exec.Execute(ctx, c.gen.LoadData(table, path, cols, opts)...); err != nil {
		return err
	}
	c.logger.Info("csv loaded", "table", table, "path", path, "columns", len(cols))
	return nil
}

// LoadDirectory creates and loads one table per CSV file in dir, named after
// the file without its extensions. Compressed files (.csv.gz, .csv.zst,
// .csv.xz) are included. It returns the tables created, in file name order.
func (c *Client) LoadDirectory(ctx context.Context, dir string, opts sqlgen.CreateOptions) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &core.IOError{Op: "read", Path: dir, Err: err}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var tables []string
	for _, name := range names {
		table, ok := tableNameForFile(name)
		if !ok {
			continue
		}

		c.logger.Debug("loading csv file", "table", table, "path", name)
		header, err := c.CSVToNewTable(ctx, table, filepath.Join(dir, name), opts)
		if err != nil {
			return tables, fmt.Errorf("failed to load %s: %w", name, err)
		}
		if len(header) > 0 {
			tables = append(tables, table)
		}
	}
	return tables, nil
}

// tableNameForFile returns the table name for a CSV file name.
func tableNameForFile(name string) (string, bool) {
	base := name
	if ext := csvfile.DetectCompression(name).Extension(); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	if !strings.HasSuffix(strings.ToLower(base), ".csv") {
		return "", false
	}
	return base[:len(base)-len(".csv")], true
}

func readHeader(csvPath string) ([]string, error) {
	header, err := csvfile.ReadHeader(csvPath)
	if err != nil {
		return nil, &core.IOError{Op: "read", Path: csvPath, Err: err}
	}
	return header, nil
}

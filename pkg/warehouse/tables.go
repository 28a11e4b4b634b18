package warehouse

import (
	"context"

	"github.com/leapstack-labs/leapdw/pkg/core"
	"github.com/leapstack-labs/leapdw/pkg/csvfile"
	"github.com/leapstack-labs/leapdw/pkg/sqlgen"
)

// TableExists reports whether table is present in the warehouse catalog.
func (c *Client) TableExists(ctx context.Context, table string) (bool, error) {
	n, err := c.exec.QueryCount(ctx, c.gen.TableCount(table))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RenameTable renames oldName to newName.
func (c *Client) RenameTable(ctx context.Context, oldName, newName string) error {
	return c.exec.Execute(ctx, c.gen.RenameTable(oldName, newName))
}

// DropTable drops table.
func (c *Client) DropTable(ctx context.Context, table string, opts sqlgen.DropOptions) error {
	return c.exec.Execute(ctx, c.gen.DropTable(table, opts))
}

// CreateTable creates table with cols.
func (c *Client) CreateTable(ctx context.Context, table string, cols []core.Column, opts sqlgen.CreateOptions) error {
	return c.exec.Execute(ctx, c.gen.CreateTable(table, cols, opts))
}

// TruncateTable removes every row from table.
func (c *Client) TruncateTable(ctx context.Context, table string) error {
	return c.exec.Execute(ctx, c.gen.Truncate(table))
}

// GetColumns returns the columns of table in ordinal order. A table that
// does not exist has no columns.
func (c *Client) GetColumns(ctx context.Context, table string) ([]core.Column, error) {
	rows, err := c.exec.QueryAll(ctx, c.gen.GetColumns(table))
	if err != nil {
		return nil, err
	}

	cols := make([]core.Column, 0, len(rows))
	for i, row := range rows {
		name, _ := row.Get("column_name")
		typ, _ := row.Get("data_type")
		cols = append(cols, core.Column{
			Name:     csvfile.FormatValue(name),
			Type:     csvfile.FormatValue(typ),
			Position: i + 1,
		})
	}
	return cols, nil
}

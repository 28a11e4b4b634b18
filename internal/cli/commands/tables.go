package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdw/internal/cli/output"
	"github.com/leapstack-labs/leapdw/internal/journal"
	"github.com/leapstack-labs/leapdw/pkg/core"
	"github.com/leapstack-labs/leapdw/pkg/sqlgen"
)

// CreateOptions holds options for the create command.
type CreateOptions struct {
	FromCSV     string
	Columns     []string
	IfNotExists bool
	ColumnType  string
	Load        bool
}

// NewCreateCommand creates the create command.
func NewCreateCommand() *cobra.Command {
	opts := &CreateOptions{}

	cmd := &cobra.Command{
		Use:   "create <table>",
		Short: "Create a table",
		Long: `Create a table from explicit columns or from the header of a CSV file.

Each --column is name or name:TYPE. Columns without a type, and every column
taken from a CSV header, use --type or the dialect's text type.`,
		Example: `  # Columns from a CSV header
  leapdw create staging.orders --from-csv orders.csv

  # Create and load in one step
  leapdw create staging.orders --from-csv orders.csv --load

  # Explicit columns
  leapdw create events --column id:INTEGER --column payload --if-not-exists`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.FromCSV, "from-csv", "", "Take the columns from this CSV file's header")
	cmd.Flags().StringArrayVar(&opts.Columns, "column", nil, "Column as name or name:TYPE (repeatable)")
	cmd.Flags().BoolVar(&opts.IfNotExists, "if-not-exists", false, "Succeed when the table already exists")
	cmd.Flags().StringVar(&opts.ColumnType, "type", "", "Type for untyped columns")
	cmd.Flags().BoolVar(&opts.Load, "load", false, "With --from-csv, also load the file")
	cmd.MarkFlagsMutuallyExclusive("from-csv", "column")

	return cmd
}

// parseColumnSpecs parses name[:TYPE] column flags.
func parseColumnSpecs(specs []string) ([]core.Column, error) {
	cols := make([]core.Column, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	for i, spec := range specs {
		name, typ, _ := strings.Cut(spec, ":")
		name, typ = strings.TrimSpace(name), strings.TrimSpace(typ)
		if name == "" {
			return nil, fmt.Errorf("invalid column %q: name is empty", spec)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		seen[key] = true
		cols = append(cols, core.Column{Name: name, Type: typ, Position: i + 1})
	}
	return cols, nil
}

func runCreate(cmd *cobra.Command, table string, opts *CreateOptions) error {
	if opts.FromCSV == "" && len(opts.Columns) == 0 {
		return fmt.Errorf("either --from-csv or at least one --column is required")
	}
	if opts.Load && opts.FromCSV == "" {
		return fmt.Errorf("--load requires --from-csv")
	}
	var cols []core.Column
	if len(opts.Columns) > 0 {
		var err error
		if cols, err = parseColumnSpecs(opts.Columns); err != nil {
			return err
		}
	}

	cc, cleanup, err := NewCommandContext(cmd, opts.FromCSV != "")
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	createOpts := sqlgen.CreateOptions{IfNotExists: opts.IfNotExists, ColumnType: opts.ColumnType}

	var names []string
	switch {
	case opts.FromCSV != "":
		started := time.Now()
		kind := journal.KindCreate
		if opts.Load {
			kind = journal.KindLoad
			names, err = cc.Client.CSVToNewTable(ctx, table, opts.FromCSV, createOpts)
		} else {
			names, err = cc.Client.CreateTableFromCSVHeader(ctx, table, opts.FromCSV, createOpts)
		}
		err = cc.record(ctx, journal.Transfer{
			Kind:      kind,
			Table:     table,
			Path:      opts.FromCSV,
			Rows:      -1,
			StartedAt: started,
		}, err)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			cc.Renderer.Warning("CSV header is empty, nothing was created")
			return nil
		}
	default:
		if err := cc.Client.CreateTable(ctx, table, cols, createOpts); err != nil {
			return err
		}
		names = core.ColumnNames(cols)
	}

	r := cc.Renderer
	if handled, err := r.Structured(map[string]any{"table": table, "columns": names}); handled {
		return err
	}
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatKeyValue("Created", table))
		r.Println(output.FormatKeyValue("Columns", strings.Join(names, ", ")))
		return nil
	}
	r.StatusLine(table, "success", fmt.Sprintf("created with %d columns", len(names)))
	return nil
}

// NewRenameCommand creates the rename command.
func NewRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <table> <new-name>",
		Short: "Rename a table",
		Long:  `Rename a table. Both names are passed through to ALTER TABLE as given.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd, false)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := cc.Client.RenameTable(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			return statusResult(cc.Renderer, args[0], "renamed to "+args[1])
		},
	}
}

// DropOptions holds options for the drop command.
type DropOptions struct {
	IfExists bool
	Cascade  bool
}

// NewDropCommand creates the drop command.
func NewDropCommand() *cobra.Command {
	opts := &DropOptions{}

	cmd := &cobra.Command{
		Use:   "drop <table>",
		Short: "Drop a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd, false)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := cc.Client.DropTable(cmd.Context(), args[0], sqlgen.DropOptions{
				IfExists: opts.IfExists,
				Cascade:  opts.Cascade,
			}); err != nil {
				return err
			}
			return statusResult(cc.Renderer, args[0], "dropped")
		},
	}

	cmd.Flags().BoolVar(&opts.IfExists, "if-exists", false, "Succeed when the table does not exist")
	cmd.Flags().BoolVar(&opts.Cascade, "cascade", false, "Also drop dependent objects where supported")

	return cmd
}

// NewExistsCommand creates the exists command.
func NewExistsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "exists <table>",
		Short: "Report whether a table exists",
		Long: `Report whether a table exists in the warehouse catalog.

Prints true or false. Unqualified names are looked up in the target schema.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd, false)
			if err != nil {
				return err
			}
			defer cleanup()

			exists, err := cc.Client.TableExists(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			r := cc.Renderer
			if handled, err := r.Structured(map[string]any{"table": args[0], "exists": exists}); handled {
				return err
			}
			r.Println(strconv.FormatBool(exists))
			return nil
		},
	}
}

// NewColumnsCommand creates the columns command.
func NewColumnsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "columns <table>",
		Short: "List a table's columns",
		Long:  `List a table's columns from the warehouse catalog in ordinal order.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd, false)
			if err != nil {
				return err
			}
			defer cleanup()

			cols, err := cc.Client.GetColumns(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			r := cc.Renderer
			if handled, err := r.Structured(cols); handled {
				return err
			}
			rows := make([][]any, len(cols))
			for i, c := range cols {
				rows[i] = []any{c.Position, c.Name, c.Type}
			}
			return r.Table([]string{"position", "name", "type"}, rows)
		},
	}
}

// statusResult reports a single-table DDL outcome.
func statusResult(r *output.Renderer, table, detail string) error {
	if handled, err := r.Structured(map[string]string{"table": table, "result": detail}); handled {
		return err
	}
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatKeyValue(table, detail))
		return nil
	}
	r.StatusLine(table, "success", detail)
	return nil
}

package commands

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdw/internal/cli/output"
	"github.com/leapstack-labs/leapdw/internal/journal"
	"github.com/leapstack-labs/leapdw/pkg/sqlgen"
)

// LoadOptions holds options for the load command.
type LoadOptions struct {
	Create       bool
	IfNotExists  bool
	ColumnType   string
	Columns      []string
	Truncate     bool
	Delimiter    string
	NoHeader     bool
	Rejected     string
	Exceptions   string
	AbortOnError bool
}

// loadResult is the structured output of load and seed.
type loadResult struct {
	Table   string   `json:"table" yaml:"table"`
	Path    string   `json:"path" yaml:"path"`
	Columns []string `json:"columns,omitempty" yaml:"columns,omitempty"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand() *cobra.Command {
	opts := &LoadOptions{}

	cmd := &cobra.Command{
		Use:   "load <table> <file>",
		Short: "Bulk-load a CSV file into a table",
		Long: `Bulk-load a CSV file into a table using the warehouse's native load path.

Columns come from the file's header unless --columns is given. With --create
the table is first created from the header with one text column per field.
Compressed files (.gz, .zst, .xz) are read transparently.`,
		Example: `  # Load into an existing table
  leapdw load public.orders orders.csv

  # Create the table from the header, then load
  leapdw load staging.orders orders.csv.gz --create

  # Replace the table contents, collecting rejected rows (Vertica)
  leapdw load orders orders.csv --truncate --rejected /tmp/rejected.txt`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Create, "create", false, "Create the table from the CSV header first")
	cmd.Flags().BoolVar(&opts.IfNotExists, "if-not-exists", false, "With --create, keep an existing table")
	cmd.Flags().StringVar(&opts.ColumnType, "type", "", "With --create, column type instead of the dialect's text type")
	cmd.Flags().StringSliceVar(&opts.Columns, "columns", nil, "Columns to load, in file order")
	cmd.Flags().BoolVar(&opts.Truncate, "truncate", false, "Empty the table before loading")
	cmd.Flags().StringVar(&opts.Delimiter, "delimiter", ",", "Field delimiter (a single character or \"tab\")")
	cmd.Flags().BoolVar(&opts.NoHeader, "no-header", false, "The file has no header line (requires --columns)")
	cmd.Flags().StringVar(&opts.Rejected, "rejected", "", "File collecting rejected rows (Vertica)")
	cmd.Flags().StringVar(&opts.Exceptions, "exceptions", "", "File collecting rejection reasons (Vertica)")
	cmd.Flags().BoolVar(&opts.AbortOnError, "abort-on-error", false, "Stop at the first bad row (Vertica)")

	return cmd
}

func (o *LoadOptions) validate() error {
	if o.NoHeader && len(o.Columns) == 0 {
		return fmt.Errorf("--no-header requires --columns")
	}
	if o.Create && len(o.Columns) > 0 {
		return fmt.Errorf("--create takes the columns from the header and cannot be combined with --columns")
	}
	return nil
}

func runLoad(cmd *cobra.Command, table, path string, opts *LoadOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}
	delimiter, err := parseDelimiter(opts.Delimiter)
	if err != nil {
		return err
	}

	cc, cleanup, err := NewCommandContext(cmd, true)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	started := time.Now()
	columns := opts.Columns

	err = func() error {
		if opts.Create {
			header, err := cc.Client.CreateTableFromCSVHeader(ctx, table, path, sqlgen.CreateOptions{
				IfNotExists: opts.IfNotExists,
				ColumnType:  opts.ColumnType,
			})
			if err != nil {
				return err
			}
			if len(header) == 0 {
				return nil
			}
			columns = header
		}

		skipHeader := !opts.NoHeader
		return cc.Client.LoadDataFromCSV(ctx, table, path, sqlgen.LoadOptions{
			Columns:        columns,
			Truncate:       opts.Truncate,
			Delimiter:      delimiter,
			SkipHeader:     &skipHeader,
			RejectedPath:   opts.Rejected,
			ExceptionsPath: opts.Exceptions,
			AbortOnError:   opts.AbortOnError,
		})
	}()
	err = cc.record(ctx, journal.Transfer{
		Kind:      journal.KindLoad,
		Table:     table,
		Path:      path,
		Rows:      -1,
		StartedAt: started,
	}, err)
	if err != nil {
		return err
	}

	r := cc.Renderer
	if handled, err := r.Structured(loadResult{Table: table, Path: path, Columns: columns}); handled {
		return err
	}
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatHeader(1, "Load"))
		r.Println("")
		r.Println(output.FormatKeyValue("Table", table))
		r.Println(output.FormatKeyValue("File", path))
		if len(columns) > 0 {
			r.Println(output.FormatKeyValue("Columns", strings.Join(columns, ", ")))
		}
		return nil
	}
	r.StatusLine(table, "success", "loaded from "+path)
	return nil
}

// SeedOptions holds options for the seed command.
type SeedOptions struct {
	IfNotExists bool
	ColumnType  string
}

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	opts := &SeedOptions{}

	cmd := &cobra.Command{
		Use:   "seed <dir>",
		Short: "Create and load a table for every CSV file in a directory",
		Long: `Create one table per CSV file in a directory and load the file into it.

Tables are named after the file without its extensions, so orders.csv.gz
becomes orders. Files are loaded in name order and the first failure stops
the run.

Output adapts to environment:
  - Terminal: Styled, colored output
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json, yaml`,
		Example: `  # Load all seeds
  leapdw seed ./seeds

  # Keep tables that already exist
  leapdw seed ./seeds --if-not-exists --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.IfNotExists, "if-not-exists", false, "Keep tables that already exist")
	cmd.Flags().StringVar(&opts.ColumnType, "type", "", "Column type instead of the dialect's text type")

	return cmd
}

func runSeed(cmd *cobra.Command, dir string, opts *SeedOptions) error {
	cc, cleanup, err := NewCommandContext(cmd, true)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	started := time.Now()
	tables, seedErr := cc.Client.LoadDirectory(ctx, dir, sqlgen.CreateOptions{
		IfNotExists: opts.IfNotExists,
		ColumnType:  opts.ColumnType,
	})
	for _, t := range tables {
		if err := cc.record(ctx, journal.Transfer{
			Kind:      journal.KindSeed,
			Table:     t,
			Path:      dir,
			Rows:      -1,
			StartedAt: started,
		}, nil); err != nil {
			return err
		}
	}
	if seedErr != nil {
		return seedErr
	}

	r := cc.Renderer
	results := make([]loadResult, 0, len(tables))
	for _, t := range tables {
		results = append(results, loadResult{Table: t, Path: dir})
	}
	if handled, err := r.Structured(results); handled {
		return err
	}

	absDir, _ := filepath.Abs(dir)
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatHeader(1, "Seeds Loaded"))
		r.Println("")
		for _, t := range tables {
			r.Println("- " + t)
		}
		r.Println("")
		r.Println(output.FormatKeyValue("Source Directory", absDir))
		r.Printf("**Total Seeds:** %d\n", len(tables))
		return nil
	}

	r.Header(2, "Loaded Seeds")
	if len(tables) == 0 {
		r.Muted("No CSV files found in " + absDir)
		return nil
	}
	for _, t := range tables {
		r.StatusLine(t, "success", "")
	}
	r.Println("")
	r.Muted("Source: " + absDir)
	return nil
}

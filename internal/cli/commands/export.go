package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdw/internal/cli/output"
	"github.com/leapstack-labs/leapdw/internal/journal"
	"github.com/leapstack-labs/leapdw/pkg/csvfile"
	"github.com/leapstack-labs/leapdw/pkg/warehouse"
)

// ExportOptions holds options for the export command.
type ExportOptions struct {
	Compression string
	Delimiter   string
}

// exportResult is the structured output of export.
type exportResult struct {
	Table string `json:"table" yaml:"table"`
	Path  string `json:"path" yaml:"path"`
	Rows  int    `json:"rows" yaml:"rows"`
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export <table> <file>",
		Short: "Stream a table into a CSV file",
		Long: `Stream every row of a table into a CSV file without holding the table in memory.

The header is the table's column list from the warehouse catalog and every
field is quoted. Compression is picked from the file extension (.gz, .zst, .xz)
unless --compression is given. A failed export leaves no partial file.`,
		Example: `  # Export a table
  leapdw export public.orders orders.csv

  # Export compressed with zstd
  leapdw export public.orders orders.csv.zst

  # Tab separated
  leapdw export events events.tsv --delimiter tab`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Compression, "compression", "auto", "Output compression: auto, none, gzip, zstd, xz")
	cmd.Flags().StringVar(&opts.Delimiter, "delimiter", ",", "Field delimiter (a single character or \"tab\")")

	_ = cmd.RegisterFlagCompletionFunc("compression", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "none", "gzip", "zstd", "xz"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runExport(cmd *cobra.Command, table, path string, opts *ExportOptions) error {
	compression, err := csvfile.ParseCompression(opts.Compression)
	if err != nil {
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
	n, err := cc.Client.ExportTable(ctx, table, path, warehouse.ExportOptions{
		Compression: compression,
		Delimiter:   delimiter,
	})
	rows := n
	if err != nil {
		rows = -1
	}
	err = cc.record(ctx, journal.Transfer{
		Kind:      journal.KindExport,
		Table:     table,
		Path:      path,
		Rows:      rows,
		StartedAt: started,
	}, err)
	if err != nil {
		return err
	}

	r := cc.Renderer
	result := exportResult{Table: table, Path: path, Rows: n}
	if handled, err := r.Structured(result); handled {
		return err
	}
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatHeader(1, "Export"))
		r.Println("")
		r.Println(output.FormatKeyValue("Table", table))
		r.Println(output.FormatKeyValue("File", path))
		r.Println(output.FormatKeyValue("Rows", fmt.Sprint(n)))
		return nil
	}
	r.StatusLine(table, "success", fmt.Sprintf("%d rows -> %s", n, path))
	return nil
}

// ExportAllOptions holds options for the export-all command.
type ExportAllOptions struct {
	Concurrency int
}

// NewExportAllCommand creates the export-all command.
func NewExportAllCommand() *cobra.Command {
	opts := &ExportAllOptions{}

	cmd := &cobra.Command{
		Use:   "export-all <table=file>...",
		Short: "Export several tables concurrently",
		Long: `Export several tables at once, each on its own connection.

At most --concurrency exports run at the same time. The first failure cancels
the exports still running.`,
		Example: `  leapdw export-all orders=orders.csv.gz customers=customers.csv --concurrency 2`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportAll(cmd, args, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 4, "Maximum concurrent exports (0 for no limit)")

	return cmd
}

// parseExportPairs parses table=file arguments.
func parseExportPairs(args []string) (map[string]string, error) {
	exports := make(map[string]string, len(args))
	for _, arg := range args {
		table, path, ok := strings.Cut(arg, "=")
		table, path = strings.TrimSpace(table), strings.TrimSpace(path)
		if !ok || table == "" || path == "" {
			return nil, fmt.Errorf("invalid export %q (expected table=file)", arg)
		}
		if _, dup := exports[table]; dup {
			return nil, fmt.Errorf("table %q is exported more than once", table)
		}
		exports[table] = path
	}
	return exports, nil
}

func runExportAll(cmd *cobra.Command, args []string, opts *ExportAllOptions) error {
	exports, err := parseExportPairs(args)
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
	results, exportErr := cc.Client.ExportTables(ctx, exports, opts.Concurrency)

	var journalErrs []error
	for _, res := range results {
		rows := res.Rows
		if res.Err != nil {
			rows = -1
		}
		recErr := cc.record(ctx, journal.Transfer{
			Kind:      journal.KindExport,
			Table:     res.Table,
			Path:      res.Path,
			Rows:      rows,
			StartedAt: started,
		}, res.Err)
		if recErr != res.Err { //nolint:errorlint // a different error means the journal write failed
			journalErrs = append(journalErrs, recErr)
		}
	}
	if exportErr != nil || len(journalErrs) > 0 {
		return errors.Join(append([]error{exportErr}, journalErrs...)...)
	}

	r := cc.Renderer
	out := make([]exportResult, 0, len(results))
	for _, res := range results {
		out = append(out, exportResult{Table: res.Table, Path: res.Path, Rows: res.Rows})
	}
	if handled, err := r.Structured(out); handled {
		return err
	}
	r.Header(1, "Exported Tables")
	for _, res := range results {
		r.StatusLine(res.Table, "success", fmt.Sprintf("%d rows -> %s", res.Rows, res.Path))
	}
	return nil
}

// parseDelimiter converts a flag value into a field delimiter.
func parseDelimiter(s string) (rune, error) {
	switch s {
	case "", ",":
		return ',', nil
	case "tab", `\t`, "\t":
		return '\t', nil
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	if runes[0] == '"' || runes[0] == '\n' || runes[0] == '\r' {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return runes[0], nil
}

// Package output renders command results for terminals, agents and scripts.
//
// In auto mode a terminal gets styled text and anything else gets markdown.
// json, yaml and csv are always available explicitly.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leapdw/pkg/csvfile"
)

// Mode is an output format.
type Mode string

// Output modes.
const (
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
	ModeYAML     Mode = "yaml"
	ModeCSV      Mode = "csv"
)

// Modes lists the accepted mode names.
var Modes = []string{"auto", "text", "markdown", "json", "yaml", "csv"}

// ParseMode maps a mode name (or a common alias) to a Mode.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return ModeAuto, nil
	case "text", "table":
		return ModeText, nil
	case "markdown", "md":
		return ModeMarkdown, nil
	case "json":
		return ModeJSON, nil
	case "yaml", "yml":
		return ModeYAML, nil
	case "csv":
		return ModeCSV, nil
	default:
		return ModeAuto, fmt.Errorf("unknown output format %q (expected one of %s)", name, strings.Join(Modes, ", "))
	}
}

// Renderer writes results in one output mode.
type Renderer struct {
	w      io.Writer
	errW   io.Writer
	isTTY  bool
	mode   Mode
	styles styles
}

// NewRenderer creates a renderer, detecting whether w is a terminal.
func NewRenderer(w, errW io.Writer, mode Mode) *Renderer {
	return NewRendererWithTTY(w, errW, isTerminal(w), mode)
}

// NewRendererWithTTY creates a renderer with an explicit terminal setting.
func NewRendererWithTTY(w, errW io.Writer, isTTY bool, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{
		w:      w,
		errW:   errW,
		isTTY:  isTTY,
		mode:   mode,
		styles: newStyles(isTTY),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // Fd fits in int on supported platforms
}

// EffectiveMode resolves auto to text on a terminal and markdown otherwise.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool {
	return r.isTTY
}

// Writer returns the output writer.
func (r *Renderer) Writer() io.Writer {
	return r.w
}

// Println writes a line to the output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.w, a...)
}

// Printf writes formatted text to the output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.w, format, a...)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as YAML.
func (r *Renderer) YAML(v any) error {
	enc := yaml.NewEncoder(r.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Structured writes v in json or yaml mode and reports whether it did.
func (r *Renderer) Structured(v any) (bool, error) {
	switch r.EffectiveMode() {
	case ModeJSON:
		return true, r.JSON(v)
	case ModeYAML:
		return true, r.YAML(v)
	default:
		return false, nil
	}
}

// Header writes a section header.
func (r *Renderer) Header(level int, title string) {
	if r.EffectiveMode() == ModeMarkdown {
		r.Println(FormatHeader(level, title))
		return
	}
	r.Println(r.styles.header.Render(title))
}

// StatusLine writes "symbol name detail" for one item of a batch.
// status is success, failed, skipped or anything else for a neutral marker.
func (r *Renderer) StatusLine(name, status, detail string) {
	if r.EffectiveMode() == ModeMarkdown {
		line := fmt.Sprintf("- **%s**: %s", name, status)
		if detail != "" {
			line += " (" + detail + ")"
		}
		r.Println(line)
		return
	}

	var symbol string
	switch status {
	case "success":
		symbol = r.styles.success.Render("✓")
	case "failed":
		symbol = r.styles.failure.Render("✗")
	case "skipped":
		symbol = r.styles.muted.Render("-")
	default:
		symbol = r.styles.muted.Render("•")
	}
	line := symbol + " " + name
	if detail != "" {
		line += " " + r.styles.muted.Render(detail)
	}
	r.Println(line)
}

// Success writes a success message.
func (r *Renderer) Success(msg string) {
	r.Println(r.styles.success.Render(msg))
}

// Warning writes a warning to the error stream.
func (r *Renderer) Warning(msg string) {
	_, _ = fmt.Fprintln(r.errW, r.styles.warning.Render("warning: "+msg))
}

// Error writes an error to the error stream.
func (r *Renderer) Error(msg string) {
	_, _ = fmt.Fprintln(r.errW, r.styles.failure.Render("error: "+msg))
}

// Muted writes de-emphasized text.
func (r *Renderer) Muted(msg string) {
	r.Println(r.styles.muted.Render(msg))
}

// Table writes columns and rows in the effective mode.
func (r *Renderer) Table(columns []string, rows [][]any) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		return r.JSON(records(columns, rows))
	case ModeYAML:
		return r.YAML(records(columns, rows))
	case ModeCSV:
		cw := csvfile.NewWriter(r.w)
		if err := cw.Write(columns); err != nil {
			return err
		}
		for _, row := range rows {
			if err := cw.WriteValues(row); err != nil {
				return err
			}
		}
		return cw.Flush()
	case ModeMarkdown:
		r.Println(FormatTable(columns, rows))
		r.Printf("_(%d rows)_\n", len(rows))
		return nil
	default:
		if len(rows) == 0 {
			r.Muted("(0 rows)")
			return nil
		}
		t := table.NewWriter()
		t.SetOutputMirror(r.w)
		t.SetStyle(table.StyleLight)

		header := make(table.Row, len(columns))
		for i, c := range columns {
			header[i] = c
		}
		t.AppendHeader(header)
		for _, row := range rows {
			out := make(table.Row, len(row))
			for i, v := range row {
				out[i] = displayValue(v)
			}
			t.AppendRow(out)
		}
		t.Render()
		r.Muted(fmt.Sprintf("(%d rows)", len(rows)))
		return nil
	}
}

// records converts rows into maps for structured encoders.
func records(columns []string, rows [][]any) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		m := make(map[string]any, len(columns))
		for i, c := range columns {
			if i < len(row) {
				m[c] = plainValue(row[i])
			}
		}
		out = append(out, m)
	}
	return out
}

func plainValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func displayValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return csvfile.FormatValue(v)
}

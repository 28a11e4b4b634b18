package output

import (
	"fmt"
	"strings"
)

// FormatHeader formats a markdown header.
func FormatHeader(level int, title string) string {
	if level < 1 {
		level = 1
	}
	return strings.Repeat("#", level) + " " + title
}

// FormatKeyValue formats a bold key and its value.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("**%s:** %s", key, value)
}

// FormatCodeBlock wraps code in a fenced block.
func FormatCodeBlock(lang, code string) string {
	return "```" + lang + "\n" + strings.TrimRight(code, "\n") + "\n```"
}

// FormatTable formats a markdown table. Pipes and newlines in cells are escaped.
func FormatTable(columns []string, rows [][]any) string {
	var b strings.Builder

	cells := make([]string, len(columns))
	for i, c := range columns {
		cells[i] = escapeCell(c)
	}
	b.WriteString("| " + strings.Join(cells, " | ") + " |\n")

	for i := range cells {
		cells[i] = "---"
	}
	b.WriteString("| " + strings.Join(cells, " | ") + " |")

	for _, row := range rows {
		out := make([]string, len(columns))
		for i := range columns {
			if i < len(row) {
				out[i] = escapeCell(displayValue(row[i]))
			}
		}
		b.WriteString("\n| " + strings.Join(out, " | ") + " |")
	}
	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

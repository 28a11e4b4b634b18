// Package csvfile handles the CSV side of warehouse transfers: header
// extraction, force-quoted writing and transparent compression.
package csvfile

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/encoding"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadHeader reads only the first line of path and returns its cleaned column names.
// An empty file or a blank first line yields an empty slice and no error.
func ReadHeader(path string) ([]string, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	line, err := FirstLine(r)
	if err != nil {
		return nil, err
	}
	return ParseHeader(line), nil
}

// FirstLine returns the first line of r without its line terminator.
// A leading byte order mark is removed.
func FirstLine(r io.Reader) (string, error) {
	return ReadLine(bufio.NewReader(StripBOM(r)))
}

// StripBOM returns a reader that drops a leading UTF-8 byte order mark.
func StripBOM(r io.Reader) io.Reader {
	return transform.NewReader(r, xunicode.BOMOverride(encoding.Nop.NewDecoder()))
}

// ReadLine reads one raw line from br without its line terminator.
// Reaching the end of input is not an error.
func ReadLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ParseHeader splits a header line on commas and removes every whitespace,
// double quote and hyphen character from each name.
func ParseHeader(line string) []string {
	if strings.TrimSpace(line) == "" {
		return []string{}
	}
	fields := strings.Split(line, ",")
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = CleanName(f)
	}
	return names
}

// CleanName strips whitespace, double quotes and hyphens from a header field.
func CleanName(field string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '"' || r == '-' {
			return -1
		}
		return r
	}, field)
}

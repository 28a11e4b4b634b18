package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapdw/pkg/csvfile"
	"github.com/stretchr/testify/require"
)

// WriteFile writes content to name inside dir and returns the full path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// WriteCompressedFile writes content through the codec implied by name's
// extension and returns the full path.
func WriteCompressedFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	w, err := csvfile.Create(path, csvfile.CompressionAuto)
	require.NoError(t, err)
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return path
}

// ReadCSV parses the (possibly compressed) CSV file at path.
func ReadCSV(t testing.TB, path string) [][]string {
	t.Helper()
	r, err := csvfile.Open(path)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	records, err := csv.NewReader(r).ReadAll()
	require.NoError(t, err)
	return records
}

// ReadFile returns the raw contents of path.
func ReadFile(t testing.TB, path string) string {
	t.Helper()
	b, err := os.ReadFile(path) //nolint:gosec // test fixture path
	require.NoError(t, err)
	return string(b)
}

package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTaxonomy(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name    string
		err     error
		wantMsg []string
	}{
		{
			name:    "connection",
			err:     &ConnectionError{Adapter: "vertica", Err: cause},
			wantMsg: []string{"vertica", "boom"},
		},
		{
			name:    "execution",
			err:     &ExecutionError{Statement: "DROP TABLE t", Index: 1, Err: cause},
			wantMsg: []string{"statement 2", "DROP TABLE t", "boom"},
		},
		{
			name:    "query",
			err:     &QueryError{Query: "SELECT * FROM t", Err: cause},
			wantMsg: []string{"SELECT * FROM t", "boom"},
		},
		{
			name:    "io",
			err:     &IOError{Op: "open", Path: "/tmp/x.csv", Err: cause},
			wantMsg: []string{"open", "/tmp/x.csv", "boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, want := range tt.wantMsg {
				assert.Contains(t, tt.err.Error(), want)
			}
			assert.ErrorIs(t, fmt.Errorf("wrapped: %w", tt.err), cause)
		})
	}
}

func TestExecutionError_TruncatesLongStatements(t *testing.T) {
	long := "INSERT INTO t VALUES " + strings.Repeat("(1),", 200)
	err := &ExecutionError{Statement: long, Err: errors.New("x")}

	assert.Less(t, len(err.Error()), len(long))

	var target *ExecutionError
	require.ErrorAs(t, fmt.Errorf("outer: %w", err), &target)
	assert.Equal(t, long, target.Statement, "the full text stays on the error value")
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	// 199 ASCII bytes put the cut inside the two-byte "é".
	long := strings.Repeat("x", maxStatementInError-1) + strings.Repeat("é", 10)

	got := truncate(long)
	assert.True(t, utf8.ValidString(got), "truncated text is valid UTF-8")
	assert.Equal(t, strings.Repeat("x", maxStatementInError-1)+"...", got)

	short := "SELECT 'é'"
	assert.Equal(t, short, truncate(short))
}

func TestJoinSQL(t *testing.T) {
	stmts := []Statement{SQL("TRUNCATE TABLE t"), SQL("COPY t FROM LOCAL 'x'")}
	assert.Equal(t, "TRUNCATE TABLE t;\nCOPY t FROM LOCAL 'x'", JoinSQL(stmts))
	assert.Equal(t, "SELECT 1", SQL("SELECT 1").String())
}

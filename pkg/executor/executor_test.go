package executor

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/leapdw/pkg/adapter"
	"github.com/leapstack-labs/leapdw/pkg/core"
	"github.com/leapstack-labs/leapdw/pkg/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	adapter.Base
}

func (s *stubAdapter) DSN(core.ConnectionConfig) (string, error) { return "", nil }

type copyAdapter struct {
	stubAdapter
	copied []core.Statement
	err    error
}

func (c *copyAdapter) CopyFrom(_ context.Context, _ *sql.Conn, stmt core.Statement) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.copied = append(c.copied, stmt)
	return 2, nil
}

func newStub() stubAdapter {
	return stubAdapter{Base: adapter.NewBase("stub", "sqlmock", dialect.NewDialect("stub").Build(), nil)}
}

func newExecutor(t *testing.T, a adapter.Adapter, logger *slog.Logger) (*Executor, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	stub := newStub()
	if a == nil {
		a = &stub
	}
	return New(adapter.NewProvider(a, db, nil), logger), mock
}

func TestExecute_InOrder(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	exec, mock := newExecutor(t, nil, logger)

	mock.ExpectExec("CREATE TABLE t").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO t").WithArgs("a", "b").WillReturnResult(sqlmock.NewResult(0, 1))

	err := exec.Execute(context.Background(),
		core.SQL("CREATE TABLE t (x TEXT, y TEXT)"),
		core.SQL("INSERT INTO t (x, y) VALUES (?, ?)", "a", "b"),
	)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, 2, strings.Count(logs.String(), "executing sql"), "every statement is logged")
	assert.Contains(t, logs.String(), "CREATE TABLE t")
}

func TestExecute_LogsBatchAtDebug(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	exec, mock := newExecutor(t, nil, logger)

	mock.ExpectExec("TRUNCATE TABLE t").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO t").WillReturnResult(sqlmock.NewResult(0, 1))

	stmts := []core.Statement{core.SQL("TRUNCATE TABLE t"), core.SQL("INSERT INTO t VALUES (1)")}
	require.NoError(t, exec.Execute(context.Background(), stmts...))
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Contains(t, logs.String(), "executing batch")
	assert.Contains(t, logs.String(), "statements=2")

	logs.Reset()
	mock.ExpectExec("SELECT 1").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, exec.Execute(context.Background(), core.SQL("SELECT 1")))
	assert.NotContains(t, logs.String(), "executing batch", "a single statement is not a batch")
}

func TestExecute_StopsAtFirstFailure(t *testing.T) {
	exec, mock := newExecutor(t, nil, nil)
	errDriver := errors.New("relation already exists")

	mock.ExpectExec("DROP TABLE a").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE b").WillReturnError(errDriver)

	err := exec.Execute(context.Background(),
		core.SQL("DROP TABLE a"),
		core.SQL("CREATE TABLE b (x TEXT)"),
		core.SQL("ALTER TABLE b RENAME TO c"),
	)

	var execErr *core.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, 1, execErr.Index)
	assert.Equal(t, "CREATE TABLE b (x TEXT)", execErr.Statement)
	assert.ErrorIs(t, err, errDriver)

	// The rename was never sent: sqlmock would have rejected it.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_Empty(t *testing.T) {
	exec, mock := newExecutor(t, nil, nil)
	require.NoError(t, exec.Execute(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_CopyInput(t *testing.T) {
	load := core.SQL("COPY t (a) FROM STDIN")
	load.Input = &core.CopyInput{Path: "/data/t.csv", Table: "t", Columns: []string{"a"}, Header: true}

	t.Run("delegates to copier", func(t *testing.T) {
		adp := &copyAdapter{stubAdapter: newStub()}
		exec, mock := newExecutor(t, adp, nil)
		mock.ExpectExec("TRUNCATE TABLE t").WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, exec.Execute(context.Background(), core.SQL("TRUNCATE TABLE t"), load))
		require.Len(t, adp.copied, 1)
		assert.Equal(t, "/data/t.csv", adp.copied[0].Input.Path)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("copier failure", func(t *testing.T) {
		adp := &copyAdapter{stubAdapter: newStub(), err: errors.New("bad row")}
		exec, _ := newExecutor(t, adp, nil)

		err := exec.Execute(context.Background(), load)
		var execErr *core.ExecutionError
		require.ErrorAs(t, err, &execErr)
		assert.Equal(t, 0, execErr.Index)
	})

	t.Run("unsupported", func(t *testing.T) {
		exec, _ := newExecutor(t, nil, nil)

		err := exec.Execute(context.Background(), load)
		require.ErrorIs(t, err, core.ErrCopyUnsupported)
	})
}

func TestExecuteQuery_Count(t *testing.T) {
	tests := []struct {
		name string
		rows *sqlmock.Rows
		want int64
	}{
		{name: "count column", rows: sqlmock.NewRows([]string{"count"}).AddRow(int64(3)), want: 3},
		{name: "upper-case count column", rows: sqlmock.NewRows([]string{"COUNT"}).AddRow(int64(1)), want: 1},
		{name: "only column as text", rows: sqlmock.NewRows([]string{"COUNT(*)"}).AddRow("5"), want: 5},
		{name: "empty result", rows: sqlmock.NewRows([]string{"count"}), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec, mock := newExecutor(t, nil, nil)
			mock.ExpectQuery("SELECT COUNT").WithArgs("public", "orders").WillReturnRows(tt.rows)

			n, err := exec.QueryCount(context.Background(),
				core.SQL("SELECT COUNT(*) AS count FROM information_schema.tables WHERE table_schema = ? AND table_name = ?", "public", "orders"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestExecuteQuery_CountWithoutCountColumn(t *testing.T) {
	exec, mock := newExecutor(t, nil, nil)
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"a", "b"}).AddRow(int64(1), int64(2)))

	_, err := exec.QueryCount(context.Background(), core.SQL("SELECT a, b FROM t"))
	var qErr *core.QueryError
	require.ErrorAs(t, err, &qErr)
}

func TestExecuteQuery_Stream(t *testing.T) {
	exec, mock := newExecutor(t, nil, nil)
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}).
		AddRow(int64(1)).AddRow(int64(2)).AddRow(int64(3)))

	var seen []any
	res, err := exec.ExecuteQuery(context.Background(), core.SQL("SELECT * FROM t"), QueryOptions{
		Mode: Stream(func(r core.Row) error {
			seen = append(seen, r.Values[0])
			return nil
		}),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Handled)
	assert.Nil(t, res.Rows, "stream mode never materializes")
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, seen)
}

func TestExecuteQuery_StreamHandlerError(t *testing.T) {
	exec, mock := newExecutor(t, nil, nil)
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)).AddRow(int64(2)))
	errDisk := errors.New("disk full")

	_, err := exec.QueryStream(context.Background(), core.SQL("SELECT * FROM t"), func(core.Row) error {
		return errDisk
	})

	var qErr *core.QueryError
	require.ErrorAs(t, err, &qErr)
	assert.ErrorIs(t, err, errDisk)
}

func TestExecuteQuery_Materialize(t *testing.T) {
	exec, mock := newExecutor(t, nil, nil)
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
		AddRow(int64(1), "alpha").AddRow(int64(2), "beta"))

	// A nil mode materializes.
	res, err := exec.ExecuteQuery(context.Background(), core.SQL("SELECT * FROM t"), QueryOptions{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, 2, res.Handled)
	assert.Equal(t, []string{"id", "name"}, res.Rows[1].Keys())
	assert.Equal(t, []any{"beta"}, res.Rows[1].ValuesAt("name"))
}

func TestExecuteQuery_DriverError(t *testing.T) {
	exec, mock := newExecutor(t, nil, nil)
	errDriver := errors.New("syntax error")
	mock.ExpectQuery("SELEC").WillReturnError(errDriver)

	rows, err := exec.QueryAll(context.Background(), core.SQL("SELEC * FROM t"))
	assert.Nil(t, rows)

	var qErr *core.QueryError
	require.ErrorAs(t, err, &qErr)
	assert.Equal(t, "SELEC * FROM t", qErr.Query)
	assert.ErrorIs(t, err, errDriver)
}

package adapter

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/leapdw/pkg/core"
	"github.com/leapstack-labs/leapdw/pkg/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	Base
	dsnErr error
}

func (s *stubAdapter) DSN(_ core.ConnectionConfig) (string, error) {
	if s.dsnErr != nil {
		return "", s.dsnErr
	}
	return "stub://", nil
}

type initAdapter struct {
	stubAdapter
	calls int
	err   error
}

func (s *initAdapter) InitSession(_ context.Context, _ *sql.Conn) error {
	s.calls++
	return s.err
}

func newStub(driver string) *stubAdapter {
	return &stubAdapter{Base: NewBase("stub", driver, dialect.NewDialect("stub").Build(), nil)}
}

func newMockProvider(t *testing.T, a Adapter) (*Provider, *sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewProvider(a, db, nil), db, mock
}

func TestWithConnection_ReleasesConnection(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name    string
		fn      func(ctx context.Context, conn *sql.Conn) error
		wantErr error
	}{
		{
			name: "success",
			fn: func(ctx context.Context, conn *sql.Conn) error {
				_, err := conn.ExecContext(ctx, "CREATE TABLE t (a TEXT)")
				return err
			},
		},
		{
			name: "callback error",
			fn: func(_ context.Context, _ *sql.Conn) error {
				return errBoom
			},
			wantErr: errBoom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, db, mock := newMockProvider(t, newStub("sqlmock"))
			if tt.wantErr == nil {
				mock.ExpectExec("CREATE TABLE t").WillReturnResult(sqlmock.NewResult(0, 0))
			}

			err := p.WithConnection(context.Background(), tt.fn)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, 0, db.Stats().InUse, "connection should be returned to the pool")
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestWithConnection_ReleasesOnPanic(t *testing.T) {
	p, db, _ := newMockProvider(t, newStub("sqlmock"))

	assert.Panics(t, func() {
		_ = p.WithConnection(context.Background(), func(_ context.Context, _ *sql.Conn) error {
			panic("handler exploded")
		})
	})

	assert.Equal(t, 0, db.Stats().InUse, "connection should be returned to the pool after a panic")
}

func TestWithConnection_AcquireFailure(t *testing.T) {
	p, _, _ := newMockProvider(t, newStub("sqlmock"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := p.WithConnection(ctx, func(_ context.Context, _ *sql.Conn) error {
		called = true
		return nil
	})

	require.Error(t, err)
	assert.False(t, called, "callback must not run without a connection")

	var connErr *core.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "stub", connErr.Adapter)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithConnection_SessionInitializer(t *testing.T) {
	t.Run("runs before callback", func(t *testing.T) {
		adp := &initAdapter{stubAdapter: *newStub("sqlmock")}
		p, _, _ := newMockProvider(t, adp)

		err := p.WithConnection(context.Background(), func(_ context.Context, _ *sql.Conn) error {
			assert.Equal(t, 1, adp.calls)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("failure is a connection error", func(t *testing.T) {
		adp := &initAdapter{stubAdapter: *newStub("sqlmock"), err: errors.New("bad setting")}
		p, db, _ := newMockProvider(t, adp)

		err := p.WithConnection(context.Background(), func(_ context.Context, _ *sql.Conn) error {
			t.Fatal("callback should not run")
			return nil
		})

		var connErr *core.ConnectionError
		require.ErrorAs(t, err, &connErr)
		assert.Equal(t, 0, db.Stats().InUse)
	})
}

func TestWithConnection_NoPool(t *testing.T) {
	p := NewProvider(newStub("sqlmock"), nil, nil)

	err := p.WithConnection(context.Background(), func(_ context.Context, _ *sql.Conn) error { return nil })
	require.ErrorIs(t, err, core.ErrNoConnection)
	assert.NoError(t, p.Close())
}

func TestOpen_Errors(t *testing.T) {
	t.Run("dsn failure", func(t *testing.T) {
		adp := newStub("sqlmock")
		adp.dsnErr = errors.New("missing database")

		_, err := Open(adp, core.ConnectionConfig{}, PoolOptions{}, nil)

		var connErr *core.ConnectionError
		require.ErrorAs(t, err, &connErr)
		assert.Contains(t, err.Error(), "missing database")
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := Open(newStub("no_such_driver"), core.ConnectionConfig{}, PoolOptions{}, nil)

		var connErr *core.ConnectionError
		require.ErrorAs(t, err, &connErr)
	})
}

func TestProvider_Ping(t *testing.T) {
	p, _, _ := newMockProvider(t, newStub("sqlmock"))
	require.NoError(t, p.Ping(context.Background()))
}

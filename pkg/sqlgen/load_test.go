package sqlgen

import (
	"testing"

	duckdbdialect "github.com/leapstack-labs/leapdw/pkg/adapters/duckdb/dialect"
	pgdialect "github.com/leapstack-labs/leapdw/pkg/adapters/postgres/dialect"
	sqlitedialect "github.com/leapstack-labs/leapdw/pkg/adapters/sqlite/dialect"
	verticadialect "github.com/leapstack-labs/leapdw/pkg/adapters/vertica/dialect"
	"github.com/leapstack-labs/leapdw/pkg/core"
	"github.com/leapstack-labs/leapdw/pkg/csvfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadData_PerDialect(t *testing.T) {
	cols := []string{"id", "name"}

	tests := []struct {
		name      string
		gen       *Generator
		path      string
		want      string
		wantInput bool
	}{
		{
			name: "vertica copy local",
			gen:  New(verticadialect.Vertica, Options{}),
			path: "/data/orders.csv",
			want: `COPY orders (id, name) FROM LOCAL '/data/orders.csv' DELIMITER ',' ENCLOSED BY '"' ESCAPE AS '"' SKIP 1`,
		},
		{
			name: "vertica gzip detected from extension",
			gen:  New(verticadialect.Vertica, Options{}),
			path: "/data/orders.csv.gz",
			want: `COPY orders (id, name) FROM LOCAL '/data/orders.csv.gz' GZIP DELIMITER ',' ENCLOSED BY '"' ESCAPE AS '"' SKIP 1`,
		},
		{
			name: "duckdb copy path",
			gen:  New(duckdbdialect.DuckDB, Options{}),
			path: "/data/it's.csv",
			want: `COPY orders (id, name) FROM '/data/it''s.csv' (FORMAT csv, HEADER true, DELIMITER ',')`,
		},
		{
			name:      "postgres copy stdin",
			gen:       New(pgdialect.Postgres, Options{}),
			path:      "/data/orders.csv",
			want:      `COPY orders (id, name) FROM STDIN WITH (FORMAT csv, HEADER true, DELIMITER ',')`,
			wantInput: true,
		},
		{
			name:      "sqlite insert",
			gen:       New(sqlitedialect.SQLite, Options{}),
			path:      "/data/orders.csv",
			want:      `INSERT INTO orders (id, name) VALUES (?, ?)`,
			wantInput: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := tt.gen.LoadData("orders", tt.path, cols, LoadOptions{})
			require.Len(t, stmts, 1)
			assert.Equal(t, tt.want, stmts[0].SQL)

			if !tt.wantInput {
				assert.Nil(t, stmts[0].Input)
				return
			}
			require.NotNil(t, stmts[0].Input)
			assert.Equal(t, core.CopyInput{
				Path:      tt.path,
				Table:     "orders",
				Columns:   cols,
				Header:    true,
				Delimiter: ',',
			}, *stmts[0].Input)
		})
	}
}

func TestLoadData_VerticaOptions(t *testing.T) {
	g := New(verticadialect.Vertica, Options{})
	noHeader := false

	stmts := g.LoadData("orders", "/data/orders.dat", []string{"b", "a"}, LoadOptions{
		Truncate:       true,
		Delimiter:      '|',
		SkipHeader:     &noHeader,
		RejectedPath:   "/tmp/rejected",
		ExceptionsPath: "/tmp/exceptions",
		AbortOnError:   true,
		Compression:    csvfile.CompressionZstd,
	})

	require.Len(t, stmts, 2)
	assert.Equal(t, "TRUNCATE TABLE orders", stmts[0].SQL)
	assert.Equal(t,
		`COPY orders (b, a) FROM LOCAL '/data/orders.dat' ZSTD DELIMITER '|' ENCLOSED BY '"' ESCAPE AS '"' REJECTED DATA '/tmp/rejected' EXCEPTIONS '/tmp/exceptions' ABORT ON ERROR`,
		stmts[1].SQL)
}

func TestLoadData_TruncatePerDialect(t *testing.T) {
	duck := New(duckdbdialect.DuckDB, Options{}).LoadData("orders", "/x.csv", []string{"id"}, LoadOptions{Truncate: true})
	require.Len(t, duck, 2)
	assert.Equal(t, "DELETE FROM orders", duck[0].SQL)

	pg := New(pgdialect.Postgres, Options{}).LoadData("orders", "/x.csv", []string{"id"}, LoadOptions{Truncate: true})
	require.Len(t, pg, 2)
	assert.Equal(t, "TRUNCATE TABLE orders", pg[0].SQL)
	assert.NotNil(t, pg[1].Input)
}

func TestLoadData_ColumnOrderIsPreserved(t *testing.T) {
	g := New(sqlitedialect.SQLite, Options{Quote: QuoteAll})
	stmts := g.LoadData("t", "/x.csv", []string{"z", "a", "m"}, LoadOptions{})

	require.Len(t, stmts, 1)
	assert.Equal(t, `INSERT INTO "t" ("z", "a", "m") VALUES (?, ?, ?)`, stmts[0].SQL)
	assert.Equal(t, []string{"z", "a", "m"}, stmts[0].Input.Columns)
}

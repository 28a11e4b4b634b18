package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	// Register adapters and their dialects.
	_ "github.com/leapstack-labs/leapdw/pkg/adapters/all"
)

// writeConfig writes leapdw.yaml into dir and makes dir the working directory.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if content != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600))
	}
	t.Chdir(dir)
	return dir
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.StringP("target", "t", "", "")
	fs.String("state", "", "")
	fs.BoolP("verbose", "v", false, "")
	fs.StringP("output", "o", "", "")
	fs.String("quote", "", "")
	fs.Int("max-open-conns", 0, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	dir := writeConfig(t, "")

	cfg, err := Load("", "", nil)
	require.NoError(t, err)

	assert.Equal(t, "duckdb", cfg.Target.Type)
	assert.Equal(t, "main", cfg.Target.Schema)
	assert.Empty(t, cfg.Target.Path)
	assert.Equal(t, filepath.Join(dir, DefaultStateFile), cfg.StatePath)
	assert.Equal(t, DefaultEnv, cfg.Environment)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultQuote, cfg.Quote)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, cfg.ConfigFile)
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Setenv("TEST_LEAPDW_PASSWORD", "s3cret")
	dir := writeConfig(t, `
target:
  type: Vertica
  host: dss.example.com
  instance: analytics
  user: loader
  password: ${TEST_LEAPDW_PASSWORD}
  options:
    tlsmode: server
quote: reserved
max_open_conns: 4
`)

	cfg, err := Load("", "", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, ConfigFileName), cfg.ConfigFile)
	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, "vertica", cfg.Target.Type)
	assert.Equal(t, 5433, cfg.Target.Port)
	assert.Equal(t, "public", cfg.Target.Schema)
	assert.Equal(t, "s3cret", cfg.Target.Password)
	assert.Equal(t, "server", cfg.Target.Options["tlsmode"])
	assert.Equal(t, "reserved", cfg.Quote)
	assert.Equal(t, 4, cfg.MaxOpenConns)

	conn := cfg.Target.ConnectionConfig()
	assert.Equal(t, "loader", conn.Username)
	assert.Equal(t, "analytics", conn.DatabaseName())
	assert.Equal(t, "dss.example.com", conn.Host)
}

func TestLoad_SearchesUpward(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileNameAlt), []byte("target:\n  type: sqlite\n  path: data/local.db\n"), 0o600))
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	t.Chdir(nested)

	cfg, err := Load("", "", nil)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(dir, "data", "local.db"), cfg.Target.Path)
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	cfgDir := t.TempDir()
	path := filepath.Join(cfgDir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("target:\n  type: duckdb\n  path: ':memory:'\nstate_path: state/journal.db\n"), 0o600))
	t.Chdir(t.TempDir())

	cfg, err := Load(path, "", nil)
	require.NoError(t, err)

	assert.Equal(t, cfgDir, cfg.ProjectRoot)
	assert.Equal(t, ":memory:", cfg.Target.Path)
	assert.Equal(t, filepath.Join(cfgDir, "state", "journal.db"), cfg.StatePath)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load("does-not-exist.yaml", "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_Precedence(t *testing.T) {
	writeConfig(t, `
output: text
target:
  type: postgres
  host: file-host
  database: warehouse
`)
	t.Setenv("LEAPDW_OUTPUT", "json")
	t.Setenv("LEAPDW_TARGET__HOST", "env-host")
	t.Setenv("LEAPDW_TARGET__PORT", "6543")

	t.Run("env overrides file", func(t *testing.T) {
		cfg, err := Load("", "", newFlags(t))
		require.NoError(t, err)
		assert.Equal(t, "json", cfg.OutputFormat)
		assert.Equal(t, "env-host", cfg.Target.Host)
		assert.Equal(t, 6543, cfg.Target.Port)
		assert.Equal(t, "warehouse", cfg.Target.Database)
	})

	t.Run("flags override env", func(t *testing.T) {
		cfg, err := Load("", "", newFlags(t, "--output", "csv", "--state", "/tmp/journal.db", "-v", "--max-open-conns", "8"))
		require.NoError(t, err)
		assert.Equal(t, "csv", cfg.OutputFormat)
		assert.Equal(t, "/tmp/journal.db", cfg.StatePath)
		assert.True(t, cfg.Verbose)
		assert.Equal(t, 8, cfg.MaxOpenConns)
	})

	t.Run("loader flags are not config keys", func(t *testing.T) {
		cfg, err := Load("", "", newFlags(t, "--target", "prod", "--config", "other.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "postgres", cfg.Target.Type)
		assert.Equal(t, "json", cfg.OutputFormat)
	})
}

func TestLoad_Environments(t *testing.T) {
	writeConfig(t, `
environment: dev
target:
  type: postgres
  host: localhost
  database: dev_db
  options:
    sslmode: disable
environments:
  dev:
    target:
      schema: dev_schema
  prod:
    target:
      host: prod.example.com
      database: prod_db
      options:
        sslmode: require
`)

	t.Run("configured environment applies", func(t *testing.T) {
		cfg, err := Load("", "", nil)
		require.NoError(t, err)
		assert.Equal(t, "dev_schema", cfg.Target.Schema)
		assert.Equal(t, "dev_db", cfg.Target.Database)
	})

	t.Run("target override selects environment", func(t *testing.T) {
		cfg, err := Load("", "prod", nil)
		require.NoError(t, err)
		assert.Equal(t, "prod.example.com", cfg.Target.Host)
		assert.Equal(t, "prod_db", cfg.Target.Database)
		assert.Equal(t, "require", cfg.Target.Options["sslmode"])
		assert.Equal(t, "public", cfg.Target.Schema)
		assert.Equal(t, 5432, cfg.Target.Port)
	})

	t.Run("unknown target", func(t *testing.T) {
		_, err := Load("", "staging", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown target "staging"`)
	})
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{
			name:      "unknown adapter",
			content:   "target:\n  type: oracle\n",
			errSubstr: "unknown adapter type",
		},
		{
			name:      "vertica without host",
			content:   "target:\n  type: vertica\n  database: db\n",
			errSubstr: "requires a host",
		},
		{
			name:      "postgres without database",
			content:   "target:\n  type: postgres\n  host: localhost\n",
			errSubstr: "requires a database or instance",
		},
		{
			name:      "bad quote mode",
			content:   "quote: sometimes\n",
			errSubstr: "invalid quote setting",
		},
		{
			name:      "negative pool size",
			content:   "max_open_conns: -1\n",
			errSubstr: "must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeConfig(t, tt.content)
			_, err := Load("", "", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestValidateTarget_ErrorContainsAvailable(t *testing.T) {
	err := ValidateTarget(&TargetConfig{Type: "invalid_db"})
	require.Error(t, err)

	assert.Contains(t, err.Error(), "duckdb")
	assert.Contains(t, err.Error(), "leapdw.yaml")
}

func TestValidateTarget(t *testing.T) {
	tests := []struct {
		name    string
		target  *TargetConfig
		wantErr bool
	}{
		{"nil", nil, true},
		{"empty type", &TargetConfig{}, true},
		{"duckdb", &TargetConfig{Type: "duckdb"}, false},
		{"duckdb uppercase", &TargetConfig{Type: "DuckDB"}, false},
		{"sqlite", &TargetConfig{Type: "sqlite", Path: "x.db"}, false},
		{"vertica with instance", &TargetConfig{Type: "vertica", Host: "h", Instance: "i"}, false},
		{"postgres with database", &TargetConfig{Type: "postgres", Host: "h", Database: "d"}, false},
		{"snowflake", &TargetConfig{Type: "snowflake"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTarget(tt.target)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultSchemaForType(t *testing.T) {
	tests := []struct {
		dbType   string
		expected string
	}{
		{"duckdb", "main"},
		{"DUCKDB", "main"},
		{"sqlite", "main"},
		{"postgres", "public"},
		{"vertica", "public"},
		{"unknown", "main"},
		{"", "main"},
	}

	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			assert.Equal(t, tt.expected, DefaultSchemaForType(tt.dbType))
		})
	}
}

func TestApplyTargetDefaults(t *testing.T) {
	pg := &TargetConfig{Type: " Postgres "}
	ApplyTargetDefaults(pg)
	assert.Equal(t, "postgres", pg.Type)
	assert.Equal(t, 5432, pg.Port)
	assert.Equal(t, "localhost", pg.Host)
	assert.Equal(t, "public", pg.Schema)

	v := &TargetConfig{Type: "vertica", Port: 15433, Schema: "staging"}
	ApplyTargetDefaults(v)
	assert.Equal(t, 15433, v.Port)
	assert.Equal(t, "staging", v.Schema)
	assert.Empty(t, v.Host)

	ApplyTargetDefaults(nil)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR_ONE", "value_one")
	t.Setenv("TEST_VAR_TWO", "value_two")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"single variable", "${TEST_VAR_ONE}", "value_one"},
		{"multiple variables", "${TEST_VAR_ONE}/${TEST_VAR_TWO}", "value_one/value_two"},
		{"variable in path", "/path/to/${TEST_VAR_ONE}/file", "/path/to/value_one/file"},
		{"unset variable stays as-is", "${UNSET_VARIABLE_XYZ}", "${UNSET_VARIABLE_XYZ}"},
		{"no variables", "plain string", "plain string"},
		{"empty string", "", ""},
		{"mixed set and unset", "${TEST_VAR_ONE}:${UNSET_VAR_XYZ}", "value_one:${UNSET_VAR_XYZ}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}

func TestMergeTargetConfig(t *testing.T) {
	t.Run("nil base returns override", func(t *testing.T) {
		override := &TargetConfig{Type: "duckdb"}
		assert.Same(t, override, MergeTargetConfig(nil, override))
	})

	t.Run("nil override returns base", func(t *testing.T) {
		base := &TargetConfig{Type: "duckdb"}
		assert.Same(t, base, MergeTargetConfig(base, nil))
	})

	t.Run("override fields and maps", func(t *testing.T) {
		base := &TargetConfig{
			Type:     "postgres",
			Host:     "localhost",
			Database: "dev",
			Options:  map[string]string{"sslmode": "disable", "application_name": "leapdw"},
			Params:   map[string]any{"a": 1},
		}
		override := &TargetConfig{
			Host:    "prod",
			Options: map[string]string{"sslmode": "require"},
			Params:  map[string]any{"b": 2},
		}

		merged := MergeTargetConfig(base, override)
		assert.Equal(t, "postgres", merged.Type)
		assert.Equal(t, "prod", merged.Host)
		assert.Equal(t, "dev", merged.Database)
		assert.Equal(t, map[string]string{"sslmode": "require", "application_name": "leapdw"}, merged.Options)
		assert.Equal(t, map[string]any{"a": 1, "b": 2}, merged.Params)

		// base is left untouched
		assert.Equal(t, "disable", base.Options["sslmode"])
		assert.NotContains(t, base.Params, "b")
	})
}

func TestContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, FromContext(ctx))
	assert.NotNil(t, GetLogger(ctx))

	cfg := &Config{OutputFormat: "json"}
	logger := slog.New(slog.DiscardHandler)
	ctx = WithLogger(NewContext(ctx, cfg), logger)

	assert.Same(t, cfg, FromContext(ctx))
	assert.Same(t, logger, GetLogger(ctx))
}

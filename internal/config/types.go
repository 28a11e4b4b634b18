// Package config loads leapdw configuration.
//
// Values are layered with koanf: built-in defaults, then leapdw.yaml, then
// LEAPDW_ environment variables, then command-line flags that were set
// explicitly. A named environment may override the target.
package config

import (
	"github.com/leapstack-labs/leapdw/pkg/core"
)

// TargetConfig holds database target configuration.
type TargetConfig struct {
	Type string `koanf:"type"` // vertica, postgres, duckdb, sqlite

	// File-based databases (DuckDB, SQLite)
	Path string `koanf:"path"`

	// Network databases
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
	Instance string `koanf:"instance"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	// Common
	Schema string `koanf:"schema"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`

	// Params holds adapter-specific configuration (e.g., DuckDB extensions and settings)
	Params map[string]any `koanf:"params"`
}

// ConnectionConfig converts the target into the adapter connection settings.
func (t *TargetConfig) ConnectionConfig() core.ConnectionConfig {
	return core.ConnectionConfig{
		Type:     t.Type,
		Path:     t.Path,
		Host:     t.Host,
		Port:     t.Port,
		Database: t.Database,
		Instance: t.Instance,
		Username: t.User,
		Password: t.Password,
		Schema:   t.Schema,
		Options:  t.Options,
		Params:   t.Params,
	}
}

// Config holds all CLI configuration options.
type Config struct {
	StatePath    string               `koanf:"state_path"`
	Environment  string               `koanf:"environment"`
	Verbose      bool                 `koanf:"verbose"`
	OutputFormat string               `koanf:"output"`
	Quote        string               `koanf:"quote"`
	MaxOpenConns int                  `koanf:"max_open_conns"`
	Target       *TargetConfig        `koanf:"target"`
	Environments map[string]EnvConfig `koanf:"environments"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
	// ConfigFile is the config file that was loaded, if any.
	ConfigFile string `koanf:"-"`
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	Target *TargetConfig `koanf:"target"`
}

// Default configuration values.
const (
	ConfigFileName    = "leapdw.yaml"
	ConfigFileNameAlt = "leapdw.yml"
	DefaultStateFile  = ".leapdw/state.db"
	DefaultEnv        = "dev"
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultQuote      = "none"
	DefaultTargetType = "duckdb"
)

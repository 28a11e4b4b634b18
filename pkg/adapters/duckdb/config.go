package duckdb

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds the DuckDB session configuration decoded from
// core.ConnectionConfig.Params.
type Params struct {
	// Extensions are installed and loaded on every connection, e.g. "httpfs".
	Extensions []string `mapstructure:"extensions"`
	// Settings are applied with SET, e.g. memory_limit or threads.
	Settings map[string]string `mapstructure:"settings"`
}

// parseParams decodes adapter params into Params.
// Nil or empty params yield an empty struct.
func parseParams(raw map[string]any) (*Params, error) {
	p := &Params{}
	if len(raw) == 0 {
		return p, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           p,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create params decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode duckdb params: %w", err)
	}
	return p, nil
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

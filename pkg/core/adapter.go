package core

// ConnectionConfig holds the credentials and endpoint used to open warehouse connections.
// It is supplied once at client construction and reused for every connection.
type ConnectionConfig struct {
	Type     string
	Path     string
	Host     string
	Port     int
	Database string
	// Instance identifies a hosted warehouse instance. Adapters use it as the
	// database name when Database is empty.
	Instance string
	Username string
	Password string
	Schema   string
	Options  map[string]string
	Params   map[string]any
}

// DatabaseName returns Database, falling back to Instance.
func (c ConnectionConfig) DatabaseName() string {
	if c.Database != "" {
		return c.Database
	}
	return c.Instance
}

// Option returns a driver option or def when it is unset.
func (c ConnectionConfig) Option(key, def string) string {
	if v, ok := c.Options[key]; ok && v != "" {
		return v
	}
	return def
}

// Column represents a column in a warehouse table.
// An empty Type means the dialect's generic text type.
type Column struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`
	Position int    `json:"position" yaml:"position"`
}

// TextColumns builds untyped column descriptors from an ordered list of names.
func TextColumns(names []string) []Column {
	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i] = Column{Name: n, Position: i + 1}
	}
	return cols
}

// ColumnNames returns the names of cols in order.
func ColumnNames(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

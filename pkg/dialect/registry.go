package dialect

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// Dialect registry
var (
	dialectsMu sync.RWMutex
	dialects   = make(map[string]*Dialect)
)

// ErrDialectRequired is returned when a dialect is required but not provided.
var ErrDialectRequired = errors.New("dialect is required")

// Get returns a dialect by name.
func Get(name string) (*Dialect, bool) {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	d, ok := dialects[strings.ToLower(name)]
	return d, ok
}

// Register registers a dialect in the global registry.
// Called by dialect implementations in their init() functions.
func Register(d *Dialect) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	dialects[strings.ToLower(d.Name)] = d
}

// List returns all registered dialect names (sorted).
func List() []string {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CommonReservedWords are reserved in every dialect leapdw targets.
var CommonReservedWords = []string{
	"all", "and", "as", "asc", "between", "by", "case", "check", "column", "constraint",
	"create", "cross", "default", "desc", "distinct", "drop", "else", "end", "except",
	"exists", "false", "for", "foreign", "from", "full", "group", "having", "in", "inner",
	"insert", "intersect", "into", "is", "join", "left", "like", "limit", "not", "null",
	"offset", "on", "or", "order", "outer", "primary", "references", "right", "select",
	"table", "then", "to", "true", "union", "unique", "update", "user", "using", "values",
	"when", "where", "with",
}

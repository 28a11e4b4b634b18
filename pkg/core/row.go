package core

import "strings"

// Row is one result row. Columns keeps the order returned by the warehouse
// and Values is aligned with it.
type Row struct {
	Columns []string
	Values  []any
}

// Keys returns the column keys in warehouse order.
func (r Row) Keys() []string {
	return r.Columns
}

// Index returns the position of key, matching exactly first and then
// case-insensitively. It returns -1 when the key is absent.
func (r Row) Index(key string) int {
	for i, c := range r.Columns {
		if c == key {
			return i
		}
	}
	for i, c := range r.Columns {
		if strings.EqualFold(c, key) {
			return i
		}
	}
	return -1
}

// Get returns the value stored under key.
func (r Row) Get(key string) (any, bool) {
	i := r.Index(key)
	if i < 0 || i >= len(r.Values) {
		return nil, false
	}
	return r.Values[i], true
}

// ValuesAt returns the values for keys in the given order.
// Missing keys yield nil.
func (r Row) ValuesAt(keys ...string) []any {
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i], _ = r.Get(k)
	}
	return out
}

// Map returns the row as a map keyed by column name.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.Columns))
	for i, c := range r.Columns {
		if i < len(r.Values) {
			m[c] = r.Values[i]
		}
	}
	return m
}

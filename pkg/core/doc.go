// Package core defines the shared language of the leapdw client.
//
// This package contains:
//   - Connection configuration (ConnectionConfig)
//   - Statement and row types passed between the generator, executor and cursor
//   - Column descriptors
//   - The error taxonomy (ConnectionError, ExecutionError, QueryError, IOError)
//   - Static dialect settings (IdentifierConfig, PlaceholderStyle, LoadStyle)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core

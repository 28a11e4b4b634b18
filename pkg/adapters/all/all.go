// Package all registers every built-in adapter.
//
//	import _ "github.com/leapstack-labs/leapdw/pkg/adapters/all"
package all

import (
	_ "github.com/leapstack-labs/leapdw/pkg/adapters/duckdb"   // duckdb adapter
	_ "github.com/leapstack-labs/leapdw/pkg/adapters/postgres" // postgres adapter
	_ "github.com/leapstack-labs/leapdw/pkg/adapters/sqlite"   // sqlite adapter
	_ "github.com/leapstack-labs/leapdw/pkg/adapters/vertica"  // vertica adapter
)

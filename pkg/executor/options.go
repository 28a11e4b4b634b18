package executor

import "github.com/leapstack-labs/leapdw/pkg/core"

// Mode selects how ExecuteQuery consumes a result set.
// Use Stream or Materialize.
type Mode interface {
	isMode()
}

type streamMode struct {
	handler func(core.Row) error
}

type materializeMode struct{}

func (streamMode) isMode()      {}
func (materializeMode) isMode() {}

// Stream hands each row to handler as it arrives. Memory use does not grow
// with the result size.
func Stream(handler func(core.Row) error) Mode {
	return streamMode{handler: handler}
}

// Materialize collects every row into QueryResult.Rows.
func Materialize() Mode {
	return materializeMode{}
}

// QueryOptions configures ExecuteQuery.
type QueryOptions struct {
	// Count returns only the scalar count from the first row and ignores Mode.
	Count bool
	// Mode defaults to Materialize.
	Mode Mode
}

// QueryResult is the outcome of ExecuteQuery.
type QueryResult struct {
	// Count is set in count mode.
	Count int64
	// Handled is the number of rows streamed or collected.
	Handled int
	// Rows is set in materialize mode.
	Rows []core.Row
}

package compression

import (
	"context"
	"fmt"

	"github.com/chboard/chboard/internal/clickhouse"
)

// ExecutionError reports a failed per-table statement. The first failure
// aborts the whole extraction; there is no partial-result mode.
type ExecutionError struct {
	Index int
	Query string
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("executing statement %d: %v", e.Index, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Execute runs each statement sequentially against the connection and appends
// its rows, in order, to a flat accumulator.
func Execute(ctx context.Context, conn clickhouse.Conn, queries []string) ([][]any, error) {
	var rows [][]any
	for i, q := range queries {
		result, err := conn.Query(ctx, q)
		if err != nil {
			return nil, &ExecutionError{Index: i, Query: q, Err: err}
		}
		rows = append(rows, result...)
	}
	return rows, nil
}

// Extract generates and runs both statement sets in one pass, returning the
// flat logical and physical row accumulators.
func Extract(ctx context.Context, conn clickhouse.Conn, database string, meta bool) (logical, physical [][]any, err error) {
	qs, err := NewGenerator(conn, database, meta).Generate(ctx)
	if err != nil {
		return nil, nil, err
	}

	logical, err = Execute(ctx, conn, qs.Logical)
	if err != nil {
		return nil, nil, err
	}
	physical, err = Execute(ctx, conn, qs.Physical)
	if err != nil {
		return nil, nil, err
	}
	return logical, physical, nil
}

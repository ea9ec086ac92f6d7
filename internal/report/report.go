package report

import (
	"fmt"
	"strconv"
	"time"
)

// LogicalRow is one table's logical compression: how many raw events were
// collapsed into each stored row.
type LogicalRow struct {
	Table              string  `json:"table"`
	EventCount         int64   `json:"event_count"`
	RowCount           int64   `json:"row_count"`
	Ratio              float64 `json:"ratio"`
	LogicalCompression float64 `json:"logical_compression"`
}

// PhysicalRow is one table's physical compression: on-disk compressed bytes
// against uncompressed bytes. Sizes keep ClickHouse's human-readable form.
type PhysicalRow struct {
	Table               string  `json:"table"`
	CompressedSize      string  `json:"compressed_size"`
	UncompressedSize    string  `json:"uncompressed_size"`
	Ratio               float64 `json:"ratio"`
	PhysicalCompression float64 `json:"physical_compression"`
}

// Report holds both shaped datasets for one render cycle.
type Report struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Database    string        `json:"database"`
	Logical     []LogicalRow  `json:"logical"`
	Physical    []PhysicalRow `json:"physical"`
}

// ShapingError reports a row that does not match the declared schema.
type ShapingError struct {
	Dataset string // "logical" or "physical"
	Row     int
	Err     error
}

func (e *ShapingError) Error() string {
	return fmt.Sprintf("shaping %s row %d: %v", e.Dataset, e.Row, e.Err)
}

func (e *ShapingError) Unwrap() error { return e.Err }

const (
	logicalArity  = 5
	physicalArity = 5
)

// Shape binds the flat row accumulators to the fixed report schemas. Columns
// bind positionally, so arity and type are checked on every row instead of
// trusting the generated SQL to stay in sync.
func Shape(database string, logical, physical [][]any) (*Report, error) {
	r := &Report{
		GeneratedAt: time.Now(),
		Database:    database,
	}

	for i, row := range logical {
		if len(row) != logicalArity {
			return nil, &ShapingError{Dataset: "logical", Row: i,
				Err: fmt.Errorf("expected %d columns, got %d", logicalArity, len(row))}
		}
		shaped := LogicalRow{}
		var err error
		if shaped.Table, err = toString(row[0]); err == nil {
			if shaped.EventCount, err = toInt64(row[1]); err == nil {
				if shaped.RowCount, err = toInt64(row[2]); err == nil {
					if shaped.Ratio, err = toFloat64(row[3]); err == nil {
						shaped.LogicalCompression, err = toFloat64(row[4])
					}
				}
			}
		}
		if err != nil {
			return nil, &ShapingError{Dataset: "logical", Row: i, Err: err}
		}
		r.Logical = append(r.Logical, shaped)
	}

	for i, row := range physical {
		if len(row) != physicalArity {
			return nil, &ShapingError{Dataset: "physical", Row: i,
				Err: fmt.Errorf("expected %d columns, got %d", physicalArity, len(row))}
		}
		shaped := PhysicalRow{}
		var err error
		if shaped.Table, err = toString(row[0]); err == nil {
			if shaped.CompressedSize, err = toString(row[1]); err == nil {
				if shaped.UncompressedSize, err = toString(row[2]); err == nil {
					if shaped.Ratio, err = toFloat64(row[3]); err == nil {
						shaped.PhysicalCompression, err = toFloat64(row[4])
					}
				}
			}
		}
		if err != nil {
			return nil, &ShapingError{Dataset: "physical", Row: i, Err: err}
		}
		r.Physical = append(r.Physical, shaped)
	}

	return r, nil
}

// TableNames returns the distinct table names of the logical dataset, in
// dataset order.
func (r *Report) TableNames() []string {
	seen := make(map[string]bool, len(r.Logical))
	var names []string
	for _, row := range r.Logical {
		if !seen[row.Table] {
			seen[row.Table] = true
			names = append(names, row.Table)
		}
	}
	return names
}

// Filter returns a copy including only rows whose table name is in the
// selection, applied identically to both datasets. A nil selection means
// unfiltered; an empty selection yields zero rows.
func (r *Report) Filter(tables []string) *Report {
	if tables == nil {
		return r
	}

	include := make(map[string]bool, len(tables))
	for _, t := range tables {
		include[t] = true
	}

	out := &Report{
		GeneratedAt: r.GeneratedAt,
		Database:    r.Database,
	}
	for _, row := range r.Logical {
		if include[row.Table] {
			out.Logical = append(out.Logical, row)
		}
	}
	for _, row := range r.Physical {
		if include[row.Table] {
			out.Physical = append(out.Physical, row)
		}
	}
	return out
}

func toString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected text value, got %T", v)
	}
	return s, nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("expected integer value, got %T", v)
	}
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected numeric value, got %T", v)
	}
}

// FormatPercent renders a compression percentage the way the original panel
// displayed it when the column was typed as text.
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

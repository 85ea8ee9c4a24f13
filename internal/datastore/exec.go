package datastore

import (
	"context"
	"fmt"
)

// Cell is one column/value pair in a result row, in projection order.
type Cell struct {
	Name  string
	Value any
}

// Row is an ordered list of column-name to scalar-value mappings,
// preserving the SQL statement's projection order.
type Row []Cell

// Result is the outcome of a successful query.
type Result struct {
	Columns []string
	Rows    []Row
}

// Query runs sqlText against the dataset store and returns its rows.
// The caller is responsible for attaching a deadline to ctx; Query does
// not impose one of its own.
func (s *Store) Query(ctx context.Context, sqlText string) (*Result, error) {
	rows, err := s.db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading result columns: %w", err)
	}

	result := &Result{Columns: columns}
	for rows.Next() {
		scanDest := make([]any, len(columns))
		scanPtrs := make([]any, len(columns))
		for i := range scanDest {
			scanPtrs[i] = &scanDest[i]
		}
		if err := rows.Scan(scanPtrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			row[i] = Cell{Name: col, Value: normalizeValue(scanDest[i])}
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// normalizeValue converts driver-native byte slices (SQLite returns
// []byte for TEXT columns) into plain strings so callers never have to
// special-case the driver's wire representation.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

package datastore

import (
	"context"
	"database/sql"
	"fmt"
)

// ValueCount is one entry of a top-k value-frequency summary.
type ValueCount struct {
	Value string // "NULL" stands in for a SQL NULL value
	Count int64
}

// NumericStats holds MIN/MAX/AVG for a numeric column. Valid is false
// when the table is empty or the column has no non-null values.
type NumericStats struct {
	Min, Max, Avg float64
	Valid         bool
}

// RowCount returns COUNT(*) for table.
func (s *Store) RowCount(ctx context.Context, table string) (int64, error) {
	var n int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(table))
	if err := s.scalar(ctx, &n, query); err != nil {
		return 0, fmt.Errorf("counting rows in %s: %w", table, err)
	}
	return n, nil
}

// NullCount returns the number of NULL values in table.column.
func (s *Store) NullCount(ctx context.Context, table, column string) (int64, error) {
	var n int64
	query := fmt.Sprintf(
		"SELECT SUM(CASE WHEN %s IS NULL THEN 1 ELSE 0 END) FROM %s",
		quoteIdent(column), quoteIdent(table),
	)
	if err := s.scalar(ctx, &n, query); err != nil {
		return 0, fmt.Errorf("counting nulls in %s.%s: %w", table, column, err)
	}
	return n, nil
}

// DistinctCount returns COUNT(DISTINCT column) for table.column.
func (s *Store) DistinctCount(ctx context.Context, table, column string) (int64, error) {
	var n int64
	query := fmt.Sprintf(
		"SELECT COUNT(DISTINCT %s) FROM %s",
		quoteIdent(column), quoteIdent(table),
	)
	if err := s.scalar(ctx, &n, query); err != nil {
		return 0, fmt.Errorf("counting distinct values in %s.%s: %w", table, column, err)
	}
	return n, nil
}

// NumericStats returns MIN/MAX/AVG for a numeric column.
func (s *Store) NumericStats(ctx context.Context, table, column string) (NumericStats, error) {
	query := fmt.Sprintf(
		"SELECT MIN(%[1]s), MAX(%[1]s), AVG(%[1]s) FROM %[2]s",
		quoteIdent(column), quoteIdent(table),
	)
	var min, max, avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx, query).Scan(&min, &max, &avg)
	if err != nil {
		return NumericStats{}, fmt.Errorf("computing numeric stats for %s.%s: %w", table, column, err)
	}
	if !min.Valid {
		return NumericStats{}, nil
	}
	return NumericStats{Min: min.Float64, Max: max.Float64, Avg: avg.Float64, Valid: true}, nil
}

// TopKValues returns the k most frequent values of a low-cardinality
// text column, ordered by frequency descending.
func (s *Store) TopKValues(ctx context.Context, table, column string, k int) ([]ValueCount, error) {
	query := fmt.Sprintf(
		`SELECT CAST(%[1]s AS TEXT) AS value, COUNT(*) AS cnt
		 FROM %[2]s
		 GROUP BY CAST(%[1]s AS TEXT)
		 ORDER BY cnt DESC
		 LIMIT ?`,
		quoteIdent(column), quoteIdent(table),
	)
	rows, err := s.db.QueryContext(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("computing top values for %s.%s: %w", table, column, err)
	}
	defer rows.Close()

	var out []ValueCount
	for rows.Next() {
		var value sql.NullString
		var count int64
		if err := rows.Scan(&value, &count); err != nil {
			return nil, fmt.Errorf("scanning top values for %s.%s: %w", table, column, err)
		}
		v := "NULL"
		if value.Valid {
			v = value.String
		}
		out = append(out, ValueCount{Value: v, Count: count})
	}
	return out, rows.Err()
}

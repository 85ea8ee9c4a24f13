// Package dbcontext builds the per-turn Database Context: schema,
// per-table summary statistics, and optional natural-language
// annotations, rendered to a compact, deterministic text block for LLM
// consumption.
package dbcontext

// ColumnDescriptor describes one column of a table, in the order it
// appears in the schema source.
type ColumnDescriptor struct {
	Name           string
	Type           string
	Nullable       bool
	RelationTarget string // "" if this column does not reference another table
}

// TableDescriptor describes one table: its logical (domain) name, its
// physical (store) name, and its columns in schema order.
type TableDescriptor struct {
	LogicalName  string
	PhysicalName string
	Columns      []ColumnDescriptor
}

// NumericStats mirrors datastore.NumericStats without importing the
// datastore package into the public shape of a Context.
type NumericStats struct {
	Min, Max, Avg float64
	Valid         bool
}

// ValueCount is one entry of a top-k value-frequency summary.
type ValueCount struct {
	Value string
	Count int64
}

// ColumnSummary holds the aggregate statistics for one column.
type ColumnSummary struct {
	NullCount      int64
	DistinctCount  int64
	Numeric        NumericStats
	TopValues      []ValueCount
	StatsAvailable bool // false when the underlying aggregate queries failed
}

// TableSummary holds the per-table row count and per-column summaries.
// Unavailable is set when the table's own row count query failed; in
// that case Columns is empty but the table still appears in the
// rendered context with its schema header, with summaries marked
// unavailable rather than the table being dropped outright.
type TableSummary struct {
	RowCount    int64
	Unavailable bool
	Columns     map[string]ColumnSummary
}

// Context is the immutable, per-turn bundle fed to every LLM stage. It
// is constructed once per turn and never mutated afterward.
type Context struct {
	Tables      []TableDescriptor
	Summaries   map[string]TableSummary          // keyed by physical table name
	Annotations map[string]map[string]string      // table -> column -> annotation; "" key for table-level
	Rendered    string
}

package dbcontext

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/queryloom/queryloom/internal/datastore"
	"github.com/queryloom/queryloom/internal/stageerr"
)

const (
	// cardinalityThreshold is the distinct-value ceiling below which a
	// text column is eligible for a top-k value-frequency summary.
	cardinalityThreshold = 50
	// topKDisplay is how many of those values are actually surfaced.
	topKDisplay = 10
	// tableConcurrency bounds how many tables are summarized at once.
	tableConcurrency = 8
)

// SummaryStore is the aggregate-query surface the Context Provider
// needs from the dataset store.
type SummaryStore interface {
	RowCount(ctx context.Context, table string) (int64, error)
	NullCount(ctx context.Context, table, column string) (int64, error)
	DistinctCount(ctx context.Context, table, column string) (int64, error)
	NumericStats(ctx context.Context, table, column string) (datastore.NumericStats, error)
	TopKValues(ctx context.Context, table, column string, k int) ([]datastore.ValueCount, error)
}

// Provider assembles the Database Context for one turn: a live query
// against the store layered on top of the schema file read once at
// process start.
type Provider struct {
	schema []TableDescriptor
	store  SummaryStore
	logger *slog.Logger
}

// New creates a Provider bound to a pre-loaded schema and a live store.
func New(schema []TableDescriptor, store SummaryStore) *Provider {
	return &Provider{schema: schema, store: store, logger: slog.Default()}
}

// Build assembles a fresh Context by running summary-statistics
// queries against the store for every table in the schema, concurrently
// and independently per table, then rendering the result to text. A
// single table's summary failing never aborts the whole context. Build
// fails only on an empty schema or a cancelled ctx; a missing or
// unreadable schema file is detected earlier, by LoadSchema.
func (p *Provider) Build(ctx context.Context) (*Context, error) {
	if len(p.schema) == 0 {
		return nil, stageerr.New(stageerr.Context, "schema contains no tables")
	}

	summaries := make([]TableSummary, len(p.schema))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(tableConcurrency)
	for i, table := range p.schema {
		i, table := i, table
		g.Go(func() error {
			summaries[i] = p.summarizeTable(gctx, table)
			return gctx.Err()
		})
	}
	// Errors are swallowed per-table inside summarizeTable; g.Wait only
	// propagates ctx cancellation.
	if err := g.Wait(); err != nil {
		return nil, stageerr.Wrap(stageerr.Context, "building database context", err)
	}

	summaryByTable := make(map[string]TableSummary, len(p.schema))
	annotations := make(map[string]map[string]string, len(p.schema))
	for i, table := range p.schema {
		summaryByTable[table.PhysicalName] = summaries[i]
		annotations[table.PhysicalName] = generateAnnotations(table)
	}

	c := &Context{
		Tables:      p.schema,
		Summaries:   summaryByTable,
		Annotations: annotations,
	}
	c.Rendered = Render(c)
	return c, nil
}

func (p *Provider) summarizeTable(ctx context.Context, table TableDescriptor) TableSummary {
	rowCount, err := p.store.RowCount(ctx, table.PhysicalName)
	if err != nil {
		p.logger.Warn("dbcontext: table summary unavailable", "table", table.PhysicalName, "error", err)
		return TableSummary{Unavailable: true}
	}
	summary := TableSummary{RowCount: rowCount, Columns: make(map[string]ColumnSummary, len(table.Columns))}
	if rowCount == 0 {
		return summary
	}

	for _, col := range table.Columns {
		summary.Columns[col.Name] = p.summarizeColumn(ctx, table.PhysicalName, col)
	}
	return summary
}

func (p *Provider) summarizeColumn(ctx context.Context, table string, col ColumnDescriptor) ColumnSummary {
	nullCount, err := p.store.NullCount(ctx, table, col.Name)
	if err != nil {
		p.logger.Warn("dbcontext: column summary unavailable", "table", table, "column", col.Name, "error", err)
		return ColumnSummary{}
	}
	distinctCount, err := p.store.DistinctCount(ctx, table, col.Name)
	if err != nil {
		p.logger.Warn("dbcontext: column summary unavailable", "table", table, "column", col.Name, "error", err)
		return ColumnSummary{}
	}

	cs := ColumnSummary{NullCount: nullCount, DistinctCount: distinctCount, StatsAvailable: true}

	if isNumericType(col.Type) {
		if stats, err := p.store.NumericStats(ctx, table, col.Name); err == nil {
			cs.Numeric = NumericStats{Min: stats.Min, Max: stats.Max, Avg: stats.Avg, Valid: stats.Valid}
		} else {
			p.logger.Warn("dbcontext: numeric stats unavailable", "table", table, "column", col.Name, "error", err)
		}
	}

	if isTextType(col.Type) && distinctCount <= cardinalityThreshold {
		if values, err := p.store.TopKValues(ctx, table, col.Name, topKDisplay); err == nil {
			cs.TopValues = make([]ValueCount, 0, len(values))
			for _, v := range values {
				cs.TopValues = append(cs.TopValues, ValueCount{Value: v.Value, Count: v.Count})
			}
		} else {
			p.logger.Warn("dbcontext: top values unavailable", "table", table, "column", col.Name, "error", err)
		}
	}

	return cs
}

func isNumericType(t string) bool {
	t = strings.ToUpper(t)
	for _, kw := range []string{"INT", "REAL", "FLOAT", "DOUBLE", "NUMERIC", "DECIMAL"} {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

func isTextType(t string) bool {
	t = strings.ToUpper(t)
	for _, kw := range []string{"CHAR", "TEXT", "CLOB", "ENUM"} {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

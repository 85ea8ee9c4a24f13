package dbcontext

import (
	"context"
	"errors"
	"testing"

	"github.com/queryloom/queryloom/internal/datastore"
)

// fakeStore is a hand-written stub, matching the pack's habit of
// writing small fakes rather than reaching for a mocking library.
type fakeStore struct {
	rowCounts map[string]int64
	rowErrs   map[string]error
	nulls     map[string]int64
	distincts map[string]int64
	numeric   map[string]datastore.NumericStats
	topValues map[string][]datastore.ValueCount
}

func key(table, column string) string { return table + "." + column }

func (f *fakeStore) RowCount(_ context.Context, table string) (int64, error) {
	if err, ok := f.rowErrs[table]; ok {
		return 0, err
	}
	return f.rowCounts[table], nil
}

func (f *fakeStore) NullCount(_ context.Context, table, column string) (int64, error) {
	return f.nulls[key(table, column)], nil
}

func (f *fakeStore) DistinctCount(_ context.Context, table, column string) (int64, error) {
	return f.distincts[key(table, column)], nil
}

func (f *fakeStore) NumericStats(_ context.Context, table, column string) (datastore.NumericStats, error) {
	return f.numeric[key(table, column)], nil
}

func (f *fakeStore) TopKValues(_ context.Context, table, column string, _ int) ([]datastore.ValueCount, error) {
	return f.topValues[key(table, column)], nil
}

func testSchema() []TableDescriptor {
	return []TableDescriptor{
		{
			LogicalName:  "Sale",
			PhysicalName: "sales",
			Columns: []ColumnDescriptor{
				{Name: "sale_id", Type: "INTEGER", Nullable: false},
				{Name: "amount", Type: "REAL", Nullable: false},
				{Name: "status", Type: "TEXT", Nullable: false},
			},
		},
	}
}

func TestProvider_Build_Success(t *testing.T) {
	store := &fakeStore{
		rowCounts: map[string]int64{"sales": 100},
		nulls:     map[string]int64{key("sales", "amount"): 0, key("sales", "status"): 0, key("sales", "sale_id"): 0},
		distincts: map[string]int64{key("sales", "amount"): 90, key("sales", "status"): 3, key("sales", "sale_id"): 100},
		numeric:   map[string]datastore.NumericStats{key("sales", "amount"): {Min: 1, Max: 999, Avg: 45, Valid: true}},
		topValues: map[string][]datastore.ValueCount{
			key("sales", "status"): {{Value: "paid", Count: 80}, {Value: "pending", Count: 20}},
		},
	}

	p := New(testSchema(), store)
	ctx, err := p.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	summary := ctx.Summaries["sales"]
	if summary.RowCount != 100 {
		t.Errorf("RowCount = %d, want 100", summary.RowCount)
	}
	if summary.Columns["amount"].Numeric.Avg != 45 {
		t.Errorf("avg = %v", summary.Columns["amount"].Numeric.Avg)
	}
	if len(summary.Columns["status"].TopValues) != 2 {
		t.Errorf("top values = %v", summary.Columns["status"].TopValues)
	}
	if ctx.Rendered == "" {
		t.Error("expected non-empty rendered context")
	}
}

func TestProvider_Build_TableFailureDoesNotAbortContext(t *testing.T) {
	store := &fakeStore{
		rowErrs: map[string]error{"sales": errors.New("disk error")},
	}

	p := New(testSchema(), store)
	ctx, err := p.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v, want nil (per-table failure must not abort)", err)
	}
	if !ctx.Summaries["sales"].Unavailable {
		t.Error("expected table to be marked unavailable")
	}
}

func TestProvider_Build_EmptySchemaIsFatal(t *testing.T) {
	p := New(nil, &fakeStore{})
	if _, err := p.Build(context.Background()); err == nil {
		t.Fatal("expected error for empty schema")
	}
}

func TestProvider_Build_Deterministic(t *testing.T) {
	store := &fakeStore{
		rowCounts: map[string]int64{"sales": 100},
		nulls:     map[string]int64{key("sales", "amount"): 0, key("sales", "status"): 0, key("sales", "sale_id"): 0},
		distincts: map[string]int64{key("sales", "amount"): 90, key("sales", "status"): 3, key("sales", "sale_id"): 100},
	}

	p := New(testSchema(), store)
	first, err := p.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if first.Rendered != second.Rendered {
		t.Errorf("rendered output not deterministic:\n%s\n---\n%s", first.Rendered, second.Rendered)
	}
}

package dbcontext

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSchema(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSchema_SortsAlphabeticallyByPhysicalName(t *testing.T) {
	path := writeSchema(t, `{
		"tables": [
			{"logical_name": "Product", "physical_name": "products", "columns": [
				{"name": "product_id", "type": "INTEGER", "nullable": false}
			]},
			{"logical_name": "Sale", "physical_name": "sales", "columns": [
				{"name": "sale_id", "type": "INTEGER", "nullable": false},
				{"name": "product_id", "type": "INTEGER", "nullable": true, "relation_target": "products.product_id"}
			]}
		]
	}`)

	tables, err := LoadSchema(path)
	if err != nil {
		t.Fatalf("LoadSchema() error = %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("len(tables) = %d, want 2", len(tables))
	}
	if tables[0].PhysicalName != "products" || tables[1].PhysicalName != "sales" {
		t.Errorf("tables not sorted: %v, %v", tables[0].PhysicalName, tables[1].PhysicalName)
	}
	if tables[1].Columns[1].RelationTarget != "products.product_id" {
		t.Errorf("relation target = %q", tables[1].Columns[1].RelationTarget)
	}
}

func TestLoadSchema_MissingFile(t *testing.T) {
	if _, err := LoadSchema(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing schema file")
	}
}

func TestLoadSchema_MissingPhysicalName(t *testing.T) {
	path := writeSchema(t, `{"tables": [{"logical_name": "Sale", "columns": []}]}`)
	if _, err := LoadSchema(path); err == nil {
		t.Fatal("expected error for missing physical_name")
	}
}

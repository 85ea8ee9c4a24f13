package sqlgen

import (
	"testing"

	"github.com/queryloom/queryloom/internal/dbcontext"
)

func testContext() *dbcontext.Context {
	return &dbcontext.Context{
		Tables: []dbcontext.TableDescriptor{
			{
				PhysicalName: "sales",
				Columns: []dbcontext.ColumnDescriptor{
					{Name: "id"}, {Name: "amount"}, {Name: "customer_id"},
				},
			},
			{
				PhysicalName: "customers",
				Columns: []dbcontext.ColumnDescriptor{
					{Name: "id"}, {Name: "name"},
				},
			},
		},
	}
}

func hasWarning(warnings []Warning, w Warning) bool {
	for _, got := range warnings {
		if got == w {
			return true
		}
	}
	return false
}

func TestValidate_CleanQueryHasNoWarnings(t *testing.T) {
	sql := "SELECT s.amount FROM sales s JOIN customers c ON s.customer_id = c.id"
	warnings := validate(sql, testContext())
	if len(warnings) != 0 {
		t.Errorf("validate() = %v, want none", warnings)
	}
}

func TestValidate_UnknownTable(t *testing.T) {
	sql := "SELECT * FROM products"
	warnings := validate(sql, testContext())
	if !hasWarning(warnings, WarnUnknownTable) {
		t.Errorf("validate() = %v, want unknown-table", warnings)
	}
}

func TestValidate_UnknownColumnOnQualifiedRef(t *testing.T) {
	sql := "SELECT s.nonexistent FROM sales s"
	warnings := validate(sql, testContext())
	if !hasWarning(warnings, WarnUnknownColumn) {
		t.Errorf("validate() = %v, want unknown-column", warnings)
	}
}

func TestValidate_ForbiddenKeyword(t *testing.T) {
	sql := "DELETE FROM sales"
	warnings := validate(sql, testContext())
	if !hasWarning(warnings, WarnForbiddenKeyword) {
		t.Errorf("validate() = %v, want forbidden-keyword", warnings)
	}
}

func TestValidate_UnbalancedParens(t *testing.T) {
	sql := "SELECT SUM(amount FROM sales"
	warnings := validate(sql, testContext())
	if !hasWarning(warnings, WarnUnbalancedParens) {
		t.Errorf("validate() = %v, want unbalanced-parentheses", warnings)
	}
}

func TestValidate_MissingFrom(t *testing.T) {
	sql := "SELECT amount"
	warnings := validate(sql, testContext())
	if !hasWarning(warnings, WarnMissingFrom) {
		t.Errorf("validate() = %v, want missing-from", warnings)
	}
}

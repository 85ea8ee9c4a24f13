package dbcontext

import (
	"fmt"
	"strings"
)

// Render produces the compact text block fed to every LLM stage. Tables
// are listed in c.Tables' order (already alphabetic by physical name)
// and columns in schema order, so two Contexts built from the same
// schema and summaries render byte-identical text.
func Render(c *Context) string {
	var b strings.Builder
	b.WriteString("Database Context:\n")

	for _, table := range c.Tables {
		summary := c.Summaries[table.PhysicalName]
		fmt.Fprintf(&b, "\n--- Table: %s (Model: %s) ---\n", table.PhysicalName, table.LogicalName)

		if desc := c.Annotations[table.PhysicalName][""]; desc != "" {
			fmt.Fprintf(&b, "/// %s\n", desc)
		}

		b.WriteString("Columns:\n")
		for _, col := range table.Columns {
			renderColumnLine(&b, table.PhysicalName, col, c.Annotations[table.PhysicalName][col.Name])
		}

		renderSummary(&b, summary, table.Columns)
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderColumnLine(b *strings.Builder, _ string, col ColumnDescriptor, annotation string) {
	nullability := "NOT NULL"
	if col.Nullable {
		nullability = "NULLABLE"
	}
	fmt.Fprintf(b, "  - %s (%s) %s", col.Name, col.Type, nullability)
	if col.RelationTarget != "" {
		fmt.Fprintf(b, " -> %s", col.RelationTarget)
	}
	if annotation != "" {
		fmt.Fprintf(b, " /// %s", annotation)
	}
	b.WriteString("\n")
}

func renderSummary(b *strings.Builder, summary TableSummary, columns []ColumnDescriptor) {
	b.WriteString("Summary:\n")
	if summary.Unavailable {
		b.WriteString("  unavailable\n")
		return
	}

	fmt.Fprintf(b, "  Total Rows: %d\n", summary.RowCount)
	if summary.RowCount == 0 {
		return
	}

	var nulls, distincts, numerics, topValues []string
	for _, col := range columns {
		cs, ok := summary.Columns[col.Name]
		if !ok || !cs.StatsAvailable {
			nulls = append(nulls, fmt.Sprintf("%s=unavailable", col.Name))
			continue
		}
		nulls = append(nulls, fmt.Sprintf("%s=%d", col.Name, cs.NullCount))
		distincts = append(distincts, fmt.Sprintf("%s=%d", col.Name, cs.DistinctCount))
		if cs.Numeric.Valid {
			numerics = append(numerics, fmt.Sprintf("%s(min=%.2f, max=%.2f, avg=%.2f)", col.Name, cs.Numeric.Min, cs.Numeric.Max, cs.Numeric.Avg))
		}
		if len(cs.TopValues) > 0 {
			pairs := make([]string, 0, len(cs.TopValues))
			for _, vc := range cs.TopValues {
				pairs = append(pairs, fmt.Sprintf("%s=%d", vc.Value, vc.Count))
			}
			topValues = append(topValues, fmt.Sprintf("%s: %s", col.Name, strings.Join(pairs, ", ")))
		}
	}

	fmt.Fprintf(b, "  Null Counts: %s\n", strings.Join(nulls, ", "))
	fmt.Fprintf(b, "  Distinct Counts: %s\n", strings.Join(distincts, ", "))
	if len(numerics) > 0 {
		fmt.Fprintf(b, "  Numeric Stats: %s\n", strings.Join(numerics, "; "))
	}
	if len(topValues) > 0 {
		fmt.Fprintf(b, "  Top Values: %s\n", strings.Join(topValues, "; "))
	}
}

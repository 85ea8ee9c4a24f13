package dbcontext

import "strings"

// generateAnnotations synthesizes a one-line natural-language
// description for a table and, where a relation makes it informative,
// its columns, for use when no richer annotation source is available.
// The table-level description is keyed under "".
func generateAnnotations(table TableDescriptor) map[string]string {
	out := map[string]string{"": describeTable(table)}
	for _, col := range table.Columns {
		if d := describeColumn(col); d != "" {
			out[col.Name] = d
		}
	}
	return out
}

func describeTable(table TableDescriptor) string {
	name := humanize(table.LogicalName)
	var relations []string
	for _, col := range table.Columns {
		if col.RelationTarget != "" {
			relations = append(relations, strings.SplitN(col.RelationTarget, ".", 2)[0])
		}
	}
	if len(relations) == 0 {
		return "Represents " + name + " records."
	}
	return "Represents " + name + " records, related to " + strings.Join(relations, ", ") + "."
}

func describeColumn(col ColumnDescriptor) string {
	if col.RelationTarget == "" {
		return ""
	}
	target := strings.SplitN(col.RelationTarget, ".", 2)[0]
	return "References " + humanize(target) + "."
}

// humanize turns a CamelCase or snake_case identifier into lowercase
// words, e.g. "ProductCategory" -> "product category".
func humanize(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r == '_' {
			b.WriteByte(' ')
			continue
		}
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

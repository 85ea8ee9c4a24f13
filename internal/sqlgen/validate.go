package sqlgen

import (
	"regexp"
	"strings"

	"github.com/queryloom/queryloom/internal/dbcontext"
)

var forbiddenKeywords = []string{"INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "ATTACH", "PRAGMA"}

var (
	fromJoinRe  = regexp.MustCompile(`(?i)\b(?:from|join)\s+([a-zA-Z_][a-zA-Z0-9_]*)`)
	qualifiedRe = regexp.MustCompile(`\b([a-zA-Z_][a-zA-Z0-9_]*)\.([a-zA-Z_][a-zA-Z0-9_]*)\b`)
)

// validate runs the lexical self-validation pass shared by the
// Synthesizer and the Debugger: forbidden keywords, unknown table or
// column references, unbalanced parentheses, and a missing FROM clause.
// More than one statement is not checked here; generate rejects that
// through isSingleStatement.
func validate(sql string, dbCtx *dbcontext.Context) []Warning {
	var warnings []Warning

	upper := strings.ToUpper(sql)
	for _, kw := range forbiddenKeywords {
		if containsKeyword(upper, kw) {
			warnings = append(warnings, WarnForbiddenKeyword)
			break
		}
	}

	if strings.Count(sql, "(") != strings.Count(sql, ")") {
		warnings = append(warnings, WarnUnbalancedParens)
	}

	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(sql)), "SELECT") && !isAggregateOnlySelect(sql) {
		if !containsKeyword(upper, "FROM") {
			warnings = append(warnings, WarnMissingFrom)
		}
	}

	tables := knownTables(dbCtx)
	referenced := referencedTables(sql)
	unknownTable := false
	for t := range referenced {
		if !tables[t] {
			unknownTable = true
			break
		}
	}
	if unknownTable {
		warnings = append(warnings, WarnUnknownTable)
	}

	if hasUnknownColumn(sql, dbCtx, tables, referenced) {
		warnings = append(warnings, WarnUnknownColumn)
	}

	return warnings
}

func containsKeyword(upperSQL, keyword string) bool {
	re := regexp.MustCompile(`\b` + keyword + `\b`)
	return re.MatchString(upperSQL)
}

// isAggregateOnlySelect recognizes the handful of schema-free
// aggregate selects (e.g. "SELECT 1", "SELECT sqlite_version()") that
// legitimately omit FROM.
func isAggregateOnlySelect(sql string) bool {
	return !strings.Contains(strings.ToUpper(sql), "FROM") &&
		regexp.MustCompile(`(?i)^select\s+[^,]+\(`).MatchString(strings.TrimSpace(sql))
}

func knownTables(dbCtx *dbcontext.Context) map[string]bool {
	out := make(map[string]bool)
	if dbCtx == nil {
		return out
	}
	for _, t := range dbCtx.Tables {
		out[strings.ToLower(t.PhysicalName)] = true
	}
	return out
}

// referencedTables extracts identifiers following FROM or JOIN,
// resolving a trailing alias token by discarding it (SQLite permits
// "FROM sales s" with no AS).
func referencedTables(sql string) map[string]bool {
	out := make(map[string]bool)
	for _, m := range fromJoinRe.FindAllStringSubmatch(sql, -1) {
		out[strings.ToLower(m[1])] = true
	}
	return out
}

// hasUnknownColumn checks qualified `t.c` references: the table (or
// alias) must resolve to a known table and the column must exist on it.
// Aliases are taken from "FROM t a" / "JOIN t a" clauses. A prefix that
// does not resolve to a known table is skipped: when it is an alias of
// an unknown table in FROM/JOIN, validate has already reported
// unknown-table, but a prefix that FROM/JOIN never introduces is not
// reported by either check. This function only flags a known table
// with a column that doesn't belong to it.
func hasUnknownColumn(sql string, dbCtx *dbcontext.Context, tables map[string]bool, referenced map[string]bool) bool {
	if dbCtx == nil {
		return false
	}
	columnsByTable := make(map[string]map[string]bool, len(dbCtx.Tables))
	for _, t := range dbCtx.Tables {
		cols := make(map[string]bool, len(t.Columns))
		for _, c := range t.Columns {
			cols[strings.ToLower(c.Name)] = true
		}
		columnsByTable[strings.ToLower(t.PhysicalName)] = cols
	}

	aliases := aliasesFor(sql)

	for _, m := range qualifiedRe.FindAllStringSubmatch(sql, -1) {
		prefix, col := strings.ToLower(m[1]), strings.ToLower(m[2])

		table := prefix
		if resolved, ok := aliases[prefix]; ok {
			table = resolved
		}
		if !tables[table] {
			// Unresolvable prefix: not a column check; see above.
			continue
		}
		if cols, ok := columnsByTable[table]; ok && !cols[col] {
			return true
		}
	}
	return false
}

var aliasRe = regexp.MustCompile(`(?i)\b(?:from|join)\s+([a-zA-Z_][a-zA-Z0-9_]*)\s+(?:as\s+)?([a-zA-Z_][a-zA-Z0-9_]*)\b`)

func aliasesFor(sql string) map[string]string {
	out := make(map[string]string)
	for _, m := range aliasRe.FindAllStringSubmatch(sql, -1) {
		table, alias := strings.ToLower(m[1]), strings.ToLower(m[2])
		if sqlKeyword(alias) {
			continue
		}
		out[alias] = table
	}
	return out
}

func sqlKeyword(s string) bool {
	switch strings.ToUpper(s) {
	case "WHERE", "ON", "INNER", "OUTER", "LEFT", "RIGHT", "FULL", "CROSS", "JOIN", "GROUP", "ORDER", "LIMIT":
		return true
	}
	return false
}

package sqlgen

import (
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?is)```(?:sql)?\\s*(.*?)\\s*```")

// extractSQL strips a surrounding markdown code fence if present,
// otherwise treats the whole response as the statement, trimming a
// single leading explanatory line when the response doesn't open with
// a SQL keyword.
func extractSQL(raw string) string {
	if m := fenceRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}

	lines := strings.Split(strings.TrimSpace(raw), "\n")
	if len(lines) > 0 && !startsWithSQLKeyword(lines[0]) {
		lines = lines[1:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

var sqlStartKeywords = []string{"select", "with"}

func startsWithSQLKeyword(line string) bool {
	upper := strings.ToUpper(strings.TrimSpace(line))
	for _, kw := range sqlStartKeywords {
		if strings.HasPrefix(upper, strings.ToUpper(kw)) {
			return true
		}
	}
	return false
}

// isSingleStatement reports whether sql contains at most one
// semicolon, and if present, only as the final non-whitespace
// character — a semicolon anywhere else means more than one statement
// was generated, which is rejected outright.
func isSingleStatement(sql string) bool {
	trimmed := strings.TrimSpace(sql)
	idx := strings.Index(trimmed, ";")
	if idx == -1 {
		return true
	}
	return idx == len(trimmed)-1
}

// Package validator checks a plan's feasibility against a database
// context before any SQL is synthesized from it. It is the
// authoritative gate against hallucinated tables or columns: the
// Synthesizer self-validates too, but letting an infeasible plan reach
// it wastes an LLM round-trip.
package validator

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/queryloom/queryloom/internal/dbcontext"
)

// Verdict is a tagged outcome of validation.
type Verdict struct {
	Feasible   bool
	Infeasible bool
	// Plan is the (possibly substituted) plan. Set for both Feasible
	// and a revised verdict.
	Plan []string
	// Rationale explains a revision or an infeasibility.
	Rationale string
}

// Revised reports whether v is a "revised" verdict: feasible to
// proceed, but only after a near-match substitution was applied.
func (v Verdict) Revised() bool {
	return v.Feasible && v.Rationale != ""
}

// maxNearMatchDistance bounds how many edits a candidate identifier may
// differ from a known one before it stops counting as a near-match and
// the plan is deemed infeasible instead of revised.
const maxNearMatchDistance = 2

// Validator checks plan-referenced identifiers against context.
type Validator struct {
	logger *slog.Logger
}

// New creates a Validator.
func New() *Validator {
	return &Validator{logger: slog.Default()}
}

// Validate checks every table/column-shaped identifier mentioned in
// plan's steps against dbCtx. Unknown identifiers with a near-match in
// context are substituted and the verdict is "revised"; unknown
// identifiers with no near-match make the plan "infeasible".
func (v *Validator) Validate(_ context.Context, utterance string, plan []string, dbCtx *dbcontext.Context) Verdict {
	known := knownIdentifiers(dbCtx)

	revised := make([]string, len(plan))
	var substitutions []string
	var unresolved []string

	for i, step := range plan {
		newStep := step
		for _, token := range identifierTokens(step) {
			if known[strings.ToLower(token)] {
				continue
			}
			match, ok := nearMatch(token, known)
			if !ok {
				unresolved = append(unresolved, token)
				continue
			}
			newStep = replaceToken(newStep, token, match)
			substitutions = append(substitutions, fmt.Sprintf("%q -> %q", token, match))
		}
		revised[i] = newStep
	}

	if len(unresolved) > 0 {
		return Verdict{
			Infeasible: true,
			Rationale:  fmt.Sprintf("plan references unknown identifiers with no close match in context: %s", strings.Join(dedup(unresolved), ", ")),
		}
	}

	if len(substitutions) > 0 {
		v.logger.Info("validator: substituted near-match identifiers", "utterance", utterance, "substitutions", substitutions)
		return Verdict{
			Feasible:  true,
			Plan:      revised,
			Rationale: fmt.Sprintf("substituted near-match identifiers: %s", strings.Join(substitutions, "; ")),
		}
	}

	return Verdict{Feasible: true, Plan: plan}
}

// dottedRe matches table.column references.
var dottedRe = regexp.MustCompile(`\b[a-zA-Z][a-zA-Z0-9_]*\.[a-zA-Z][a-zA-Z0-9_]*\b`)

// wordRe matches a single bare word.
var wordRe = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9_]*`)

// schemaNouns are the words a plan step uses to introduce a bare
// identifier ("the products table", "the amount column"). A bare word
// only counts as a candidate identifier when it immediately precedes
// one of these; this keeps ordinary prose ("within the requested range") out
// of the near-match search entirely, rather than trying to deny-list
// every English word that isn't a schema name.
var schemaNouns = map[string]bool{
	"table": true, "tables": true, "column": true, "columns": true,
	"field": true, "fields": true,
}

// identifierTokens extracts the tokens in step that actually look like
// schema references: dotted table.column pairs, snake_case words, and
// bare words immediately preceding a schema noun.
func identifierTokens(step string) []string {
	var out []string
	for _, m := range dottedRe.FindAllString(step, -1) {
		out = append(out, strings.SplitN(m, ".", 2)...)
	}

	words := wordRe.FindAllString(dottedRe.ReplaceAllString(step, " "), -1)
	for i, w := range words {
		if strings.Contains(w, "_") {
			out = append(out, w)
			continue
		}
		if i+1 < len(words) && schemaNouns[strings.ToLower(words[i+1])] {
			out = append(out, w)
		}
	}
	return out
}

func knownIdentifiers(dbCtx *dbcontext.Context) map[string]bool {
	known := make(map[string]bool)
	if dbCtx == nil {
		return known
	}
	for _, t := range dbCtx.Tables {
		known[strings.ToLower(t.PhysicalName)] = true
		known[strings.ToLower(t.LogicalName)] = true
		for _, c := range t.Columns {
			known[strings.ToLower(c.Name)] = true
		}
	}
	return known
}

// nearMatch finds the closest known identifier to token within
// maxNearMatchDistance edits, preferring the closest (and, on ties, the
// lexicographically first for determinism).
func nearMatch(token string, known map[string]bool) (string, bool) {
	lower := strings.ToLower(token)
	best := ""
	bestDist := maxNearMatchDistance + 1
	for candidate := range known {
		d := levenshtein(lower, candidate)
		if d < bestDist || (d == bestDist && candidate < best) {
			bestDist = d
			best = candidate
		}
	}
	if bestDist > maxNearMatchDistance {
		return "", false
	}
	return best, true
}

func replaceToken(step, old, new string) string {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(old) + `\b`)
	return re.ReplaceAllString(step, new)
}

func dedup(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// levenshtein computes the classic edit distance between a and b.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min3(del, ins, sub)
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

package sqlgen

import (
	"fmt"
	"strings"

	"github.com/queryloom/queryloom/internal/dbcontext"
)

const synthesisSystemPrompt = `You are a SQL generator for a read-only analytics database. Given a conceptual plan and a database context, write a single SQL statement implementing the plan.

Rules:
- Output exactly one SQL statement, and nothing else (no markdown, no commentary).
- Only reference tables and columns present in the database context.
- Never use INSERT, UPDATE, DELETE, DROP, ALTER, ATTACH, or PRAGMA. This is a read-only surface.
- Prefer explicit table aliases for any query that joins more than one table.`

const refinementSystemPrompt = `You previously produced a SQL statement that failed validation. Produce a corrected single SQL statement addressing the listed problems. Output exactly one SQL statement, and nothing else.`

const debugSystemPrompt = `You are a SQL debugger for a read-only analytics database. Given a failed SQL statement and the database engine's error message, produce a single corrected SQL statement. Output exactly one SQL statement, and nothing else.`

func buildSynthesisPrompt(plan []string, dbCtx *dbcontext.Context) string {
	var sb strings.Builder
	sb.WriteString("Conceptual plan:\n")
	for i, step := range plan {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
	}
	sb.WriteString("\n")
	sb.WriteString(renderedContext(dbCtx))
	return sb.String()
}

func buildRefinementPrompt(sql string, warnings []Warning, plan []string, dbCtx *dbcontext.Context) string {
	var sb strings.Builder
	sb.WriteString("Previous SQL:\n")
	sb.WriteString(sql)
	sb.WriteString("\n\nProblems found:\n")
	for _, w := range warnings {
		fmt.Fprintf(&sb, "- %s\n", w)
	}
	sb.WriteString("\nConceptual plan:\n")
	for i, step := range plan {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
	}
	sb.WriteString("\n")
	sb.WriteString(renderedContext(dbCtx))
	return sb.String()
}

func buildDebugPrompt(utterance, sql, engineError string, plan []string, dbCtx *dbcontext.Context) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Original question: %s\n\n", utterance)
	sb.WriteString("Failed SQL:\n")
	sb.WriteString(sql)
	sb.WriteString("\n\nEngine error:\n")
	sb.WriteString(engineError)
	if len(plan) > 0 {
		sb.WriteString("\n\nOriginal plan:\n")
		for i, step := range plan {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
		}
	}
	sb.WriteString("\n\n")
	sb.WriteString(renderedContext(dbCtx))
	return sb.String()
}

func renderedContext(dbCtx *dbcontext.Context) string {
	if dbCtx == nil {
		return ""
	}
	return dbCtx.Rendered
}

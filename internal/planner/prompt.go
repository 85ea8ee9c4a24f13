package planner

import (
	"fmt"
	"strings"

	"github.com/queryloom/queryloom/internal/dbcontext"
)

const planSystemPrompt = `You are a data-analysis planner. Given a user's question and a database context, produce a numbered list of 3 to 10 conceptual steps describing how to answer it.

Rules:
- Every table or column name you mention must appear in the database context.
- Do not write SQL. Describe the approach in plain prose.
- Number each step.`

const insightsSystemPrompt = `You are a data-analysis planner. Given a database context, propose 5 to 7 interesting analytical questions a user might ask about this data.

Rules:
- Each question must be self-contained and answerable by a single SQL query against the given schema.
- Each question must be 30 words or fewer.
- List one question per line.`

func buildPlanPrompt(utterance string, dbCtx *dbcontext.Context) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Question: %s\n\n%s\n", utterance, renderedContext(dbCtx))
	return sb.String()
}

func buildInsightsPrompt(utterance string, dbCtx *dbcontext.Context) string {
	var sb strings.Builder
	if utterance != "" {
		fmt.Fprintf(&sb, "User request: %s\n\n", utterance)
	}
	sb.WriteString(renderedContext(dbCtx))
	return sb.String()
}

func renderedContext(dbCtx *dbcontext.Context) string {
	if dbCtx == nil {
		return ""
	}
	return dbCtx.Rendered
}

package intent

import (
	"fmt"
	"strings"

	"github.com/queryloom/queryloom/internal/dbcontext"
)

const classificationSystemPrompt = `You are an intent classifier for a conversational data-analysis tool. Read the user's question and answer with exactly one of these three tokens, and nothing else:

specific - the user wants a concrete, answerable data question (a count, a list, a specific value).
exploratory_analytical - the user wants suggested analyses or insights, without naming a specific question.
exploratory_descriptive - the user wants an overview of what data is available, not an analysis.

Answer with exactly one token: specific, exploratory_analytical, or exploratory_descriptive.`

// buildClassificationPrompt renders the user-turn prompt for the
// classification call, including a condensed view of the available
// tables so the model can judge "specific" against real column names.
func buildClassificationPrompt(utterance string, dbCtx *dbcontext.Context) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Question: %s\n\n", utterance)

	if dbCtx != nil && len(dbCtx.Tables) > 0 {
		sb.WriteString("Available tables: ")
		names := make([]string, 0, len(dbCtx.Tables))
		for _, t := range dbCtx.Tables {
			names = append(names, t.PhysicalName)
		}
		sb.WriteString(strings.Join(names, ", "))
		sb.WriteString("\n\n")
	}

	sb.WriteString("Respond with exactly one token.")
	return sb.String()
}

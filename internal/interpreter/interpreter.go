// Package interpreter summarizes result rows in a single natural
// language paragraph, grounded in the utterance that produced them.
package interpreter

import (
	"context"
	"fmt"
	"strings"

	"github.com/queryloom/queryloom/internal/datastore"
	"github.com/queryloom/queryloom/internal/llmgw"
)

// maxCitedValues bounds how many concrete values the interpretation
// may cite.
const maxCitedValues = 5

// maxWords is the interpretation's upper bound.
const maxWords = 500

// Interpreter turns query results into one grounded paragraph.
type Interpreter struct {
	gateway *llmgw.Gateway
}

// New creates an Interpreter bound to the shared LLM Gateway.
func New(gateway *llmgw.Gateway) *Interpreter {
	return &Interpreter{gateway: gateway}
}

// Interpret produces a paragraph answering utterance from result,
// noting explicitly if trueCount exceeds the rows actually present
// (truncation).
func (in *Interpreter) Interpret(ctx context.Context, sessionID, utterance string, result *datastore.Result, trueCount int) (string, error) {
	prompt := buildInterpretationPrompt(utterance, result, trueCount)

	text, err := in.gateway.Complete(ctx, llmgw.Request{
		SessionID: sessionID,
		System:    interpretationSystemPrompt,
		Messages:  []llmgw.Message{{Role: llmgw.RoleUser, Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

var interpretationSystemPrompt = fmt.Sprintf(`You interpret SQL query results for a non-technical user. Given the original question and the result rows, write a single paragraph that:
1. Answers the question directly in the first sentence.
2. Cites at most %d concrete values drawn from the rows.
3. If the rows were truncated from a larger result set, says so explicitly.
Keep the paragraph under %d words. Do not mention SQL or database internals.`, maxCitedValues, maxWords)

func buildInterpretationPrompt(utterance string, result *datastore.Result, trueCount int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Question: %s\n\n", utterance)

	if result == nil || len(result.Rows) == 0 {
		sb.WriteString("The query returned no rows.")
		return sb.String()
	}

	fmt.Fprintf(&sb, "Columns: %s\n", strings.Join(result.Columns, ", "))
	sb.WriteString("Rows:\n")
	for _, row := range result.Rows {
		var parts []string
		for _, cell := range row {
			parts = append(parts, fmt.Sprintf("%s=%v", cell.Name, cell.Value))
		}
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString("\n")
	}

	if trueCount > len(result.Rows) {
		fmt.Fprintf(&sb, "\nNote: these are the first %d of %d total rows; the result was truncated.\n", len(result.Rows), trueCount)
	}

	return sb.String()
}

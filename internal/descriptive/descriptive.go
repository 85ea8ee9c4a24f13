// Package descriptive synthesizes a dataset overview directly from
// context, without issuing any SQL.
package descriptive

import (
	"context"

	"github.com/queryloom/queryloom/internal/dbcontext"
	"github.com/queryloom/queryloom/internal/llmgw"
)

const descriptiveSystemPrompt = `You describe a dataset to a non-technical user, given only its schema and summary statistics (no query results). Write 3 to 6 short paragraphs covering:
1. What tables exist.
2. What each table represents, inferred from its name and columns.
3. Approximate sizes (row counts).
4. Any notable columns: high cardinality, high null rate, or columns that reference other tables.
Do not mention SQL or propose queries.`

// Responder produces a context-only dataset overview.
type Responder struct {
	gateway *llmgw.Gateway
}

// New creates a Responder bound to the shared LLM Gateway.
func New(gateway *llmgw.Gateway) *Responder {
	return &Responder{gateway: gateway}
}

// Describe renders dbCtx's text block and asks the LLM to turn it into
// a dataset overview. No SQL is issued.
func (r *Responder) Describe(ctx context.Context, sessionID string, dbCtx *dbcontext.Context) (string, error) {
	text, err := r.gateway.Complete(ctx, llmgw.Request{
		SessionID: sessionID,
		System:    descriptiveSystemPrompt,
		Messages:  []llmgw.Message{{Role: llmgw.RoleUser, Content: dbCtx.Rendered}},
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

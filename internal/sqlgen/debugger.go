package sqlgen

import (
	"context"
	"log/slog"

	"github.com/queryloom/queryloom/internal/dbcontext"
	"github.com/queryloom/queryloom/internal/llmgw"
)

// Debugger proposes a single corrected SQL statement after an
// execution failure. It runs the same validation pass as the
// Synthesizer but never refines: an invalid suggestion is simply
// discarded.
type Debugger struct {
	gateway *llmgw.Gateway
	logger  *slog.Logger
}

// NewDebugger creates a Debugger bound to the shared LLM Gateway.
func NewDebugger(gateway *llmgw.Gateway) *Debugger {
	return &Debugger{gateway: gateway, logger: slog.Default()}
}

// Debug asks the LLM for a corrected statement given the failed SQL
// and the engine's error text. It returns ok=false (never a text) if
// the LLM's suggestion does not pass validation.
func (d *Debugger) Debug(ctx context.Context, sessionID, utterance, failedSQL, engineError string, plan []string, dbCtx *dbcontext.Context) (sql string, ok bool) {
	raw, err := d.gateway.Complete(ctx, llmgw.Request{
		SessionID: sessionID,
		System:    debugSystemPrompt,
		Messages:  []llmgw.Message{{Role: llmgw.RoleUser, Content: buildDebugPrompt(utterance, failedSQL, engineError, plan, dbCtx)}},
		SQLShaped: true,
	})
	if err != nil {
		d.logger.Warn("sqlgen: debugger LLM call failed", "error", err)
		return "", false
	}

	candidate := extractSQL(raw)
	if candidate == "" || !isSingleStatement(candidate) {
		d.logger.Warn("sqlgen: debugger produced unparseable suggestion")
		return "", false
	}

	if hasHardWarning(validate(candidate, dbCtx)) {
		d.logger.Warn("sqlgen: debugger suggestion failed validation, discarding")
		return "", false
	}

	return candidate, true
}

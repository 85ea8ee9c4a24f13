package sqlgen

import (
	"context"
	"log/slog"

	"github.com/queryloom/queryloom/internal/dbcontext"
	"github.com/queryloom/queryloom/internal/llmgw"
	"github.com/queryloom/queryloom/internal/stageerr"
)

// Synthesizer translates a feasible plan into a single SQL statement,
// self-validates it against context, and performs at most one
// refinement round-trip if a hard warning survives the first pass.
type Synthesizer struct {
	gateway *llmgw.Gateway
	logger  *slog.Logger
}

// New creates a Synthesizer bound to the shared LLM Gateway.
func New(gateway *llmgw.Gateway) *Synthesizer {
	return &Synthesizer{gateway: gateway, logger: slog.Default()}
}

// Result is the Synthesizer's output: the final SQL text and any
// warnings still present after the (at most one) refinement attempt.
type Result struct {
	SQL      string
	Warnings []Warning
}

// Synthesize generates SQL for plan, validates it, and — only if a
// hard warning (an unknown table or column) survives — makes one
// refinement call before returning whatever it has.
func (s *Synthesizer) Synthesize(ctx context.Context, sessionID string, plan []string, dbCtx *dbcontext.Context) (Result, error) {
	sql, err := s.generate(ctx, sessionID, synthesisSystemPrompt, buildSynthesisPrompt(plan, dbCtx))
	if err != nil {
		return Result{}, err
	}

	warnings := validate(sql, dbCtx)
	if !hasHardWarning(warnings) {
		return Result{SQL: sql, Warnings: warnings}, nil
	}

	s.logger.Info("sqlgen: refining synthesis output", "warnings", warnings)
	refined, err := s.generate(ctx, sessionID, refinementSystemPrompt, buildRefinementPrompt(sql, warnings, plan, dbCtx))
	if err != nil {
		// The first pass already produced a parseable (if flawed)
		// statement; surface it with its warnings rather than fail
		// the turn outright on a refinement-call transport error.
		s.logger.Warn("sqlgen: refinement call failed, returning first-pass SQL", "error", err)
		return Result{SQL: sql, Warnings: warnings}, nil
	}

	refinedWarnings := validate(refined, dbCtx)
	return Result{SQL: refined, Warnings: refinedWarnings}, nil
}

func (s *Synthesizer) generate(ctx context.Context, sessionID, systemPrompt, userPrompt string) (string, error) {
	raw, err := s.gateway.Complete(ctx, llmgw.Request{
		SessionID: sessionID,
		System:    systemPrompt,
		Messages:  []llmgw.Message{{Role: llmgw.RoleUser, Content: userPrompt}},
		SQLShaped: true,
	})
	if err != nil {
		return "", err
	}

	sql := extractSQL(raw)
	if sql == "" {
		return "", stageerr.New(stageerr.SQLSynth, "LLM produced no SQL text")
	}
	if !isSingleStatement(sql) {
		return "", stageerr.New(stageerr.SQLSynth, "LLM produced more than one SQL statement")
	}
	return sql, nil
}

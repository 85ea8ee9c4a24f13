// Package planner produces either a numbered conceptual plan for a
// specific question or a list of suggested analyses for an
// exploratory_analytical one.
package planner

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/queryloom/queryloom/internal/dbcontext"
	"github.com/queryloom/queryloom/internal/llmgw"
	"github.com/queryloom/queryloom/internal/stageerr"
)

// Planner turns a dbcontext-grounded utterance into either a
// conceptual plan or a list of analytical suggestions.
type Planner struct {
	gateway *llmgw.Gateway
	logger  *slog.Logger
}

// New creates a Planner bound to the shared LLM Gateway.
func New(gateway *llmgw.Gateway) *Planner {
	return &Planner{gateway: gateway, logger: slog.Default()}
}

// Plan asks the LLM for a numbered list of 3-10 conceptual steps for a
// specific-intent utterance, referencing names present in dbCtx and
// containing no SQL. The parsed steps are returned as given: their
// count and content are not checked here.
func (p *Planner) Plan(ctx context.Context, sessionID, utterance string, dbCtx *dbcontext.Context) ([]string, error) {
	prompt := buildPlanPrompt(utterance, dbCtx)

	raw, err := p.gateway.Complete(ctx, llmgw.Request{
		SessionID: sessionID,
		System:    planSystemPrompt,
		Messages:  []llmgw.Message{{Role: llmgw.RoleUser, Content: prompt}},
	})
	if err != nil {
		if se, ok := stageerr.As(err); ok && se.Kind == stageerr.LLMEmpty {
			return nil, stageerr.Wrap(stageerr.Plan, "planner returned no steps", err)
		}
		return nil, err
	}

	steps := parseLines(raw)
	if len(steps) == 0 {
		return nil, stageerr.New(stageerr.Plan, "planner returned no steps")
	}
	return steps, nil
}

// Insights asks the LLM for 5-7 self-contained analytical questions for
// an exploratory_analytical utterance. Every non-empty parsed line is
// returned; the number of questions is not checked.
func (p *Planner) Insights(ctx context.Context, sessionID, utterance string, dbCtx *dbcontext.Context) ([]string, error) {
	prompt := buildInsightsPrompt(utterance, dbCtx)

	raw, err := p.gateway.Complete(ctx, llmgw.Request{
		SessionID: sessionID,
		System:    insightsSystemPrompt,
		Messages:  []llmgw.Message{{Role: llmgw.RoleUser, Content: prompt}},
	})
	if err != nil {
		if se, ok := stageerr.As(err); ok && se.Kind == stageerr.LLMEmpty {
			return nil, stageerr.Wrap(stageerr.Plan, "planner returned no suggestions", err)
		}
		return nil, err
	}

	suggestions := parseLines(raw)
	if len(suggestions) == 0 {
		return nil, stageerr.New(stageerr.Plan, "planner returned no suggestions")
	}
	return suggestions, nil
}

var enumerationPrefix = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)

// parseLines splits an LLM response into non-empty lines and strips
// leading enumeration markers ("1.", "2)", "-", "*"), tolerant of
// whatever numbering style the model chose.
func parseLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(enumerationPrefix.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

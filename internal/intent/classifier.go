// Package intent labels a user utterance as specific,
// exploratory_analytical, or exploratory_descriptive.
package intent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/queryloom/queryloom/internal/dbcontext"
	"github.com/queryloom/queryloom/internal/llmgw"
)

// Label is one of the three intents.
type Label string

const (
	Specific               Label = "specific"
	ExploratoryAnalytical  Label = "exploratory_analytical"
	ExploratoryDescriptive Label = "exploratory_descriptive"
)

// lowConfidenceThreshold is the cutoff below which the Orchestrator
// must default to Specific rather than trust a shaky classification.
const lowConfidenceThreshold = 0.5

// fallbackConfidence is fixed, not computed, since the keyword rules
// below have no real notion of confidence to report.
const fallbackConfidence = 0.4

// Result is a classifier verdict.
type Result struct {
	Label      Label
	Confidence float64
}

// LowConfidence reports whether r's confidence is below the threshold
// the Orchestrator uses to force a default to Specific.
func (r Result) LowConfidence() bool {
	return r.Confidence < lowConfidenceThreshold
}

// Classifier labels utterances via a single closed-label LLM call, with
// a keyword-rule fallback on LLM or parse failure.
type Classifier struct {
	gateway *llmgw.Gateway
	logger  *slog.Logger
}

// New creates a Classifier bound to the shared LLM Gateway.
func New(gateway *llmgw.Gateway) *Classifier {
	return &Classifier{gateway: gateway, logger: slog.Default()}
}

// Classify labels utterance given the current turn's database context.
func (c *Classifier) Classify(ctx context.Context, sessionID, utterance string, dbCtx *dbcontext.Context) Result {
	label, ok := c.classifyViaLLM(ctx, sessionID, utterance, dbCtx)
	if ok {
		return Result{Label: label, Confidence: 1.0}
	}

	c.logger.Warn("intent: falling back to keyword rules", "utterance", utterance)
	return Result{Label: classifyByKeywords(utterance, dbCtx), Confidence: fallbackConfidence}
}

func (c *Classifier) classifyViaLLM(ctx context.Context, sessionID, utterance string, dbCtx *dbcontext.Context) (Label, bool) {
	prompt := buildClassificationPrompt(utterance, dbCtx)

	raw, err := c.gateway.Complete(ctx, llmgw.Request{
		SessionID: sessionID,
		System:    classificationSystemPrompt,
		Messages:  []llmgw.Message{{Role: llmgw.RoleUser, Content: prompt}},
	})
	if err != nil {
		c.logger.Warn("intent: classification LLM call failed", "error", err)
		return "", false
	}

	label, ok := parseLabel(raw)
	return label, ok
}

func parseLabel(raw string) (Label, bool) {
	token := strings.ToLower(strings.TrimSpace(raw))
	switch Label(token) {
	case Specific, ExploratoryAnalytical, ExploratoryDescriptive:
		return Label(token), true
	default:
		return "", false
	}
}

// classifyByKeywords is the keyword-rule fallback used when the LLM
// call fails or returns an unparseable label.
func classifyByKeywords(utterance string, dbCtx *dbcontext.Context) Label {
	lower := strings.ToLower(utterance)

	if containsAny(lower, "how many", "list", "what is the") && mentionsSchemaColumn(lower, dbCtx) {
		return Specific
	}
	if containsAny(lower, "explore", "insights", "suggest", "interesting") {
		return ExploratoryAnalytical
	}
	if containsAny(lower, "describe", "overview", "what's in", "whats in") {
		return ExploratoryDescriptive
	}
	return Specific
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func mentionsSchemaColumn(lower string, dbCtx *dbcontext.Context) bool {
	if dbCtx == nil {
		return false
	}
	for _, table := range dbCtx.Tables {
		for _, col := range table.Columns {
			if strings.Contains(lower, strings.ToLower(col.Name)) {
				return true
			}
		}
	}
	return false
}

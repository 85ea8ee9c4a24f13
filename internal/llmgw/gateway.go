package llmgw

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/queryloom/queryloom/internal/stageerr"
)

const (
	maxAttempts    = 3
	totalBudget    = 30 * time.Second
	perCallTimeout = 60 * time.Second
	initialBackoff = 500 * time.Millisecond
)

// TransientError marks a Provider failure as retryable (e.g. a
// transport blip). Non-transient errors, including QuotaError (which
// AnthropicProvider returns for HTTP 429), fail the call immediately.
type TransientError struct{ Err error }

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// QuotaError marks a Provider failure as a quota/billing rejection.
type QuotaError struct{ Err error }

func (e *QuotaError) Error() string { return e.Err.Error() }
func (e *QuotaError) Unwrap() error { return e.Err }

// Gateway is the single choke-point for LLM text completions. It owns
// retry with exponential backoff, a hard per-call timeout, optional
// per-session conversation memory, and fence-stripping for SQL-shaped
// output. One Gateway is shared by every pipeline stage.
type Gateway struct {
	provider Provider
	memory   *memory
	sem      *semaphore.Weighted
	logger   *slog.Logger
}

// New creates a Gateway. maxInFlight bounds concurrent in-flight calls
// to the provider so a burst of requests can't exhaust its rate limit;
// 0 means unbounded.
func New(provider Provider, maxInFlight int64) *Gateway {
	var sem *semaphore.Weighted
	if maxInFlight > 0 {
		sem = semaphore.NewWeighted(maxInFlight)
	}
	return &Gateway{
		provider: provider,
		memory:   newMemory(),
		sem:      sem,
		logger:   slog.Default(),
	}
}

// Complete runs a single text completion, with retry, a timeout, and
// per-session conversation memory when req.SessionID is set.
func (g *Gateway) Complete(ctx context.Context, req Request) (string, error) {
	if g.sem != nil {
		if err := g.sem.Acquire(ctx, 1); err != nil {
			return "", stageerr.Wrap(stageerr.LLMTimeout, "waiting for LLM call slot", err)
		}
		defer g.sem.Release(1)
	}

	messages := append(g.memory.history(req.SessionID), req.Messages...)

	budgetCtx, cancel := context.WithTimeout(ctx, totalBudget)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		text, err := g.callOnce(budgetCtx, req.System, messages)
		if err == nil {
			if req.SQLShaped {
				text = stripFences(text)
			}
			if strings.TrimSpace(text) == "" {
				return "", stageerr.New(stageerr.LLMEmpty, "provider returned empty completion")
			}
			g.memory.append(req.SessionID, req.Messages...)
			g.memory.append(req.SessionID, Message{Role: RoleAssistant, Content: text})
			return text, nil
		}

		lastErr = err
		if !isTransient(err) {
			return "", classify(err)
		}

		if attempt < maxAttempts-1 {
			backoff := time.Duration(float64(initialBackoff) * math.Pow(2, float64(attempt)))
			g.logger.Warn("llmgw: transient failure, retrying", "attempt", attempt+1, "backoff", backoff, "error", err)
			select {
			case <-budgetCtx.Done():
				return "", stageerr.Wrap(stageerr.LLMTimeout, "retry budget exhausted", budgetCtx.Err())
			case <-time.After(backoff):
			}
		}
	}

	return "", classify(fmt.Errorf("exhausted %d attempts: %w", maxAttempts, lastErr))
}

func (g *Gateway) callOnce(ctx context.Context, system string, messages []Message) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, perCallTimeout)
	defer cancel()

	text, err := g.provider.Complete(callCtx, system, messages)
	if err != nil {
		if callCtx.Err() != nil && ctx.Err() == nil {
			return "", fmt.Errorf("llm call timed out: %w", callCtx.Err())
		}
		return "", err
	}
	return text, nil
}

func isTransient(err error) bool {
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func classify(err error) *stageerr.Error {
	var qe *QuotaError
	if errors.As(err, &qe) {
		return stageerr.Wrap(stageerr.LLMQuota, "provider rejected request on quota grounds", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return stageerr.Wrap(stageerr.LLMTimeout, "llm call exceeded its deadline", err)
	}
	var se *stageerr.Error
	if errors.As(err, &se) {
		return se
	}
	return stageerr.Wrap(stageerr.LLMTransport, "llm provider call failed", err)
}

// DropSession discards any conversation memory held for sessionID.
// Called by the session store's eviction sweep and on execute.
func (g *Gateway) DropSession(sessionID string) {
	g.memory.drop(sessionID)
}

// stripFences removes a leading/trailing ```sql or ``` markdown fence
// from an LLM response, mirroring the fence-stripping heuristic in
// internal/reranking/reranker.go's parseScore.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = s[3:]
	if nl := strings.IndexByte(s, '\n'); nl != -1 {
		firstLine := strings.TrimSpace(s[:nl])
		if firstLine == "" || strings.EqualFold(firstLine, "sql") {
			s = s[nl+1:]
		}
	}
	if end := strings.LastIndex(s, "```"); end != -1 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}

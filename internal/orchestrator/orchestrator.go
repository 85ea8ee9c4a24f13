package orchestrator

import (
	"context"
	"log/slog"

	"github.com/queryloom/queryloom/internal/datastore"
	"github.com/queryloom/queryloom/internal/dbcontext"
	"github.com/queryloom/queryloom/internal/intent"
	"github.com/queryloom/queryloom/internal/session"
	"github.com/queryloom/queryloom/internal/sqlgen"
	"github.com/queryloom/queryloom/internal/stageerr"
	"github.com/queryloom/queryloom/internal/validator"
)

// rowCap bounds how many rows are handed to the Interpreter. The
// executed result set is never truncated; only the slice sent for
// interpretation is capped, since an LLM prompt has no use for tens of
// thousands of rows.
const rowCap = 10_000

// ContextBuilder assembles the per-turn Database Context.
type ContextBuilder interface {
	Build(ctx context.Context) (*dbcontext.Context, error)
}

// IntentClassifier labels an utterance.
type IntentClassifier interface {
	Classify(ctx context.Context, sessionID, utterance string, dbCtx *dbcontext.Context) intent.Result
}

// Planner produces a conceptual plan or analytical suggestions.
type Planner interface {
	Plan(ctx context.Context, sessionID, utterance string, dbCtx *dbcontext.Context) ([]string, error)
	Insights(ctx context.Context, sessionID, utterance string, dbCtx *dbcontext.Context) ([]string, error)
}

// PlanValidator checks a plan's feasibility against context.
type PlanValidator interface {
	Validate(ctx context.Context, utterance string, plan []string, dbCtx *dbcontext.Context) validator.Verdict
}

// Synthesizer turns a feasible plan into SQL.
type Synthesizer interface {
	Synthesize(ctx context.Context, sessionID string, plan []string, dbCtx *dbcontext.Context) (sqlgen.Result, error)
}

// Executor runs approved SQL.
type Executor interface {
	Run(ctx context.Context, sqlText string) (*datastore.Result, error)
}

// Debugger proposes a corrected statement after an execution failure.
type Debugger interface {
	Debug(ctx context.Context, sessionID, utterance, failedSQL, engineError string, plan []string, dbCtx *dbcontext.Context) (string, bool)
}

// Interpreter summarizes result rows.
type Interpreter interface {
	Interpret(ctx context.Context, sessionID, utterance string, result *datastore.Result, trueCount int) (string, error)
}

// DescriptiveResponder produces a context-only dataset overview.
type DescriptiveResponder interface {
	Describe(ctx context.Context, sessionID string, dbCtx *dbcontext.Context) (string, error)
}

// SessionStore is the subset of session.Store the Orchestrator needs.
type SessionStore interface {
	Put(sess session.Session) string
	Take(id string) (session.Session, bool)
}

// Orchestrator threads every pipeline component through the
// analyze/execute protocol.
type Orchestrator struct {
	contextBuilder ContextBuilder
	classifier     IntentClassifier
	planner        Planner
	validator      PlanValidator
	synthesizer    Synthesizer
	executor       Executor
	debugger       Debugger
	interpreter    Interpreter
	descriptive    DescriptiveResponder
	sessions       SessionStore
	logger         *slog.Logger
}

// New creates an Orchestrator wired to every pipeline component.
func New(
	contextBuilder ContextBuilder,
	classifier IntentClassifier,
	planner Planner,
	pv PlanValidator,
	synthesizer Synthesizer,
	executor Executor,
	debugger Debugger,
	interpreter Interpreter,
	descriptive DescriptiveResponder,
	sessions SessionStore,
) *Orchestrator {
	return &Orchestrator{
		contextBuilder: contextBuilder,
		classifier:     classifier,
		planner:        planner,
		validator:      pv,
		synthesizer:    synthesizer,
		executor:       executor,
		debugger:       debugger,
		interpreter:    interpreter,
		descriptive:    descriptive,
		sessions:       sessions,
		logger:         slog.Default(),
	}
}

// Analyze runs the first half of a turn: classify intent, plan and
// validate a specific question through to synthesized SQL awaiting
// approval, or answer an exploratory question directly.
func (o *Orchestrator) Analyze(ctx context.Context, utterance string) AnalyzeResult {
	dbCtx, err := o.contextBuilder.Build(ctx)
	if err != nil {
		return failed(stageFor(err, stageerr.Context), reasonFor(err))
	}

	result := o.classifier.Classify(ctx, "", utterance, dbCtx)
	label := result.Label
	if result.LowConfidence() {
		o.logger.Warn("orchestrator: low-confidence classification, defaulting to specific", "utterance", utterance, "confidence", result.Confidence)
		label = intent.Specific
	}

	switch label {
	case intent.ExploratoryDescriptive:
		return o.analyzeDescriptive(ctx, dbCtx)
	case intent.ExploratoryAnalytical:
		return o.analyzeInsights(ctx, utterance, dbCtx)
	default:
		return o.analyzeSpecific(ctx, utterance, dbCtx)
	}
}

func (o *Orchestrator) analyzeDescriptive(ctx context.Context, dbCtx *dbcontext.Context) AnalyzeResult {
	text, err := o.descriptive.Describe(ctx, "", dbCtx)
	if err != nil {
		return failed(stageFor(err, stageerr.LLMTransport), reasonFor(err))
	}
	return AnalyzeResult{Kind: KindDescription, Text: text}
}

func (o *Orchestrator) analyzeInsights(ctx context.Context, utterance string, dbCtx *dbcontext.Context) AnalyzeResult {
	suggestions, err := o.planner.Insights(ctx, "", utterance, dbCtx)
	if err != nil {
		return failed(stageFor(err, stageerr.Plan), reasonFor(err))
	}
	return AnalyzeResult{Kind: KindSuggestions, Suggestions: suggestions}
}

func (o *Orchestrator) analyzeSpecific(ctx context.Context, utterance string, dbCtx *dbcontext.Context) AnalyzeResult {
	plan, err := o.planner.Plan(ctx, "", utterance, dbCtx)
	if err != nil {
		return failed(stageFor(err, stageerr.Plan), reasonFor(err))
	}

	verdict := o.validator.Validate(ctx, utterance, plan, dbCtx)
	if verdict.Infeasible {
		return failed(string(stageerr.Plan), verdict.Rationale)
	}
	finalPlan := plan
	if verdict.Plan != nil {
		finalPlan = verdict.Plan
	}

	synthesized, err := o.synthesizer.Synthesize(ctx, "", finalPlan, dbCtx)
	if err != nil {
		return failed(stageFor(err, stageerr.SQLSynth), reasonFor(err))
	}

	sessionID := o.sessions.Put(session.Session{
		Utterance: utterance,
		Plan:      finalPlan,
		SQL:       synthesized.SQL,
	})

	return AnalyzeResult{
		Kind:         KindNeedsSQLApproval,
		SessionID:    sessionID,
		GeneratedSQL: synthesized.SQL,
		Warnings:     synthesized.Warnings,
		Plan:         finalPlan,
	}
}

// Execute runs the second half of a turn: the session is removed
// before the executor is ever invoked, so a session id can be redeemed
// at most once even under concurrent or repeated requests.
func (o *Orchestrator) Execute(ctx context.Context, sessionID, approvedSQL string) ExecuteResult {
	sess, ok := o.sessions.Take(sessionID)
	if !ok {
		return ExecuteResult{Kind: KindSessionMissing}
	}

	result, err := o.executor.Run(ctx, approvedSQL)
	if err != nil {
		return o.executionFailed(ctx, sess, approvedSQL, err)
	}

	return o.success(ctx, sess, result)
}

func (o *Orchestrator) executionFailed(ctx context.Context, sess session.Session, approvedSQL string, execErr error) ExecuteResult {
	dbCtx, buildErr := o.contextBuilder.Build(ctx)
	if buildErr != nil {
		return ExecuteResult{
			Kind:        KindExecutionFailed,
			EngineError: execErr.Error(),
		}
	}

	suggestion, ok := o.debugger.Debug(ctx, "", sess.Utterance, approvedSQL, execErr.Error(), sess.Plan, dbCtx)
	return ExecuteResult{
		Kind:               KindExecutionFailed,
		EngineError:        execErr.Error(),
		DebugSuggestion:    suggestion,
		HasDebugSuggestion: ok,
	}
}

func (o *Orchestrator) success(ctx context.Context, sess session.Session, result *datastore.Result) ExecuteResult {
	trueCount := len(result.Rows)
	truncated := trueCount > rowCap

	interpretInput := result
	if truncated {
		capped := *result
		capped.Rows = result.Rows[:rowCap]
		interpretInput = &capped
	}

	interpretation, err := o.interpreter.Interpret(ctx, "", sess.Utterance, interpretInput, trueCount)
	if err != nil {
		return ExecuteResult{
			Kind:   KindFailed,
			Stage:  stageFor(err, stageerr.LLMTransport),
			Reason: reasonFor(err),
		}
	}

	return ExecuteResult{
		Kind:           KindSuccess,
		Rows:           rowsToMaps(result),
		RowCount:       trueCount,
		Truncated:      truncated,
		Interpretation: interpretation,
	}
}

func rowsToMaps(result *datastore.Result) []map[string]any {
	out := make([]map[string]any, len(result.Rows))
	for i, row := range result.Rows {
		m := make(map[string]any, len(row))
		for _, cell := range row {
			m[cell.Name] = cell.Value
		}
		out[i] = m
	}
	return out
}

func failed(stage, reason string) AnalyzeResult {
	return AnalyzeResult{Kind: KindFailed, Stage: stage, Reason: reason}
}

func stageFor(err error, fallback stageerr.Kind) string {
	if se, ok := stageerr.As(err); ok {
		return string(se.Kind)
	}
	return string(fallback)
}

func reasonFor(err error) string {
	if se, ok := stageerr.As(err); ok {
		return se.Reason
	}
	return err.Error()
}

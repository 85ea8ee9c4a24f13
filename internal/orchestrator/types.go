// Package orchestrator threads the Context Provider, Intent
// Classifier, Planner, Plan Validator, SQL Synthesizer, SQL Executor,
// SQL Debugger, Interpreter, and Descriptive Responder through the
// two-phase analyze/execute protocol, and owns the session store.
package orchestrator

import "github.com/queryloom/queryloom/internal/sqlgen"

// AnalyzeResult is the tagged union returned by Analyze.
type AnalyzeResult struct {
	Kind Kind

	// NeedsSQLApproval fields.
	SessionID    string
	GeneratedSQL string
	Warnings     []sqlgen.Warning
	Plan         []string

	// Suggestions fields.
	Suggestions []string

	// Description fields.
	Text string

	// Failed fields.
	Stage  string
	Reason string
}

// Kind discriminates AnalyzeResult and ExecuteResult.
type Kind string

const (
	KindNeedsSQLApproval Kind = "sql"
	KindSuggestions      Kind = "suggestions"
	KindDescription      Kind = "description"
	KindFailed           Kind = "error"

	KindSuccess        Kind = "result"
	KindExecutionFailed Kind = "exec_error"
	KindSessionMissing Kind = "session_missing"
)

// ExecuteResult is the tagged union returned by Execute.
type ExecuteResult struct {
	Kind Kind

	// Success fields.
	Rows          []map[string]any
	RowCount      int
	Truncated     bool
	Interpretation string

	// ExecutionFailed fields.
	EngineError     string
	DebugSuggestion string
	HasDebugSuggestion bool

	// Failed fields.
	Stage  string
	Reason string
}

// Package stageerr defines the pipeline-wide error taxonomy. Every
// component that can fail a turn wraps its own error in an *Error
// before returning it, so the Orchestrator can route failures to the
// correct response shape without re-deriving their meaning.
package stageerr

import "fmt"

// Kind identifies which pipeline stage produced an error.
type Kind string

const (
	Context       Kind = "context"
	Intent        Kind = "intent"
	Plan          Kind = "plan"
	SQLSynth      Kind = "sql_synth"
	SQLWarn       Kind = "sql_warn"
	Exec          Kind = "exec"
	SessionMissing Kind = "session_missing"
	LLMTransport  Kind = "llm_transport"
	LLMTimeout    Kind = "llm_timeout"
	LLMQuota      Kind = "llm_quota"
	LLMEmpty      Kind = "llm_empty"
)

// Error carries a stage kind alongside the underlying cause. It is
// always constructed by the component that detected the failure, never
// rewritten by a caller.
type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func New(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

func Wrap(kind Kind, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// As extracts a *Error from err, if any, along with whether it was found.
func As(err error) (*Error, bool) {
	se, ok := err.(*Error)
	return se, ok
}

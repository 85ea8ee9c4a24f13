package llmgw

import "context"

// Role identifies the speaker of a message in a completion request.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation exchanged with the provider.
type Message struct {
	Role    Role
	Content string
}

// Request is a single completion call. SessionID, if non-empty, opts
// into per-session conversation memory. SQLShaped tells the gateway to
// strip markdown code fences from the response before returning it.
type Request struct {
	SessionID string
	System    string
	Messages  []Message
	SQLShaped bool
}

// Provider is the text-in/text-out contract with an LLM backend. The
// gateway owns retry, timeout, and memory; a Provider only makes one
// best-effort call per invocation.
type Provider interface {
	Complete(ctx context.Context, systemPrompt string, messages []Message) (string, error)
}

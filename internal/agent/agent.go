// Package agent drives one chat turn end to end: persist the user message,
// assemble the session history, run it through the integrity pipeline,
// convert it to wire form, and stream the upstream response.
package agent

import (
	"context"

	"github.com/parleyhq/parley/internal/anthropic"
	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/integrity"
	"github.com/parleyhq/parley/internal/logging"
	"github.com/parleyhq/parley/internal/message"
	"github.com/parleyhq/parley/internal/pubsub"
)

// StreamCallbacks contains callbacks for streaming responses. Any callback
// may be nil. Callbacks observe the turn; they cannot alter it.
type StreamCallbacks struct {
	OnTextDelta     func(text string)
	OnThinkingDelta func(text string)
	OnToolCall      func(tc message.ToolCall)
	OnComplete      func()
	OnError         func(err error)
}

// SendOptions contains options for sending a message.
type SendOptions struct { //nolint:govet // fieldalignment: preserving logical field order
	SessionID   string
	Temperature *float64
	MaxTokens   int64
}

// Agent is the interface for a conversational agent.
type Agent interface {
	// Send sends a prompt and streams the response.
	Send(ctx context.Context, prompt string, opts SendOptions, callbacks StreamCallbacks) error

	// AddToolResult persists a collaborator-produced tool result so the
	// next turn's history resolves the pending tool call.
	AddToolResult(ctx context.Context, sessionID string, result message.ToolResult) error

	// History returns the conversation history submitted with the next turn.
	History(ctx context.Context, sessionID string) ([]*message.Message, error)

	// Clear clears the conversation history.
	Clear(ctx context.Context, sessionID string) error

	// SetSystemPrompt sets the system prompt.
	SetSystemPrompt(prompt string)

	// Cancel cancels any ongoing request for a session.
	Cancel(sessionID string)

	// IsBusy returns true if the agent is processing a request for the session.
	IsBusy(sessionID string) bool
}

// Config contains chat agent configuration.
type Config struct { //nolint:govet // fieldalignment: preserving logical field order
	Client       *anthropic.Client
	Model        config.SelectedModel
	SystemPrompt string
	Sessions     *SessionAdapter
	Integrity    integrity.Options
	Hub          *pubsub.Hub     // Optional pub/sub hub for event publishing
	Log          *logging.Logger // Optional structured logger
}

// ErrSessionBusy is returned when a session is already processing a request.
var ErrSessionBusy = NewError("session is busy")

// ErrEmptyPrompt is returned when an empty prompt is provided.
var ErrEmptyPrompt = NewError("prompt cannot be empty")

// ErrNoClient is returned when the agent has no upstream client configured.
var ErrNoClient = NewError("no upstream client configured")

// Error represents an agent-specific error.
type Error struct {
	message string
}

// NewError creates a new agent error with the given message.
func NewError(message string) *Error {
	return &Error{message: message}
}

func (e *Error) Error() string {
	return e.message
}

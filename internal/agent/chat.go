package agent

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/parleyhq/parley/internal/anthropic"
	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/events"
	"github.com/parleyhq/parley/internal/integrity"
	"github.com/parleyhq/parley/internal/logging"
	"github.com/parleyhq/parley/internal/message"
	"github.com/parleyhq/parley/internal/pubsub"
)

// defaultMaxTokens caps a turn when neither the call nor the model config
// sets a limit.
const defaultMaxTokens = 8192

// Chat implements the Agent interface against the Messages API.
type Chat struct { //nolint:govet // fieldalignment: preserving logical field order
	client         *anthropic.Client
	model          config.SelectedModel
	systemPrompt   string
	sessions       *SessionAdapter
	checker        *integrity.Orchestrator
	checkOpts      integrity.Options
	hub            *pubsub.Hub
	log            *logging.Logger
	activeRequests map[string]context.CancelFunc
	mu             sync.RWMutex
}

// NewChat creates a chat agent with the given configuration.
func NewChat(cfg Config) *Chat {
	log := cfg.Log
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Chat{
		client:         cfg.Client,
		model:          cfg.Model,
		systemPrompt:   cfg.SystemPrompt,
		sessions:       cfg.Sessions,
		checker:        integrity.NewOrchestrator(log),
		checkOpts:      cfg.Integrity,
		hub:            cfg.Hub,
		log:            log,
		activeRequests: make(map[string]context.CancelFunc),
	}
}

// Send sends a prompt and streams the response.
//
// The turn runs the full submission pipeline: persist the user message, load
// the session context, validate and repair tool pairing, convert to wire
// form, enforce thinking order, then stream. Whatever the stream produced is
// persisted even when it ends in an error or cancellation; a tool call left
// hanging by an interrupted turn is exactly what the next turn's integrity
// pass removes.
func (c *Chat) Send(ctx context.Context, prompt string, opts SendOptions, callbacks StreamCallbacks) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}
	if c.client == nil {
		return ErrNoClient
	}

	sessionID := opts.SessionID
	if sessionID == "" {
		id, err := c.sessions.CurrentID(ctx)
		if err != nil {
			return err
		}
		sessionID = id
	}

	if c.IsBusy(sessionID) {
		return ErrSessionBusy
	}

	ctx, cancel := context.WithCancel(ctx)
	c.setActiveRequest(sessionID, cancel)
	defer func() {
		c.clearActiveRequest(sessionID)
		cancel()
	}()

	userMsg := &message.Message{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      message.RoleUser,
		Parts:     []message.Part{message.NewTextPart(prompt)},
	}
	if err := c.sessions.AddMessage(ctx, userMsg); err != nil {
		return err
	}

	history, err := c.sessions.History(ctx, sessionID)
	if err != nil {
		return err
	}

	conversation := c.checkHistory(sessionID, history)

	c.mu.RLock()
	persona := c.systemPrompt
	c.mu.RUnlock()

	system, wire := anthropic.FromMessages(conversation)
	system = joinSystem(persona, system)

	strategy := anthropic.Strategy{UseExtendedThinking: c.model.Think}
	wire = anthropic.EnforceThinkingOrder(wire, strategy)

	req := anthropic.MessageRequest{
		Model:     c.model.Model,
		Messages:  wire,
		System:    system,
		MaxTokens: c.maxTokens(opts),
		Thinking:  strategy.ThinkingConfig(),
	}
	if opts.Temperature != nil {
		req.Temperature = opts.Temperature
	} else if c.model.Temperature != nil {
		req.Temperature = c.model.Temperature
	}

	assistantID := uuid.New().String()
	var textBuf, thinkingBuf strings.Builder
	var toolCalls []message.ToolCall

	resp, streamErr := c.client.StreamMessage(ctx, req, anthropic.StreamCallbacks{
		OnTextDelta: func(text string) {
			textBuf.WriteString(text)
			if c.hub != nil {
				c.hub.Agent.Publish(pubsub.EventProgress,
					events.NewTextDeltaEvent(sessionID, assistantID, text))
			}
			if callbacks.OnTextDelta != nil {
				callbacks.OnTextDelta(text)
			}
		},
		OnThinkingDelta: func(text string) {
			thinkingBuf.WriteString(text)
			if c.hub != nil {
				c.hub.Agent.Publish(pubsub.EventProgress,
					events.NewThinkingDeltaEvent(sessionID, assistantID, text))
			}
			if callbacks.OnThinkingDelta != nil {
				callbacks.OnThinkingDelta(text)
			}
		},
		OnToolUse: func(block anthropic.ContentBlock) {
			tc := message.ToolCall{
				ID:    block.ID,
				Name:  block.Name,
				Input: string(block.Input),
			}
			toolCalls = append(toolCalls, tc)
			if c.hub != nil {
				c.hub.Agent.Publish(pubsub.EventProgress,
					events.NewToolCallEvent(sessionID, assistantID, events.ToolCallInfo{
						ID:    tc.ID,
						Name:  tc.Name,
						Input: tc.Input,
					}))
			}
			if callbacks.OnToolCall != nil {
				callbacks.OnToolCall(tc)
			}
		},
	})

	// Persist whatever arrived before checking the stream error, so an
	// interrupted turn still leaves a consistent, repairable history.
	assistantMsg := c.assistantMessage(sessionID, assistantID, thinkingBuf.String(), textBuf.String(), toolCalls)
	if assistantMsg != nil {
		if addErr := c.sessions.AddMessage(ctx, assistantMsg); addErr != nil && streamErr == nil {
			streamErr = addErr
		}
	}

	if streamErr != nil {
		if c.hub != nil {
			if errors.Is(streamErr, context.Canceled) {
				c.hub.Agent.Publish(pubsub.EventFailed,
					events.NewCancelledEvent(sessionID, assistantID))
			} else {
				c.hub.Agent.Publish(pubsub.EventFailed,
					events.NewErrorEvent(sessionID, assistantID, streamErr))
			}
		}
		if callbacks.OnError != nil {
			callbacks.OnError(streamErr)
		}
		return streamErr
	}

	c.log.Info("turn complete",
		logging.String("session_id", sessionID),
		logging.String("model", c.model.Model),
		logging.String("stop_reason", resp.StopReason),
		logging.Int64("input_tokens", resp.Usage.InputTokens),
		logging.Int64("output_tokens", resp.Usage.OutputTokens))

	if c.hub != nil {
		c.hub.Agent.Publish(pubsub.EventCompleted,
			events.NewCompleteEvent(sessionID, assistantID))
	}
	if callbacks.OnComplete != nil {
		callbacks.OnComplete()
	}

	return nil
}

// checkHistory runs the integrity pipeline over a loaded history and
// publishes the outcome. The submitted conversation is the repaired one when
// fixing is enabled, the original otherwise.
func (c *Chat) checkHistory(sessionID string, history []*message.Message) []*message.Message {
	if c.hub != nil {
		c.hub.Integrity.Publish(pubsub.EventStarted,
			events.NewCheckStartedEvent(sessionID))
	}

	result := c.checker.ValidateAndFix(history, c.checkOpts)

	if c.hub != nil {
		report := result.Validation
		switch {
		case len(result.FixesApplied) > 0:
			c.hub.Integrity.Publish(pubsub.EventUpdated,
				events.NewRepairedEvent(sessionID, len(result.FixesApplied)))
		case !report.IsValid:
			c.hub.Integrity.Publish(pubsub.EventFailed,
				events.NewViolationsFoundEvent(sessionID, len(report.Errors), len(report.Warnings)))
		default:
			c.hub.Integrity.Publish(pubsub.EventCompleted,
				events.NewCleanEvent(sessionID, len(report.Warnings)))
		}
	}

	return result.Conversation
}

// assistantMessage builds the persisted assistant message for a turn, or nil
// when the stream produced nothing worth keeping.
func (c *Chat) assistantMessage(sessionID, id, thinking, text string, toolCalls []message.ToolCall) *message.Message {
	if thinking == "" && text == "" && len(toolCalls) == 0 {
		return nil
	}

	msg := &message.Message{
		ID:        id,
		SessionID: sessionID,
		Role:      message.RoleAssistant,
		Model:     c.model.Model,
		Provider:  c.model.Provider,
	}
	if thinking != "" {
		msg.Parts = append(msg.Parts, message.NewReasoningPart(thinking))
	}
	if text != "" {
		msg.Parts = append(msg.Parts, message.NewTextPart(text))
	}
	for _, tc := range toolCalls {
		msg.Parts = append(msg.Parts, message.NewToolCallPart(tc.ID, tc.Name, tc.Input))
	}
	return msg
}

// AddToolResult persists a collaborator-produced tool result as a tool role
// message, resolving the pending tool call for the next turn.
func (c *Chat) AddToolResult(ctx context.Context, sessionID string, result message.ToolResult) error {
	msg := &message.Message{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      message.RoleTool,
		Parts: []message.Part{
			message.NewToolResultPart(result.ToolCallID, result.Name, result.Content, result.IsError),
		},
	}
	if err := c.sessions.AddMessage(ctx, msg); err != nil {
		return err
	}

	if c.hub != nil {
		c.hub.Agent.Publish(pubsub.EventProgress,
			events.NewToolResultEvent(sessionID, msg.ID, events.ToolResultInfo{
				ToolCallID: result.ToolCallID,
				Name:       result.Name,
				Content:    result.Content,
				IsError:    result.IsError,
			}))
	}

	return nil
}

// History returns the session history the next turn will be built from.
func (c *Chat) History(ctx context.Context, sessionID string) ([]*message.Message, error) {
	return c.sessions.History(ctx, sessionID)
}

// Clear clears the conversation history for a session.
func (c *Chat) Clear(ctx context.Context, sessionID string) error {
	return c.sessions.Clear(ctx, sessionID)
}

// SetSystemPrompt sets the system prompt.
func (c *Chat) SetSystemPrompt(prompt string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.systemPrompt = prompt
}

// Cancel cancels any ongoing request for a session.
func (c *Chat) Cancel(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cancel, ok := c.activeRequests[sessionID]; ok {
		cancel()
		delete(c.activeRequests, sessionID)
	}
}

// IsBusy returns true if the agent is processing a request for the session.
func (c *Chat) IsBusy(sessionID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.activeRequests[sessionID]
	return ok
}

// Sessions returns the session adapter.
func (c *Chat) Sessions() *SessionAdapter {
	return c.sessions
}

func (c *Chat) maxTokens(opts SendOptions) int {
	if opts.MaxTokens > 0 {
		return int(opts.MaxTokens)
	}
	if c.model.MaxTokens > 0 {
		return int(c.model.MaxTokens)
	}
	return defaultMaxTokens
}

func (c *Chat) setActiveRequest(sessionID string, cancel context.CancelFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeRequests[sessionID] = cancel
}

func (c *Chat) clearActiveRequest(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.activeRequests, sessionID)
}

// joinSystem combines the configured persona prompt with system text
// collected from the conversation.
func joinSystem(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}

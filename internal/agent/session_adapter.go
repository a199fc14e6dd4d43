package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/parleyhq/parley/internal/message"
	"github.com/parleyhq/parley/internal/session"
)

// sessionCacheSize bounds how many session histories stay in memory.
const sessionCacheSize = 16

// SessionAdapter bundles the session and message services behind the
// operations the chat pipeline needs, keeping recently used histories in an
// LRU cache so a turn does not reread the whole session from SQLite.
type SessionAdapter struct {
	sessions *session.Service
	messages *message.Service
	cache    *lruCache[string, []*message.Message]
}

// NewSessionAdapter creates a session adapter over the given services.
func NewSessionAdapter(sessions *session.Service, messages *message.Service) *SessionAdapter {
	return &SessionAdapter{
		sessions: sessions,
		messages: messages,
		cache:    newLRUCache[string, []*message.Message](sessionCacheSize),
	}
}

// CurrentID returns the current session id, creating a session if none is
// active.
func (a *SessionAdapter) CurrentID(ctx context.Context) (string, error) {
	sess, err := a.sessions.Current(ctx)
	if err != nil {
		return "", fmt.Errorf("resolving current session: %w", err)
	}
	return sess.ID, nil
}

// History returns the model context for a session: the summary message and
// everything after it when one exists, the recent window otherwise. The
// returned slice is the caller's to keep; cache entries are never shared.
//
// This is the raw persisted order. Trims, edits, and interrupted turns may
// have left broken tool pairs in it; callers run it through the integrity
// pipeline before submission.
func (a *SessionAdapter) History(ctx context.Context, sessionID string) ([]*message.Message, error) {
	if cached, ok := a.cache.Get(sessionID); ok {
		return copyHistory(cached), nil
	}

	msgs, err := a.messages.GetContext(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session context: %w", err)
	}

	a.cache.Put(sessionID, msgs)
	return copyHistory(msgs), nil
}

// AddMessage persists a message, bumps the session's message count, and
// extends the cached history.
func (a *SessionAdapter) AddMessage(ctx context.Context, msg *message.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}

	if err := a.messages.Add(ctx, msg); err != nil {
		return fmt.Errorf("persisting message: %w", err)
	}
	if err := a.sessions.IncrementMessageCount(ctx, msg.SessionID); err != nil {
		return fmt.Errorf("updating session count: %w", err)
	}

	if cached, ok := a.cache.Get(msg.SessionID); ok {
		cached = append(cached, msg)
		if len(cached) > message.MaxMessages {
			cached = cached[len(cached)-message.MaxMessages:]
		}
		a.cache.Put(msg.SessionID, cached)
	}

	return nil
}

// Clear removes all messages from a session and drops its cached history.
func (a *SessionAdapter) Clear(ctx context.Context, sessionID string) error {
	if err := a.messages.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	a.cache.Delete(sessionID)
	return nil
}

// Invalidate drops the cached history for a session. Callers that rewrite
// history out of band (trimming, repairs persisted by the check command)
// invalidate so the next turn rereads from the store.
func (a *SessionAdapter) Invalidate(sessionID string) {
	a.cache.Delete(sessionID)
}

func copyHistory(msgs []*message.Message) []*message.Message {
	out := make([]*message.Message, len(msgs))
	copy(out, msgs)
	return out
}

// Package transcript reads and writes exported conversations.
//
// A transcript is the portable JSON form of a session. Current exports
// carry each message's blocks in a "parts" array; files written by old
// releases instead carry a nested "content" array in the wire block
// vocabulary, and some external tools export a bare content string. All
// three shapes load. Exports are always written in the current shape.
//
// # File shapes
//
// An object transcript wraps the messages with session metadata:
//
//	{"session_id": "...", "title": "...", "messages": [...]}
//
// A bare JSON array of messages also loads, for files produced by other
// tooling.
//
// Example usage:
//
//	tr, err := transcript.Load("session.json")
//	if err != nil {
//	    return err
//	}
//	report := integrity.Validate(tr.ToMessages())
package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/parleyhq/parley/internal/message"
)

// Transcript is an exported conversation.
type Transcript struct {
	// SessionID identifies the session the transcript was exported from,
	// when known.
	SessionID string `json:"session_id,omitempty"`

	// Title is the session title, when known.
	Title string `json:"title,omitempty"`

	// Entries are the conversation messages in order.
	Entries []Entry `json:"messages"`
}

// Entry is one message of a transcript.
//
// Parts holds the current shape. Content holds whatever a legacy file
// carried instead: a nested block array in the wire vocabulary, or a bare
// string. When both are present, Parts wins.
type Entry struct {
	// Role is the message sender: user, assistant, system, or tool.
	Role string `json:"role"`

	// Parts are the message blocks in the current shape.
	Parts []message.Part `json:"parts,omitempty"`

	// Content is the raw legacy payload, kept undecoded.
	Content json.RawMessage `json:"content,omitempty"`
}

// Validation errors for transcripts.
var (
	// ErrInvalidJSON is returned when the input is not valid JSON.
	ErrInvalidJSON = errors.New("transcript is not valid JSON")

	// ErrNoMessages is returned when a transcript carries no messages.
	ErrNoMessages = errors.New("transcript has no messages")

	// ErrMissingRole is returned when an entry has an empty role.
	ErrMissingRole = errors.New("entry has no role")

	// ErrUnknownRole is returned when an entry's role is not one of
	// user, assistant, system, or tool.
	ErrUnknownRole = errors.New("entry has an unknown role")
)

// New builds a transcript from stored messages. Legacy messages keep their
// raw content payload so a round trip does not rewrite history.
func New(sessionID, title string, msgs []*message.Message) *Transcript {
	t := &Transcript{
		SessionID: sessionID,
		Title:     title,
		Entries:   make([]Entry, 0, len(msgs)),
	}
	for _, msg := range msgs {
		if msg == nil {
			continue
		}
		entry := Entry{Role: string(msg.Role), Parts: msg.Parts}
		if len(msg.Parts) == 0 && len(msg.Content) > 0 {
			entry.Content = msg.Content
		}
		t.Entries = append(t.Entries, entry)
	}
	return t
}

// Parse decodes and validates a transcript from JSON. Both the object
// shape and a bare message array are accepted.
func Parse(data []byte) (*Transcript, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}

	var t Transcript
	if gjson.ParseBytes(data).IsArray() {
		if err := json.Unmarshal(data, &t.Entries); err != nil {
			return nil, fmt.Errorf("decoding transcript messages: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("decoding transcript: %w", err)
		}
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Load reads and parses a transcript file.
func Load(path string) (*Transcript, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Path is user-requested input to the check command.
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}

	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// Validate checks that the transcript has messages and that every entry
// carries a known role. Returns nil if valid, or the first validation
// error encountered.
func (t *Transcript) Validate() error {
	if len(t.Entries) == 0 {
		return ErrNoMessages
	}
	for i := range t.Entries {
		if err := t.Entries[i].Validate(); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
	}
	return nil
}

// IsValid returns true if the transcript passes all validations.
func (t *Transcript) IsValid() bool {
	return t.Validate() == nil
}

// Validate checks the entry's role.
func (e *Entry) Validate() error {
	role := strings.TrimSpace(e.Role)
	if role == "" {
		return ErrMissingRole
	}
	switch message.Role(role) {
	case message.RoleUser, message.RoleAssistant, message.RoleSystem, message.RoleTool:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRole, e.Role)
	}
}

// ToMessages converts the transcript into stored-message form for the
// integrity pipeline. Legacy block arrays stay raw on Content; a bare
// content string becomes a single text part.
func (t *Transcript) ToMessages() []*message.Message {
	msgs := make([]*message.Message, 0, len(t.Entries))
	for _, e := range t.Entries {
		msg := &message.Message{
			SessionID: t.SessionID,
			Role:      message.Role(strings.TrimSpace(e.Role)),
			Parts:     e.Parts,
		}
		if len(e.Parts) == 0 && len(e.Content) > 0 {
			content := gjson.ParseBytes(e.Content)
			switch {
			case content.Type == gjson.String:
				msg.Parts = []message.Part{message.NewTextPart(content.String())}
			case content.IsArray():
				msg.Content = json.RawMessage(e.Content)
			}
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

// Export renders the transcript as indented JSON in the current shape.
func (t *Transcript) Export() ([]byte, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding transcript: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportFile writes the transcript to path.
func (t *Transcript) ExportFile(path string) error {
	data, err := t.Export()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // G306: Standard file permissions for user exports.
		return fmt.Errorf("writing transcript: %w", err)
	}
	return nil
}

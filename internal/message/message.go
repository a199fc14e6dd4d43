// Package message provides conversation message management with persistence.
package message

import (
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"
)

// Role represents the role of a message sender.
type Role string

// Role constants.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Message represents a conversation message.
//
// Modern messages carry their blocks in Parts. Messages written by old
// releases may instead carry a raw nested content array in Content, using
// the wire block vocabulary (tool_use/tool_result). Such messages keep
// Parts nil; readers that need correlation ids must handle both shapes.
type Message struct {
	ID        string
	SessionID string
	Role      Role
	Parts     []Part
	Content   json.RawMessage
	Model     string
	Provider  string
	IsSummary bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PartType represents the type of a message part.
type PartType string

// Part type constants.
const (
	PartTypeText       PartType = "text"
	PartTypeReasoning  PartType = "reasoning"
	PartTypeToolCall   PartType = "tool_call"
	PartTypeToolResult PartType = "tool_result"
)

// Part represents a content part of a message.
type Part struct {
	Type       PartType    `json:"type"`
	Text       string      `json:"text,omitempty"`
	Reasoning  string      `json:"reasoning,omitempty"`
	ToolCall   *ToolCall   `json:"tool_call,omitempty"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`
}

// ToolCall represents a tool invocation requested by the assistant.
type ToolCall struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Input string `json:"input"`
}

// ToolResult represents the outcome of a tool invocation.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Name       string `json:"name"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error"`
}

// TextContent returns the text content from the first text part.
func (m *Message) TextContent() string {
	for _, p := range m.Parts {
		if p.Type == PartTypeText {
			return p.Text
		}
	}
	return ""
}

// ReasoningContent returns the reasoning content from the message parts.
func (m *Message) ReasoningContent() string {
	for _, p := range m.Parts {
		if p.Type == PartTypeReasoning {
			return p.Reasoning
		}
	}
	return ""
}

// ToolCalls returns all tool calls from the message parts.
func (m *Message) ToolCalls() []*ToolCall {
	var calls []*ToolCall
	for _, p := range m.Parts {
		if p.Type == PartTypeToolCall && p.ToolCall != nil {
			calls = append(calls, p.ToolCall)
		}
	}
	return calls
}

// ToolResults returns all tool results from the message parts.
func (m *Message) ToolResults() []*ToolResult {
	var results []*ToolResult
	for _, p := range m.Parts {
		if p.Type == PartTypeToolResult && p.ToolResult != nil {
			results = append(results, p.ToolResult)
		}
	}
	return results
}

// IsLegacyContent reports whether raw holds a nested content array in the
// wire block vocabulary rather than a parts array. Old releases persisted
// the provider content blocks directly, so their elements use type
// "tool_use"/"thinking" or carry a top-level "tool_use_id" key.
func IsLegacyContent(raw []byte) bool {
	parsed := gjson.ParseBytes(raw)
	if !parsed.IsArray() {
		return false
	}
	legacy := false
	parsed.ForEach(func(_, block gjson.Result) bool {
		switch block.Get("type").String() {
		case "tool_use", "thinking":
			legacy = true
			return false
		case "tool_result":
			if block.Get("tool_use_id").Exists() {
				legacy = true
				return false
			}
		}
		return true
	})
	return legacy
}

// NewTextPart creates a new text part.
func NewTextPart(text string) Part {
	return Part{
		Type: PartTypeText,
		Text: text,
	}
}

// NewReasoningPart creates a new reasoning part.
func NewReasoningPart(reasoning string) Part {
	return Part{
		Type:      PartTypeReasoning,
		Reasoning: reasoning,
	}
}

// NewToolCallPart creates a new tool call part.
func NewToolCallPart(id, name, input string) Part {
	return Part{
		Type: PartTypeToolCall,
		ToolCall: &ToolCall{
			ID:    id,
			Name:  name,
			Input: input,
		},
	}
}

// NewToolResultPart creates a new tool result part.
func NewToolResultPart(toolCallID, name, content string, isError bool) Part {
	return Part{
		Type: PartTypeToolResult,
		ToolResult: &ToolResult{
			ToolCallID: toolCallID,
			Name:       name,
			Content:    content,
			IsError:    isError,
		},
	}
}

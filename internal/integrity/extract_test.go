package integrity

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/parleyhq/parley/internal/message"
)

func TestToolCallIDs(t *testing.T) {
	tests := []struct {
		name string
		msg  *message.Message
		want []string
	}{
		{
			name: "assistant with tool call parts",
			msg: &message.Message{
				Role: message.RoleAssistant,
				Parts: []message.Part{
					message.NewTextPart("checking your balance"),
					message.NewToolCallPart("a", "wallet_balance", "{}"),
					message.NewToolCallPart("b", "search_web", `{"query":"fx rate"}`),
				},
			},
			want: []string{"a", "b"},
		},
		{
			name: "assistant with legacy content blocks",
			msg: &message.Message{
				Role:    message.RoleAssistant,
				Content: json.RawMessage(`[{"type":"text","text":"on it"},{"type":"tool_use","id":"a","name":"send_payment","input":{"amount":5}}]`),
			},
			want: []string{"a"},
		},
		{
			name: "user message never yields calls",
			msg: &message.Message{
				Role: message.RoleUser,
				Parts: []message.Part{
					message.NewToolCallPart("a", "wallet_balance", "{}"),
				},
			},
			want: nil,
		},
		{
			name: "nil message",
			msg:  nil,
			want: nil,
		},
		{
			name: "assistant with no parts and no content",
			msg:  &message.Message{Role: message.RoleAssistant},
			want: nil,
		},
		{
			name: "malformed legacy content",
			msg: &message.Message{
				Role:    message.RoleAssistant,
				Content: json.RawMessage(`{not json`),
			},
			want: nil,
		},
		{
			name: "legacy content that is not an array",
			msg: &message.Message{
				Role:    message.RoleAssistant,
				Content: json.RawMessage(`{"type":"tool_use","id":"a"}`),
			},
			want: nil,
		},
		{
			name: "legacy block without id is skipped",
			msg: &message.Message{
				Role:    message.RoleAssistant,
				Content: json.RawMessage(`[{"type":"tool_use","name":"wallet_balance"},{"type":"tool_use","id":"b","name":"search_web"}]`),
			},
			want: []string{"b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToolCallIDs(tt.msg)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ToolCallIDs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToolResultIDs(t *testing.T) {
	tests := []struct {
		name string
		msg  *message.Message
		want []string
	}{
		{
			name: "tool role with result parts",
			msg: &message.Message{
				Role: message.RoleTool,
				Parts: []message.Part{
					message.NewToolResultPart("a", "wallet_balance", "42.00 USD", false),
					message.NewToolResultPart("b", "search_web", "no results", true),
				},
			},
			want: []string{"a", "b"},
		},
		{
			name: "user role with result parts",
			msg: &message.Message{
				Role: message.RoleUser,
				Parts: []message.Part{
					message.NewToolResultPart("a", "send_payment", "sent", false),
				},
			},
			want: []string{"a"},
		},
		{
			name: "legacy content blocks",
			msg: &message.Message{
				Role:    message.RoleUser,
				Content: json.RawMessage(`[{"type":"tool_result","tool_use_id":"a","content":"42.00 USD"}]`),
			},
			want: []string{"a"},
		},
		{
			name: "assistant message never yields results",
			msg: &message.Message{
				Role: message.RoleAssistant,
				Parts: []message.Part{
					message.NewToolResultPart("a", "wallet_balance", "42.00 USD", false),
				},
			},
			want: nil,
		},
		{
			name: "system message never yields results",
			msg:  &message.Message{Role: message.RoleSystem},
			want: nil,
		},
		{
			name: "nil message",
			msg:  nil,
			want: nil,
		},
		{
			name: "legacy block without tool_use_id is skipped",
			msg: &message.Message{
				Role:    message.RoleUser,
				Content: json.RawMessage(`[{"type":"tool_result","content":"lost"},{"type":"tool_result","tool_use_id":"b","content":"kept"}]`),
			},
			want: []string{"b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToolResultIDs(tt.msg)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ToolResultIDs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractionOrderFollowsParts(t *testing.T) {
	msg := &message.Message{
		Role: message.RoleAssistant,
		Parts: []message.Part{
			message.NewToolCallPart("c", "search_web", "{}"),
			message.NewTextPart("and also"),
			message.NewToolCallPart("a", "wallet_balance", "{}"),
		},
	}

	got := ToolCallIDs(msg)
	want := []string{"c", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ToolCallIDs() = %v, want %v", got, want)
	}
}

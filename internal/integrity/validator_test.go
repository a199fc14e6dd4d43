package integrity

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/parleyhq/parley/internal/message"
)

func userText(text string) *message.Message {
	return &message.Message{
		Role:  message.RoleUser,
		Parts: []message.Part{message.NewTextPart(text)},
	}
}

func assistantText(text string) *message.Message {
	return &message.Message{
		Role:  message.RoleAssistant,
		Parts: []message.Part{message.NewTextPart(text)},
	}
}

func assistantCalls(ids ...string) *message.Message {
	msg := &message.Message{Role: message.RoleAssistant}
	for _, id := range ids {
		msg.Parts = append(msg.Parts, message.NewToolCallPart(id, "wallet_balance", "{}"))
	}
	return msg
}

func toolResults(ids ...string) *message.Message {
	msg := &message.Message{Role: message.RoleTool}
	for _, id := range ids {
		msg.Parts = append(msg.Parts, message.NewToolResultPart(id, "wallet_balance", "ok", false))
	}
	return msg
}

func TestValidatePairedConversation(t *testing.T) {
	conversation := []*message.Message{
		userText("what's my balance?"),
		assistantCalls("a", "b"),
		toolResults("a", "b"),
		assistantText("you have 42.00 USD"),
	}

	report := Validate(conversation)

	if !report.IsValid {
		t.Errorf("IsValid = false, want true")
	}
	if len(report.Errors) != 0 {
		t.Errorf("len(Errors) = %d, want 0", len(report.Errors))
	}
	if len(report.Warnings) != 0 {
		t.Errorf("len(Warnings) = %d, want 0", len(report.Warnings))
	}
}

func TestValidateMissingToolResult(t *testing.T) {
	conversation := []*message.Message{
		assistantCalls("a", "b"),
		toolResults("a"),
	}

	report := Validate(conversation)

	if report.IsValid {
		t.Errorf("IsValid = true, want false")
	}
	want := []Finding{
		{Kind: KindMissingToolResult, ToolCallID: "b", MessageIndex: 0, Reason: ReasonMissingToolResult},
	}
	if !reflect.DeepEqual(report.Errors, want) {
		t.Errorf("Errors = %+v, want %+v", report.Errors, want)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("len(Warnings) = %d, want 0", len(report.Warnings))
	}
}

func TestValidateTrailingToolCall(t *testing.T) {
	conversation := []*message.Message{
		userText("send 5 USD to mia"),
		assistantCalls("a"),
	}

	report := Validate(conversation)

	if report.IsValid {
		t.Errorf("IsValid = true, want false")
	}
	want := []Finding{
		{Kind: KindTrailingToolCall, ToolCallID: "a", MessageIndex: 1, Reason: ReasonTrailingToolCall},
	}
	if !reflect.DeepEqual(report.Errors, want) {
		t.Errorf("Errors = %+v, want %+v", report.Errors, want)
	}
}

func TestValidateAssistantFollowsToolCall(t *testing.T) {
	conversation := []*message.Message{
		assistantCalls("a"),
		assistantText("never mind, I know the answer"),
	}

	report := Validate(conversation)

	if report.IsValid {
		t.Errorf("IsValid = true, want false")
	}
	want := []Finding{
		{Kind: KindRoleMismatch, ToolCallID: "a", MessageIndex: 0, Reason: ReasonRoleMismatch},
	}
	if !reflect.DeepEqual(report.Errors, want) {
		t.Errorf("Errors = %+v, want %+v", report.Errors, want)
	}
}

func TestValidateOrphanToolResult(t *testing.T) {
	tests := []struct {
		name         string
		conversation []*message.Message
		wantIndex    int
	}{
		{
			name: "result after plain user message",
			conversation: []*message.Message{
				userText("hi"),
				toolResults("x"),
			},
			wantIndex: 1,
		},
		{
			name: "result opens the conversation",
			conversation: []*message.Message{
				toolResults("x"),
			},
			wantIndex: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Validate(tt.conversation)

			if !report.IsValid {
				t.Errorf("IsValid = false, want true; orphan results are warnings only")
			}
			if len(report.Errors) != 0 {
				t.Errorf("len(Errors) = %d, want 0", len(report.Errors))
			}
			want := []Finding{
				{Kind: KindOrphanToolResult, ToolCallID: "x", MessageIndex: tt.wantIndex, Reason: ReasonOrphanToolResult},
			}
			if !reflect.DeepEqual(report.Warnings, want) {
				t.Errorf("Warnings = %+v, want %+v", report.Warnings, want)
			}
		})
	}
}

func TestValidatePartialResults(t *testing.T) {
	conversation := []*message.Message{
		assistantCalls("a", "b", "c"),
		toolResults("a", "c"),
	}

	report := Validate(conversation)

	got := report.ErrorIDs()
	want := []string{"b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ErrorIDs() = %v, want %v", got, want)
	}
}

func TestValidateErrorOrdering(t *testing.T) {
	conversation := []*message.Message{
		assistantCalls("b", "a"),
		userText("hm?"),
		assistantCalls("c"),
	}

	report := Validate(conversation)

	want := []Finding{
		{Kind: KindMissingToolResult, ToolCallID: "b", MessageIndex: 0, Reason: ReasonMissingToolResult},
		{Kind: KindMissingToolResult, ToolCallID: "a", MessageIndex: 0, Reason: ReasonMissingToolResult},
		{Kind: KindTrailingToolCall, ToolCallID: "c", MessageIndex: 2, Reason: ReasonTrailingToolCall},
	}
	if !reflect.DeepEqual(report.Errors, want) {
		t.Errorf("Errors = %+v, want %+v", report.Errors, want)
	}
}

func TestValidateLegacyContentMessages(t *testing.T) {
	legacyAssistant := &message.Message{
		Role:    message.RoleAssistant,
		Content: json.RawMessage(`[{"type":"text","text":"checking"},{"type":"tool_use","id":"a","name":"search_web","input":{"query":"weather"}}]`),
	}
	legacyResults := &message.Message{
		Role:    message.RoleUser,
		Content: json.RawMessage(`[{"type":"tool_result","tool_use_id":"a","content":"sunny"}]`),
	}

	t.Run("paired legacy messages", func(t *testing.T) {
		report := Validate([]*message.Message{legacyAssistant, legacyResults})
		if !report.IsValid {
			t.Errorf("IsValid = false, want true; errors: %+v", report.Errors)
		}
	})

	t.Run("legacy call without result", func(t *testing.T) {
		report := Validate([]*message.Message{legacyAssistant, userText("thanks")})
		want := []Finding{
			{Kind: KindMissingToolResult, ToolCallID: "a", MessageIndex: 0, Reason: ReasonMissingToolResult},
		}
		if !reflect.DeepEqual(report.Errors, want) {
			t.Errorf("Errors = %+v, want %+v", report.Errors, want)
		}
	})
}

func TestValidateDegradedInput(t *testing.T) {
	t.Run("empty conversation", func(t *testing.T) {
		report := Validate([]*message.Message{})
		if !report.IsValid {
			t.Errorf("IsValid = false, want true")
		}
	})

	t.Run("nil conversation", func(t *testing.T) {
		report := Validate(nil)
		if !report.IsValid {
			t.Errorf("IsValid = false, want true")
		}
	})

	t.Run("nil entries are skipped", func(t *testing.T) {
		report := Validate([]*message.Message{nil, userText("hi"), nil})
		if !report.IsValid {
			t.Errorf("IsValid = false, want true")
		}
	})

	t.Run("nil entry after tool call counts as missing result", func(t *testing.T) {
		report := Validate([]*message.Message{assistantCalls("a"), nil})
		want := []Finding{
			{Kind: KindMissingToolResult, ToolCallID: "a", MessageIndex: 0, Reason: ReasonMissingToolResult},
		}
		if !reflect.DeepEqual(report.Errors, want) {
			t.Errorf("Errors = %+v, want %+v", report.Errors, want)
		}
	})
}

func TestValidateWarningsDoNotAffectValidity(t *testing.T) {
	conversation := []*message.Message{
		userText("hi"),
		toolResults("x"),
		assistantCalls("a"),
		toolResults("a"),
	}

	report := Validate(conversation)

	if !report.IsValid {
		t.Errorf("IsValid = false, want true")
	}
	if len(report.Warnings) != 1 {
		t.Errorf("len(Warnings) = %d, want 1", len(report.Warnings))
	}
}

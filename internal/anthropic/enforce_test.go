package anthropic

import (
	"encoding/json"
	"reflect"
	"testing"
)

func textBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockText, Text: text}
}

func toolUseBlock(id, name string) ContentBlock {
	return ContentBlock{Type: BlockToolUse, ID: id, Name: name, Input: json.RawMessage(`{}`)}
}

func TestEnforceThinkingOrderPrepends(t *testing.T) {
	msgs := []MessageParam{
		{Role: RoleUser, Content: []ContentBlock{textBlock("what's my balance?")}},
		{Role: RoleAssistant, Content: []ContentBlock{
			textBlock("let me check"),
			toolUseBlock("a", "wallet_balance"),
		}},
	}

	got := EnforceThinkingOrder(msgs, Strategy{UseExtendedThinking: true})

	content := got[1].Content
	if len(content) != 3 {
		t.Fatalf("len(content) = %d, want 3", len(content))
	}
	if content[0].Type != BlockThinking {
		t.Errorf("content[0].Type = %q, want %q", content[0].Type, BlockThinking)
	}
	if content[0].Thinking == "" {
		t.Errorf("synthesized thinking block has empty text")
	}
	if content[1].Type != BlockText || content[1].Text != "let me check" {
		t.Errorf("content[1] = %+v, want the original text block", content[1])
	}
	if content[2].Type != BlockToolUse || content[2].ID != "a" {
		t.Errorf("content[2] = %+v, want the original tool_use block", content[2])
	}

	// The user turn is untouched and the input slice is not mutated.
	if !reflect.DeepEqual(got[0], msgs[0]) {
		t.Errorf("user turn changed: %+v", got[0])
	}
	if len(msgs[1].Content) != 2 {
		t.Errorf("input message was mutated: len = %d, want 2", len(msgs[1].Content))
	}
}

func TestEnforceThinkingOrderDisabled(t *testing.T) {
	msgs := []MessageParam{
		{Role: RoleAssistant, Content: []ContentBlock{toolUseBlock("a", "wallet_balance")}},
	}

	got := EnforceThinkingOrder(msgs, Strategy{UseExtendedThinking: false})

	if len(got) != 1 || len(got[0].Content) != 1 || got[0].Content[0].Type != BlockToolUse {
		t.Errorf("messages changed with extended thinking off: %+v", got)
	}
}

func TestEnforceThinkingOrderSkipsToolFreeTurns(t *testing.T) {
	msgs := []MessageParam{
		{Role: RoleAssistant, Content: []ContentBlock{textBlock("hello!")}},
	}

	got := EnforceThinkingOrder(msgs, Strategy{UseExtendedThinking: true})

	want := []ContentBlock{textBlock("hello!")}
	if !reflect.DeepEqual(got[0].Content, want) {
		t.Errorf("tool-free turn changed: %+v", got[0].Content)
	}
}

func TestEnforceThinkingOrderKeepsCompliantTurns(t *testing.T) {
	tests := []struct {
		name  string
		first ContentBlock
	}{
		{name: "thinking first", first: ContentBlock{Type: BlockThinking, Thinking: "checking the wallet"}},
		{name: "redacted thinking first", first: ContentBlock{Type: BlockRedactedThinking}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs := []MessageParam{
				{Role: RoleAssistant, Content: []ContentBlock{tt.first, toolUseBlock("a", "wallet_balance")}},
			}

			got := EnforceThinkingOrder(msgs, Strategy{UseExtendedThinking: true})

			if !reflect.DeepEqual(got[0].Content, msgs[0].Content) {
				t.Errorf("compliant turn changed: %+v", got[0].Content)
			}
		})
	}
}

func TestEnforceThinkingOrderIdempotent(t *testing.T) {
	msgs := []MessageParam{
		{Role: RoleUser, Content: []ContentBlock{textBlock("send 5 USD to mia")}},
		{Role: RoleAssistant, Content: []ContentBlock{toolUseBlock("a", "send_payment")}},
		{Role: RoleAssistant, Content: []ContentBlock{textBlock("done")}},
	}

	once := EnforceThinkingOrder(msgs, Strategy{UseExtendedThinking: true})
	twice := EnforceThinkingOrder(once, Strategy{UseExtendedThinking: true})

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second pass changed output:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestStrategyThinkingConfig(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		want     *ThinkingConfig
	}{
		{
			name:     "disabled",
			strategy: Strategy{UseExtendedThinking: false, BudgetTokens: 8192},
			want:     nil,
		},
		{
			name:     "enabled with budget",
			strategy: Strategy{UseExtendedThinking: true, BudgetTokens: 8192},
			want:     &ThinkingConfig{Type: "enabled", BudgetTokens: 8192},
		},
		{
			name:     "enabled without budget uses default",
			strategy: Strategy{UseExtendedThinking: true},
			want:     &ThinkingConfig{Type: "enabled", BudgetTokens: defaultThinkingBudget},
		},
		{
			name:     "budget below minimum is raised",
			strategy: Strategy{UseExtendedThinking: true, BudgetTokens: 100},
			want:     &ThinkingConfig{Type: "enabled", BudgetTokens: minThinkingBudget},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.strategy.ThinkingConfig()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ThinkingConfig() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

package anthropic

// placeholderThinking is the deterministic text used when a thinking block
// has to be synthesized.
const placeholderThinking = "Processing tool invocation."

// Thinking budget bounds in tokens. The API rejects budgets under the
// minimum.
const (
	defaultThinkingBudget = 4096
	minThinkingBudget     = 1024
)

// Strategy carries the reasoning settings of the selected model for one
// request.
type Strategy struct {
	UseExtendedThinking bool
	BudgetTokens        int
}

// ThinkingConfig returns the request thinking configuration, or nil when
// extended thinking is off.
func (s Strategy) ThinkingConfig() *ThinkingConfig {
	if !s.UseExtendedThinking {
		return nil
	}
	budget := s.BudgetTokens
	if budget <= 0 {
		budget = defaultThinkingBudget
	}
	if budget < minThinkingBudget {
		budget = minThinkingBudget
	}
	return &ThinkingConfig{Type: "enabled", BudgetTokens: budget}
}

// EnforceThinkingOrder rewrites wire messages so that every assistant turn
// carrying a tool_use block starts with a thinking block, as the API
// requires under extended thinking.
//
// The conversion out of stored form does not forward reasoning text, so a
// compliant conversation can arrive here violating that rule. Turns without
// tool_use blocks are never touched; a synthesized thinking block on a
// tool-free turn would misrepresent the assistant's output. The rewrite is
// idempotent and a no-op when extended thinking is off.
func EnforceThinkingOrder(msgs []MessageParam, strategy Strategy) []MessageParam {
	if !strategy.UseExtendedThinking {
		return msgs
	}

	out := make([]MessageParam, len(msgs))
	copy(out, msgs)
	for i, msg := range out {
		if msg.Role != RoleAssistant {
			continue
		}
		if !hasToolUse(msg.Content) {
			continue
		}
		if len(msg.Content) > 0 && isThinkingBlock(msg.Content[0]) {
			continue
		}

		content := make([]ContentBlock, 0, len(msg.Content)+1)
		content = append(content, ContentBlock{Type: BlockThinking, Thinking: placeholderThinking})
		content = append(content, msg.Content...)
		out[i].Content = content
	}
	return out
}

func hasToolUse(content []ContentBlock) bool {
	for _, block := range content {
		if block.Type == BlockToolUse {
			return true
		}
	}
	return false
}

func isThinkingBlock(block ContentBlock) bool {
	return block.Type == BlockThinking || block.Type == BlockRedactedThinking
}

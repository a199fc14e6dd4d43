package anthropic

import (
	"encoding/json"
	"strings"

	"github.com/parleyhq/parley/internal/message"
)

// FromMessages converts a stored conversation into wire messages plus the
// collected system text.
//
// Reasoning parts are not forwarded; when the request runs under extended
// thinking, EnforceThinkingOrder reinstates a leading thinking block on
// turns that need one. Tool role messages become user turns carrying
// tool_result blocks, matching the wire contract. Legacy messages already
// hold wire vocabulary blocks and pass through as-is.
func FromMessages(messages []*message.Message) (string, []MessageParam) {
	var systemParts []string
	out := make([]MessageParam, 0, len(messages))

	for _, msg := range messages {
		if msg == nil {
			continue
		}

		switch msg.Role {
		case message.RoleSystem:
			if text := msg.TextContent(); text != "" {
				systemParts = append(systemParts, text)
			}
			continue
		case message.RoleAssistant:
			out = append(out, MessageParam{
				Role:    RoleAssistant,
				Content: contentBlocks(msg),
			})
		default:
			// User and tool roles both travel as user turns.
			out = append(out, MessageParam{
				Role:    RoleUser,
				Content: contentBlocks(msg),
			})
		}
	}

	return strings.Join(systemParts, "\n\n"), out
}

func contentBlocks(msg *message.Message) []ContentBlock {
	if len(msg.Parts) == 0 {
		if blocks := legacyBlocks(msg.Content); blocks != nil {
			return blocks
		}
		return []ContentBlock{{Type: BlockText, Text: ""}}
	}

	blocks := make([]ContentBlock, 0, len(msg.Parts))
	for _, p := range msg.Parts {
		switch p.Type {
		case message.PartTypeText:
			blocks = append(blocks, ContentBlock{Type: BlockText, Text: p.Text})
		case message.PartTypeToolCall:
			if p.ToolCall == nil {
				continue
			}
			blocks = append(blocks, ContentBlock{
				Type:  BlockToolUse,
				ID:    p.ToolCall.ID,
				Name:  p.ToolCall.Name,
				Input: toolInput(p.ToolCall.Input),
			})
		case message.PartTypeToolResult:
			if p.ToolResult == nil {
				continue
			}
			blocks = append(blocks, ContentBlock{
				Type:      BlockToolResult,
				ToolUseID: p.ToolResult.ToolCallID,
				Content:   p.ToolResult.Content,
				IsError:   p.ToolResult.IsError,
			})
		case message.PartTypeReasoning:
			// Dropped. The wire thinking block requires a provider
			// signature we do not hold for stored reasoning text.
			continue
		}
	}

	if len(blocks) == 0 {
		blocks = append(blocks, ContentBlock{Type: BlockText, Text: ""})
	}
	return blocks
}

// legacyBlocks decodes a legacy nested content array. Old releases stored
// the wire blocks directly, so no part mapping is needed.
func legacyBlocks(raw []byte) []ContentBlock {
	if len(raw) == 0 {
		return nil
	}
	var blocks []ContentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil
	}
	if len(blocks) == 0 {
		return nil
	}
	return blocks
}

// toolInput normalizes stored tool call input to a JSON object. The wire
// contract requires input to be an object, never absent or free text.
func toolInput(input string) json.RawMessage {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" || !json.Valid([]byte(trimmed)) {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(trimmed)
}

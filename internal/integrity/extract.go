package integrity

import (
	"github.com/tidwall/gjson"

	"github.com/parleyhq/parley/internal/message"
)

// ToolCallIDs returns the tool call correlation ids of a message, in the
// order the calls appear. Only assistant messages carry tool calls; any
// other role yields an empty list.
//
// Both message shapes are handled here: the flat Parts slice and the legacy
// nested content array (tool_use blocks). Downstream stages never branch on
// shape themselves.
func ToolCallIDs(msg *message.Message) []string {
	if msg == nil || msg.Role != message.RoleAssistant {
		return nil
	}
	if len(msg.Parts) > 0 {
		var ids []string
		for _, call := range msg.ToolCalls() {
			ids = append(ids, call.ID)
		}
		return ids
	}
	return legacyBlockIDs(msg.Content, "tool_use", "id")
}

// ToolResultIDs returns the tool result correlation ids of a message, in
// order. Results ride on user and tool role messages; any other role yields
// an empty list.
func ToolResultIDs(msg *message.Message) []string {
	if msg == nil {
		return nil
	}
	if msg.Role != message.RoleUser && msg.Role != message.RoleTool {
		return nil
	}
	if len(msg.Parts) > 0 {
		var ids []string
		for _, result := range msg.ToolResults() {
			ids = append(ids, result.ToolCallID)
		}
		return ids
	}
	return legacyBlockIDs(msg.Content, "tool_result", "tool_use_id")
}

// legacyBlockIDs pulls ids out of a raw legacy content array. Malformed or
// non-array payloads yield nil, as do blocks missing the id key.
func legacyBlockIDs(raw []byte, blockType, idKey string) []string {
	if len(raw) == 0 {
		return nil
	}
	parsed := gjson.ParseBytes(raw)
	if !parsed.IsArray() {
		return nil
	}
	var ids []string
	parsed.ForEach(func(_, block gjson.Result) bool {
		if block.Get("type").String() != blockType {
			return true
		}
		if id := block.Get(idKey).String(); id != "" {
			ids = append(ids, id)
		}
		return true
	})
	return ids
}

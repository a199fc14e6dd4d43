package integrity

import (
	"github.com/parleyhq/parley/internal/message"
)

// Validate walks a conversation in order and checks every tool pairing
// invariant. Order is the only adjacency signal; timestamps are ignored.
//
// For each assistant message with tool calls, the immediately following
// message must exist, must not be an assistant message, and must contain a
// tool result for every call id. Tool results with no matching call in the
// preceding message are warnings, not errors.
func Validate(conversation []*message.Message) Report {
	report := Report{IsValid: true}

	for i, msg := range conversation {
		callIDs := ToolCallIDs(msg)
		if len(callIDs) == 0 {
			continue
		}

		if i+1 >= len(conversation) {
			for _, id := range callIDs {
				report.Errors = append(report.Errors, Finding{
					Kind:         KindTrailingToolCall,
					ToolCallID:   id,
					MessageIndex: i,
					Reason:       ReasonTrailingToolCall,
				})
			}
			continue
		}

		next := conversation[i+1]
		if next != nil && next.Role == message.RoleAssistant {
			for _, id := range callIDs {
				report.Errors = append(report.Errors, Finding{
					Kind:         KindRoleMismatch,
					ToolCallID:   id,
					MessageIndex: i,
					Reason:       ReasonRoleMismatch,
				})
			}
			continue
		}

		resultSet := idSet(ToolResultIDs(next))
		for _, id := range callIDs {
			if !resultSet[id] {
				report.Errors = append(report.Errors, Finding{
					Kind:         KindMissingToolResult,
					ToolCallID:   id,
					MessageIndex: i,
					Reason:       ReasonMissingToolResult,
				})
			}
		}
	}

	// Orphan pass: results whose id has no matching call in the preceding
	// message. Flagged only, never fatal; repairing them would mean guessing
	// intent about history the caller may still need.
	for i, msg := range conversation {
		resultIDs := ToolResultIDs(msg)
		if len(resultIDs) == 0 {
			continue
		}

		var callSet map[string]bool
		if i > 0 {
			callSet = idSet(ToolCallIDs(conversation[i-1]))
		}
		for _, id := range resultIDs {
			if !callSet[id] {
				report.Warnings = append(report.Warnings, Finding{
					Kind:         KindOrphanToolResult,
					ToolCallID:   id,
					MessageIndex: i,
					Reason:       ReasonOrphanToolResult,
				})
			}
		}
	}

	report.IsValid = len(report.Errors) == 0
	return report
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

package integrity

import (
	"github.com/parleyhq/parley/internal/message"
)

// Repair removes exactly the tool call parts the validator flagged,
// leaving every other part and every clean message untouched. Untouched
// messages alias the input; a repaired message is a fresh value with a
// rebuilt parts slice.
//
// Legacy content-only messages pass through unchanged and contribute zero
// fixes. A parts slice is never synthesized where none existed.
func Repair(conversation []*message.Message) ([]*message.Message, []Fix) {
	return repairWithReport(conversation, Validate(conversation))
}

// repairWithReport applies fixes for an already computed report, so the
// orchestrator does not validate twice.
func repairWithReport(conversation []*message.Message, report Report) ([]*message.Message, []Fix) {
	if len(report.Errors) == 0 {
		return conversation, nil
	}

	remove := make(map[int]map[string]bool)
	for _, f := range report.Errors {
		ids := remove[f.MessageIndex]
		if ids == nil {
			ids = make(map[string]bool)
			remove[f.MessageIndex] = ids
		}
		ids[f.ToolCallID] = true
	}

	fixed := make([]*message.Message, len(conversation))
	var fixes []Fix
	for i, msg := range conversation {
		ids := remove[i]
		if len(ids) == 0 || msg == nil || len(msg.Parts) == 0 {
			fixed[i] = msg
			continue
		}

		repaired := *msg
		parts := make([]message.Part, 0, len(msg.Parts))
		for _, p := range msg.Parts {
			if p.Type == message.PartTypeToolCall && p.ToolCall != nil && ids[p.ToolCall.ID] {
				fixes = append(fixes, Fix{ToolCallID: p.ToolCall.ID, MessageIndex: i})
				continue
			}
			parts = append(parts, p)
		}
		repaired.Parts = parts
		fixed[i] = &repaired
	}

	return fixed, fixes
}

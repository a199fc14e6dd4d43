// Package integrity validates and repairs tool call/result pairing in
// conversation histories before they are submitted upstream.
//
// Histories are persisted, edited, trimmed, and reloaded across sessions,
// so by submission time a tool call can be missing its result, trail the
// conversation, or be followed by the wrong role. The upstream API rejects
// such histories outright. This package walks a conversation, reports every
// violation as data, and optionally removes the offending tool call parts.
// It never raises on malformed input and keeps no state between calls.
package integrity

// Kind classifies a pairing finding.
type Kind string

// Finding kinds.
const (
	KindMissingToolResult Kind = "missing_tool_result"
	KindTrailingToolCall  Kind = "trailing_tool_call"
	KindRoleMismatch      Kind = "role_mismatch"
	KindOrphanToolResult  Kind = "orphan_tool_result"
)

// Stable reason strings carried by findings. Tests and telemetry match on
// these exact values.
const (
	ReasonMissingToolResult = "not found in tool_result blocks"
	ReasonTrailingToolCall  = "no following message"
	ReasonRoleMismatch      = "next message is assistant"
	ReasonOrphanToolResult  = "no matching tool_call block"
)

// Finding describes a single pairing violation.
type Finding struct {
	Kind         Kind   `json:"kind"`
	ToolCallID   string `json:"tool_call_id"`
	MessageIndex int    `json:"message_index"`
	Reason       string `json:"reason"`
}

// Report is the outcome of validating a conversation.
//
// Errors follow message order, then the order tool call ids appeared within
// the message. That ordering is part of the contract. Warnings never affect
// IsValid.
type Report struct {
	IsValid  bool      `json:"is_valid"`
	Errors   []Finding `json:"errors"`
	Warnings []Finding `json:"warnings"`
}

// ErrorIDs returns the tool call ids of all errors, in report order.
func (r Report) ErrorIDs() []string {
	ids := make([]string, len(r.Errors))
	for i, f := range r.Errors {
		ids[i] = f.ToolCallID
	}
	return ids
}

// Fix records one tool call part removed by the repairer.
type Fix struct {
	ToolCallID   string `json:"tool_call_id"`
	MessageIndex int    `json:"message_index"`
}

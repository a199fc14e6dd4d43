package integrity

import (
	"github.com/parleyhq/parley/internal/debug"
	"github.com/parleyhq/parley/internal/logging"
	"github.com/parleyhq/parley/internal/message"
)

// Options configures a ValidateAndFix pass.
type Options struct {
	// FixErrors enables repair. When false the conversation is returned
	// unchanged alongside the report, for observe-only callers.
	FixErrors bool

	// LogErrors gates diagnostic emission. It never changes returned data.
	LogErrors bool
}

// Result bundles the outcome of a ValidateAndFix pass.
//
// Validation always reflects the pre-fix state of the conversation; callers
// that need the post-fix state re-validate explicitly.
type Result struct {
	Conversation []*message.Message
	Validation   Report
	FixesApplied []Fix
}

// Orchestrator composes the validator and repairer behind one entry point.
type Orchestrator struct {
	log *logging.Logger
}

// NewOrchestrator creates an orchestrator. A nil logger disables structured
// diagnostics without disabling the pass itself.
func NewOrchestrator(log *logging.Logger) *Orchestrator {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Orchestrator{log: log}
}

// ValidateAndFix validates a conversation and, when requested, repairs it.
func (o *Orchestrator) ValidateAndFix(conversation []*message.Message, opts Options) Result {
	report := Validate(conversation)

	if opts.LogErrors {
		o.emit(report)
	}

	result := Result{
		Conversation: conversation,
		Validation:   report,
	}
	if !opts.FixErrors {
		return result
	}

	fixedConversation, fixes := repairWithReport(conversation, report)
	result.Conversation = fixedConversation
	result.FixesApplied = fixes

	if opts.LogErrors && len(fixes) > 0 {
		o.log.Info("removed unresolved tool calls",
			logging.Int("fixes", len(fixes)))
		debug.Log("integrity: removed %d unresolved tool calls", len(fixes))
	}

	return result
}

func (o *Orchestrator) emit(report Report) {
	if report.IsValid && len(report.Warnings) == 0 {
		return
	}

	for _, f := range report.Errors {
		o.log.Warn("tool pairing violation",
			logging.String("tool_call_id", f.ToolCallID),
			logging.Int("message_index", f.MessageIndex),
			logging.String("reason", f.Reason))
	}
	if len(report.Warnings) > 0 {
		o.log.Info("orphan tool results in history",
			logging.Int("count", len(report.Warnings)))
	}
	debug.Log("integrity: %d errors, %d warnings", len(report.Errors), len(report.Warnings))
}

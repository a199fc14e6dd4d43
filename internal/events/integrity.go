package events

import "time"

// IntegrityEventType represents integrity check event types.
type IntegrityEventType string

// Integrity event type constants.
const (
	IntegrityEventCheckStarted    IntegrityEventType = "check_started"
	IntegrityEventViolationsFound IntegrityEventType = "violations_found"
	IntegrityEventRepaired        IntegrityEventType = "repaired"
	IntegrityEventClean           IntegrityEventType = "clean"
)

// IntegrityEvent represents the outcome of a conversation integrity check.
type IntegrityEvent struct {
	SessionID string
	Type      IntegrityEventType
	Timestamp time.Time

	// Counts from the check (zero for CheckStarted)
	ErrorCount   int
	WarningCount int
	FixCount     int // For Repaired
}

// NewCheckStartedEvent creates a check started event.
func NewCheckStartedEvent(sessionID string) IntegrityEvent {
	return IntegrityEvent{
		SessionID: sessionID,
		Type:      IntegrityEventCheckStarted,
		Timestamp: time.Now(),
	}
}

// NewViolationsFoundEvent creates a violations found event.
func NewViolationsFoundEvent(sessionID string, errorCount, warningCount int) IntegrityEvent {
	return IntegrityEvent{
		SessionID:    sessionID,
		Type:         IntegrityEventViolationsFound,
		ErrorCount:   errorCount,
		WarningCount: warningCount,
		Timestamp:    time.Now(),
	}
}

// NewRepairedEvent creates a repaired event.
func NewRepairedEvent(sessionID string, fixCount int) IntegrityEvent {
	return IntegrityEvent{
		SessionID: sessionID,
		Type:      IntegrityEventRepaired,
		FixCount:  fixCount,
		Timestamp: time.Now(),
	}
}

// NewCleanEvent creates a clean check event.
func NewCleanEvent(sessionID string, warningCount int) IntegrityEvent {
	return IntegrityEvent{
		SessionID:    sessionID,
		Type:         IntegrityEventClean,
		WarningCount: warningCount,
		Timestamp:    time.Now(),
	}
}

package audit

import (
	"context"
	"time"

	id "renalmatch/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance.
	// Match verdicts are medical decisions and require durable retention.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers events useful for debugging and operational
	// visibility. Profile submissions fall here.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key state transitions.
// Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category     EventCategory `json:"category"`
	Timestamp    time.Time     `json:"timestamp"`
	SessionID    id.SessionID  `json:"session_id"`
	HospitalID   id.HospitalID `json:"hospital_id"`
	Action       string        `json:"action"`
	Reason       string        `json:"reason,omitempty"`
	Score        *int          `json:"score,omitempty"`
	HardExcluded bool          `json:"hard_excluded,omitempty"`
	Superseded   bool          `json:"superseded,omitempty"`
	RequestID    string        `json:"request_id,omitempty"`
}

// AuditEvent names every action the matching engine emits.
type AuditEvent string

const (
	// Profile events
	EventDonorRecorded   AuditEvent = "donor_recorded"
	EventPatientRecorded AuditEvent = "patient_recorded"

	// Verdict events
	EventMatched    AuditEvent = "match_matched"
	EventNotMatched AuditEvent = "match_not_matched"
)

// eventCategories maps each audit event to its category.
// Compliance: verdicts, which drive clinical decisions downstream.
// Operations: routine profile activity.
var eventCategories = map[AuditEvent]EventCategory{
	EventDonorRecorded:   CategoryOperations,
	EventPatientRecorded: CategoryOperations,
	EventMatched:         CategoryCompliance,
	EventNotMatched:      CategoryCompliance,
}

// CategoryFor returns the category for a known event, defaulting to
// operations for anything unmapped.
func CategoryFor(event AuditEvent) EventCategory {
	if c, ok := eventCategories[event]; ok {
		return c
	}
	return CategoryOperations
}

// Store persists audit events for later inspection or outbox relay.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Publisher delivers events to an external sink (ledger, broker, log).
// Delivery is best-effort from the engine's perspective: a failed Emit must
// never roll back the committed in-memory state transition.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
	Close() error
}

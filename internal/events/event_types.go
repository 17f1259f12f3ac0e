package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated           EventType = "ticket_created"
	EventTicketForwarded         EventType = "ticket_forwarded"
	EventTicketStatusChanged     EventType = "ticket_status_changed"
	EventAssignmentCreated       EventType = "assignment_created"
	EventAssignmentStatusChanged EventType = "assignment_status_changed"
	EventProofSubmitted          EventType = "proof_submitted"
	EventReminderSent            EventType = "reminder_sent"
	EventWorkInstructionIssued   EventType = "work_instruction_issued"
	EventTicketResponded         EventType = "ticket_responded"
	EventSatisfactionRecorded    EventType = "satisfaction_recorded"
	EventInboxMessageSent        EventType = "inbox_message_sent"
)

// AllEventTypes lists every event a service may publish.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketForwarded,
	EventTicketStatusChanged,
	EventAssignmentCreated,
	EventAssignmentStatusChanged,
	EventProofSubmitted,
	EventReminderSent,
	EventWorkInstructionIssued,
	EventTicketResponded,
	EventSatisfactionRecorded,
	EventInboxMessageSent,
}

// Event represents a domain event emitted by services. Recipients are the
// users a push notification should reach.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	ActorID    string      `json:"actor_id,omitempty"`
	TicketID   string      `json:"ticket_id,omitempty"`
	Recipients []string    `json:"recipients,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Type     domain.TicketType     `json:"type"`
	Priority domain.TicketPriority `json:"priority"`
	Deadline *time.Time            `json:"deadline,omitempty"`
}

// TicketForwardedPayload payload.
type TicketForwardedPayload struct {
	PreviousRecipients []string      `json:"previous_recipients"`
	RecipientID        string        `json:"recipient_id"`
	Rights             domain.Rights `json:"rights"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// AssignmentCreatedPayload payload.
type AssignmentCreatedPayload struct {
	AssignmentID string     `json:"assignment_id"`
	Priority     string     `json:"priority"`
	TargetDate   *time.Time `json:"target_date,omitempty"`
}

// AssignmentStatusChangedPayload payload.
type AssignmentStatusChangedPayload struct {
	AssignmentID string                  `json:"assignment_id"`
	OldStatus    domain.AssignmentStatus `json:"old_status"`
	NewStatus    domain.AssignmentStatus `json:"new_status"`
}

// ProofSubmittedPayload payload.
type ProofSubmittedPayload struct {
	ProofID           string  `json:"proof_id"`
	WorkInstructionID *string `json:"work_instruction_id,omitempty"`
}

// ReminderSentPayload payload.
type ReminderSentPayload struct {
	ReminderID string `json:"reminder_id"`
	Count      int    `json:"count"`
}

// WorkInstructionIssuedPayload payload.
type WorkInstructionIssuedPayload struct {
	WorkInstructionID string               `json:"work_instruction_id"`
	ReviewTime        domain.ReviewCadence `json:"review_time"`
}

// TicketRespondedPayload payload.
type TicketRespondedPayload struct {
	ResponseID string `json:"response_id"`
}

// SatisfactionRecordedPayload payload.
type SatisfactionRecordedPayload struct {
	SatisfactionID string `json:"satisfaction_id"`
	Status         string `json:"status"`
}

// InboxMessageSentPayload payload.
type InboxMessageSentPayload struct {
	ItemID string           `json:"item_id"`
	Kind   domain.InboxKind `json:"kind"`
}

package domain

import (
	"strings"
	"time"
)

// TicketType classifies the work a ticket requests.
type TicketType string

const (
	TicketTypeTechnical TicketType = "technical"
	TicketTypeBilling   TicketType = "billing"
	TicketTypeGeneral   TicketType = "general"
	TicketTypeOther     TicketType = "other"
	TicketTypeComplaint TicketType = "Complaint"
)

// TicketTypes lists every accepted ticket type in canonical form.
var TicketTypes = []TicketType{
	TicketTypeTechnical,
	TicketTypeBilling,
	TicketTypeGeneral,
	TicketTypeOther,
	TicketTypeComplaint,
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityVeryUrgent TicketPriority = "Very Urgent"
	TicketPriorityNormal     TicketPriority = "Normal"
	TicketPriorityUrgent     TicketPriority = "Urgent"
)

var ticketPriorities = []TicketPriority{
	TicketPriorityVeryUrgent,
	TicketPriorityNormal,
	TicketPriorityUrgent,
}

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending   TicketStatus = "pending"
	TicketStatusActive    TicketStatus = "Active"
	TicketStatusAssign    TicketStatus = "Assign"
	TicketStatusWorking   TicketStatus = "Working"
	TicketStatusCompleted TicketStatus = "Completed"
	TicketStatusRejected  TicketStatus = "rejected"
	TicketStatusTraining  TicketStatus = "training"
	TicketStatusResolved  TicketStatus = "resolved"
)

// TicketStatuses lists every accepted ticket status in canonical form.
var TicketStatuses = []TicketStatus{
	TicketStatusPending,
	TicketStatusActive,
	TicketStatusAssign,
	TicketStatusWorking,
	TicketStatusCompleted,
	TicketStatusRejected,
	TicketStatusTraining,
	TicketStatusResolved,
}

// DelegatedStatuses are the ticket statuses that mark a ticket as handed on
// through an assignment.
var DelegatedStatuses = []TicketStatus{TicketStatusAssign}

// OpenStatuses are the statuses counted per type on recipient and creator dashboards.
var OpenStatuses = []TicketStatus{TicketStatusActive, TicketStatusPending}

// Rights describes what the current holder of a ticket may do with it.
type Rights string

const (
	RightsView    Rights = "View"
	RightsForward Rights = "Forward"
	RightsPower   Rights = "Power"
)

// MediaRefs holds the URLs of media attached to a record.
type MediaRefs struct {
	VoiceNoteURL *string
	VideoURL     *string
	ImageURL     *string
}

// Ticket is a work request addressed to one or more recipients.
type Ticket struct {
	ID           string
	CreatorID    string
	RecipientIDs []string
	Type         TicketType
	Description  string
	Priority     TicketPriority
	Deadline     *time.Time
	Media        MediaRefs
	Status       TicketStatus
	Rights       *Rights
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRecipient reports whether userID is one of the ticket's recipients.
func (t *Ticket) HasRecipient(userID string) bool {
	for _, id := range t.RecipientIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsDelegated reports whether the status is in the delegated set.
func (s TicketStatus) IsDelegated() bool {
	for _, d := range DelegatedStatuses {
		if s == d {
			return true
		}
	}
	return false
}

// ParseTicketType matches v case-insensitively against the known types.
func ParseTicketType(v string) (TicketType, bool) {
	return matchFold(v, TicketTypes)
}

// ParseTicketPriority matches v case-insensitively against the known priorities.
func ParseTicketPriority(v string) (TicketPriority, bool) {
	return matchFold(v, ticketPriorities)
}

// ParseTicketStatus canonicalizes v. "complete" is accepted for Completed.
func ParseTicketStatus(v string) (TicketStatus, bool) {
	if strings.EqualFold(strings.TrimSpace(v), "complete") {
		return TicketStatusCompleted, true
	}
	return matchFold(v, TicketStatuses)
}

// ParseRights accepts only the exact rights names.
func ParseRights(v string) (Rights, bool) {
	switch r := Rights(strings.TrimSpace(v)); r {
	case RightsView, RightsForward, RightsPower:
		return r, true
	}
	return "", false
}

func matchFold[T ~string](v string, options []T) (T, bool) {
	v = strings.TrimSpace(v)
	for _, opt := range options {
		if strings.EqualFold(v, string(opt)) {
			return opt, true
		}
	}
	var zero T
	return zero, false
}

package domain

import "time"

// ResponseStatusPending is the status of a new ticket response.
const ResponseStatusPending = "pending"

// SatisfactionStatusCompleted is the status of a new satisfaction record.
const SatisfactionStatusCompleted = "Completed"

// TicketResponse is a reply from the responder back to the ticket's author.
type TicketResponse struct {
	ID          string
	TicketID    string
	AuthorID    string
	ResponderID string
	Type        string
	Description string
	Priority    TicketPriority
	Deadline    *time.Time
	Media       MediaRefs
	Status      string
	Rights      *Rights
	CreatedAt   time.Time
}

// Satisfaction records the author's verdict on how a ticket was handled.
type Satisfaction struct {
	ID          string
	TicketID    string
	AuthorID    string
	ResponderID string
	Type        string
	Description string
	Priority    TicketPriority
	Media       MediaRefs
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

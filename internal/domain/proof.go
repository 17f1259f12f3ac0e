package domain

import "time"

// Proof is evidence submitted against a ticket. Only TicketID is guaranteed.
type Proof struct {
	ID                string
	TicketID          string
	SubmitterID       *string
	RecipientID       *string
	WorkInstructionID *string
	RecipientName     *string
	Remarks           *string
	Media             MediaRefs
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

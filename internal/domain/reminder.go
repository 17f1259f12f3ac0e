package domain

import "time"

// MaxReminderCount caps how many times a recipient is reminded about a ticket.
const MaxReminderCount = 3

// Reminder counts nudges sent by one user to another about a ticket.
type Reminder struct {
	ID          string
	TicketID    string
	SenderID    string
	RecipientID string
	Count       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Capped reports whether no further reminders may be sent.
func (r *Reminder) Capped() bool {
	return r.Count >= MaxReminderCount
}

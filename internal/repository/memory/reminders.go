package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type reminderKey struct {
	ticket, sender, recipient string
}

// ReminderRepository stores reminder counters keyed by triple.
type ReminderRepository struct {
	mu        sync.Mutex
	clock     Clock
	reminders map[reminderKey]domain.Reminder
}

var _ repository.ReminderRepository = (*ReminderRepository)(nil)

// NewReminderRepository returns an empty store.
func NewReminderRepository(clock Clock) *ReminderRepository {
	return &ReminderRepository{clock: clock, reminders: make(map[reminderKey]domain.Reminder)}
}

func (r *ReminderRepository) Get(_ context.Context, ticketID, senderID, recipientID string) (*domain.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rem, ok := r.reminders[reminderKey{ticketID, senderID, recipientID}]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &rem, nil
}

func (r *ReminderRepository) Create(_ context.Context, reminder *domain.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := reminderKey{reminder.TicketID, reminder.SenderID, reminder.RecipientID}
	if _, exists := r.reminders[key]; exists {
		return uniqueViolation("reminders_ticket_id_sender_id_recipient_id_key")
	}
	now := r.clock.now()
	reminder.ID = newID()
	reminder.CreatedAt = now
	reminder.UpdatedAt = now
	r.reminders[key] = *reminder
	return nil
}

func (r *ReminderRepository) UpdateCount(_ context.Context, reminder *domain.Reminder, from, to int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := reminderKey{reminder.TicketID, reminder.SenderID, reminder.RecipientID}
	stored, ok := r.reminders[key]
	if !ok || stored.ID != reminder.ID || stored.Count != from {
		return false, nil
	}
	stored.Count = to
	stored.UpdatedAt = r.clock.now()
	r.reminders[key] = stored
	*reminder = stored
	return true, nil
}

func (r *ReminderRepository) ListByTicket(_ context.Context, ticketID string) ([]domain.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Reminder
	for _, rem := range r.reminders {
		if rem.TicketID == ticketID {
			out = append(out, rem)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const reminderAttempts = 5

// ReminderService counts escalation nudges per ticket, sender and recipient.
type ReminderService struct {
	reminders repository.ReminderRepository
	tickets   repository.TicketRepository
	users     repository.UserRepository
	rt        Runtime
}

// ReminderDependencies bundles repositories.
type ReminderDependencies struct {
	ReminderRepo repository.ReminderRepository
	TicketRepo   repository.TicketRepository
	UserRepo     repository.UserRepository
	Runtime      Runtime
}

// ReminderResult is the counter after a send. Capped is set when the limit
// had already been reached and nothing changed.
type ReminderResult struct {
	Reminder domain.Reminder
	Capped   bool
}

// ReminderView joins a reminder with its ticket and sender.
type ReminderView struct {
	Reminder domain.Reminder
	Ticket   *TicketBrief
	Sender   *domain.Profile
}

// NewReminderService creates the service.
func NewReminderService(deps ReminderDependencies) *ReminderService {
	return &ReminderService{
		reminders: deps.ReminderRepo,
		tickets:   deps.TicketRepo,
		users:     deps.UserRepo,
		rt:        deps.Runtime,
	}
}

// SendReminder creates the counter at one or increments it up to
// domain.MaxReminderCount. Past the cap it reports Capped without writing.
func (s *ReminderService) SendReminder(ctx context.Context, ticketID, senderID, recipientID string) (*ReminderResult, error) {
	if missing := missingFields(
		"ticket_id", ticketID,
		"sender_id", senderID,
		"recipient_id", recipientID,
	); len(missing) > 0 {
		return nil, apperrors.NewMissingFields(missing...)
	}
	ticketID = strings.TrimSpace(ticketID)
	senderID = strings.TrimSpace(senderID)
	recipientID = strings.TrimSpace(recipientID)
	if !isWellFormedID(ticketID) {
		return nil, apperrors.NewInvalidField("ticket_id", "ticket id is malformed")
	}

	for attempt := 0; attempt < reminderAttempts; attempt++ {
		current, err := s.reminders.Get(ctx, ticketID, senderID, recipientID)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			rem := &domain.Reminder{TicketID: ticketID, SenderID: senderID, RecipientID: recipientID, Count: 1}
			if err := s.reminders.Create(ctx, rem); err != nil {
				if apperrors.IsCode(apperrors.MapError(err), apperrors.CodeConflict) {
					continue
				}
				return nil, apperrors.MapError(err)
			}
			s.published(ctx, rem)
			return &ReminderResult{Reminder: *rem}, nil
		case err != nil:
			return nil, apperrors.MapError(err)
		}

		if current.Capped() {
			return &ReminderResult{Reminder: *current, Capped: true}, nil
		}
		ok, err := s.reminders.UpdateCount(ctx, current, current.Count, current.Count+1)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if ok {
			s.published(ctx, current)
			return &ReminderResult{Reminder: *current}, nil
		}
	}

	s.rt.logger().Warn("reminder update kept losing races",
		zap.String("ticket_id", ticketID),
		zap.String("sender_id", senderID),
		zap.String("recipient_id", recipientID))
	return nil, apperrors.NewInternalError(errors.New("reminder contention"))
}

func (s *ReminderService) published(ctx context.Context, rem *domain.Reminder) {
	s.rt.publishEvent(ctx, events.Event{
		Type:       events.EventReminderSent,
		ActorID:    rem.SenderID,
		TicketID:   rem.TicketID,
		Recipients: []string{rem.RecipientID},
		Payload:    events.ReminderSentPayload{ReminderID: rem.ID, Count: rem.Count},
	})
}

// ListReminders returns the ticket's reminders, most recently updated first.
func (s *ReminderService) ListReminders(ctx context.Context, ticketID string) ([]ReminderView, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return nil, apperrors.NewMissingFields("ticket_id")
	}
	if !isWellFormedID(ticketID) {
		return nil, apperrors.NewInvalidField("ticket_id", "ticket id is malformed")
	}
	list, err := s.reminders.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	senderIDs := make([]string, 0, len(list))
	for _, r := range list {
		senderIDs = append(senderIDs, r.SenderID)
	}
	tickets, err := loadTickets(ctx, s.tickets, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	profiles, err := loadProfiles(ctx, s.users, senderIDs...)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	brief := briefOf(tickets[ticketID])
	out := make([]ReminderView, 0, len(list))
	for _, r := range list {
		out = append(out, ReminderView{Reminder: r, Ticket: brief, Sender: profileRef(profiles, r.SenderID)})
	}
	return out, nil
}

package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/cache"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	assignments repository.AssignmentRepository
	users       repository.UserRepository
	cache       *cache.DashboardCache
	rt          Runtime
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	AssignmentRepo repository.AssignmentRepository
	UserRepo       repository.UserRepository
	Cache          *cache.DashboardCache
	Runtime        Runtime
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	CreatorID    string
	RecipientIDs []string
	Type         string
	Description  string
	Priority     string
	Deadline     *time.Time
	Rights       *string
	Media        domain.MediaRefs
	SaveMedia    MediaSaver
}

// TicketForwardInput hands a ticket to a single new recipient.
type TicketForwardInput struct {
	TicketID    string
	RecipientID string
	Rights      string
}

// TicketStatusInput describes a status change requested by the ticket creator.
type TicketStatusInput struct {
	TicketID    string
	RequesterID string
	RecipientID string
	Status      string
}

// RecipientAssignments pairs a recipient with the assignments they created
// for a ticket. Profile is nil when the user is unknown.
type RecipientAssignments struct {
	UserID      string
	Profile     *domain.Profile
	Assignments []domain.Assignment
}

// CreatorTicket is a ticket joined with its recipients' delegations.
type CreatorTicket struct {
	Ticket     domain.Ticket
	Recipients []RecipientAssignments
}

// ParticipantTicket is a ticket joined with its creator's profile.
type ParticipantTicket struct {
	Ticket domain.Ticket
	Sender *domain.Profile
}

// TicketTotals splits a ticket set into open tickets counted by type and the rest.
type TicketTotals struct {
	Tickets    []domain.Ticket
	TypeCounts map[domain.TicketType]int
	Others     []domain.Ticket
	OtherCount int
}

type ticketAccess int

const (
	accessNotFound ticketAccess = iota
	accessForbidden
	accessGranted
)

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		assignments: deps.AssignmentRepo,
		users:       deps.UserRepo,
		cache:       deps.Cache,
		rt:          deps.Runtime,
	}
}

// CreateTicket validates and persists a new pending ticket.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	missing := missingFields(
		"creator_id", input.CreatorID,
		"type", input.Type,
		"priority", input.Priority,
	)
	if len(input.RecipientIDs) == 0 {
		missing = append(missing, "recipient_ids")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewMissingFields(missing...)
	}

	ticketType, ok := domain.ParseTicketType(input.Type)
	if !ok {
		return nil, apperrors.NewInvalidField("type", "unknown ticket type")
	}
	priority, ok := domain.ParseTicketPriority(input.Priority)
	if !ok {
		return nil, apperrors.NewInvalidField("priority", "unknown ticket priority")
	}
	var rights *domain.Rights
	if raw := optionalString(input.Rights); raw != nil {
		r, ok := domain.ParseRights(*raw)
		if !ok {
			return nil, apperrors.NewInvalidField("rights", "rights must be one of View, Forward, Power")
		}
		rights = &r
	}

	media, err := resolveMedia(ctx, input.Media, input.SaveMedia)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		CreatorID:    strings.TrimSpace(input.CreatorID),
		RecipientIDs: input.RecipientIDs,
		Type:         ticketType,
		Description:  strings.TrimSpace(input.Description),
		Priority:     priority,
		Deadline:     input.Deadline,
		Media:        media,
		Status:       domain.TicketStatusPending,
		Rights:       rights,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.InvalidateAll(ctx)
	s.rt.publishEvent(ctx, events.Event{
		Type:       events.EventTicketCreated,
		ActorID:    ticket.CreatorID,
		TicketID:   ticket.ID,
		Recipients: ticket.RecipientIDs,
		Payload: events.TicketCreatedPayload{
			Type:     ticket.Type,
			Priority: ticket.Priority,
			Deadline: ticket.Deadline,
		},
	})
	return ticket, nil
}

// ForwardTicket replaces the recipient set with the single new recipient.
func (s *TicketService) ForwardTicket(ctx context.Context, input TicketForwardInput) (*domain.Ticket, error) {
	if missing := missingFields(
		"ticket_id", input.TicketID,
		"recipient_id", input.RecipientID,
		"rights", input.Rights,
	); len(missing) > 0 {
		return nil, apperrors.NewMissingFields(missing...)
	}
	rights, ok := domain.ParseRights(input.Rights)
	if !ok {
		return nil, apperrors.NewInvalidField("rights", "rights must be one of View, Forward, Power")
	}

	current, err := s.getTicket(ctx, input.TicketID)
	if err != nil {
		return nil, err
	}
	previous := current.RecipientIDs
	ticket, err := s.tickets.Forward(ctx, current.ID, []string{strings.TrimSpace(input.RecipientID)}, rights)
	if err != nil {
		return nil, s.mapTicketErr(err, current.ID)
	}

	s.rt.publishEvent(ctx, events.Event{
		Type:       events.EventTicketForwarded,
		TicketID:   ticket.ID,
		ActorID:    ticket.CreatorID,
		Recipients: ticket.RecipientIDs,
		Payload: events.TicketForwardedPayload{
			PreviousRecipients: previous,
			RecipientID:        ticket.RecipientIDs[0],
			Rights:             rights,
		},
	})
	return ticket, nil
}

// UpdateStatus lets the creator change the status of a ticket addressed to the
// given recipient. A missing ticket and a requester/recipient mismatch are
// reported identically.
func (s *TicketService) UpdateStatus(ctx context.Context, input TicketStatusInput) (*domain.Ticket, error) {
	if missing := missingFields(
		"ticket_id", input.TicketID,
		"requester_id", input.RequesterID,
		"recipient_id", input.RecipientID,
		"status", input.Status,
	); len(missing) > 0 {
		return nil, apperrors.NewMissingFields(missing...)
	}
	status, ok := domain.ParseTicketStatus(input.Status)
	if !ok {
		return nil, apperrors.NewInvalidField("status", "unknown ticket status")
	}

	access, current, err := s.resolveAccess(ctx, input.TicketID, input.RequesterID, input.RecipientID)
	if err != nil {
		return nil, err
	}
	if access != accessGranted {
		s.rt.logger().Debug("ticket status update refused",
			zap.String("ticket_id", input.TicketID),
			zap.Bool("ticket_exists", access == accessForbidden))
		return nil, apperrors.NewDomainError(apperrors.CodeNotFound, "ticket not found or access denied", http.StatusNotFound, nil)
	}

	old := current.Status
	ticket, err := s.tickets.SetStatus(ctx, current.ID, status)
	if err != nil {
		return nil, s.mapTicketErr(err, current.ID)
	}
	s.cache.InvalidateAll(ctx)
	s.rt.publishEvent(ctx, events.Event{
		Type:       events.EventTicketStatusChanged,
		TicketID:   ticket.ID,
		ActorID:    input.RequesterID,
		Recipients: []string{input.RecipientID},
		Payload:    events.TicketStatusChangedPayload{OldStatus: old, NewStatus: status},
	})
	return ticket, nil
}

func (s *TicketService) resolveAccess(ctx context.Context, ticketID, requesterID, recipientID string) (ticketAccess, *domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return accessNotFound, nil, nil
		}
		return accessNotFound, nil, apperrors.MapError(err)
	}
	if ticket.CreatorID != requesterID || !ticket.HasRecipient(recipientID) {
		return accessForbidden, ticket, nil
	}
	return accessGranted, ticket, nil
}

// ListByCreator returns the creator's tickets within the day range, or the
// current month when no range is given, each joined with its recipients and
// the assignments each recipient created for it.
func (s *TicketService) ListByCreator(ctx context.Context, creatorID string, status *string, from, to *time.Time) ([]CreatorTicket, error) {
	if strings.TrimSpace(creatorID) == "" {
		return nil, apperrors.NewMissingFields("user_id")
	}
	filter := repository.TicketFilter{CreatorID: &creatorID}
	if raw := optionalString(status); raw != nil {
		st, ok := domain.ParseTicketStatus(*raw)
		if !ok {
			return nil, apperrors.NewInvalidField("status", "unknown ticket status")
		}
		filter.Statuses = []domain.TicketStatus{st}
	}
	if from != nil || to != nil {
		filter.CreatedFrom, filter.CreatedTo = dayRange(s.rt.Zone, from, to)
	} else {
		start := s.rt.Zone.StartOfMonth(s.rt.now()).UTC()
		filter.CreatedFrom = &start
	}

	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(tickets) == 0 {
		return []CreatorTicket{}, nil
	}

	ticketIDs := make([]string, 0, len(tickets))
	var recipientIDs []string
	for _, t := range tickets {
		ticketIDs = append(ticketIDs, t.ID)
		recipientIDs = append(recipientIDs, t.RecipientIDs...)
	}
	profiles, err := loadProfiles(ctx, s.users, recipientIDs...)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	delegations, err := s.assignments.List(ctx, repository.AssignmentFilter{TicketIDs: ticketIDs})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byTicketManager := make(map[[2]string][]domain.Assignment)
	for _, a := range delegations {
		key := [2]string{*a.TicketID, a.ManagerID}
		byTicketManager[key] = append(byTicketManager[key], a)
	}

	out := make([]CreatorTicket, 0, len(tickets))
	for _, t := range tickets {
		item := CreatorTicket{Ticket: t, Recipients: make([]RecipientAssignments, 0, len(t.RecipientIDs))}
		for _, rid := range t.RecipientIDs {
			assigned := byTicketManager[[2]string{t.ID, rid}]
			if assigned == nil {
				assigned = []domain.Assignment{}
			}
			item.Recipients = append(item.Recipients, RecipientAssignments{
				UserID:      rid,
				Profile:     profileRef(profiles, rid),
				Assignments: assigned,
			})
		}
		out = append(out, item)
	}
	return out, nil
}

// ListForParticipant returns tickets the user created or receives, with the
// creator's profile joined in.
func (s *TicketService) ListForParticipant(ctx context.Context, userID string, status, ticketType *string) ([]ParticipantTicket, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.NewMissingFields("user_id")
	}
	filter := repository.TicketFilter{ParticipantID: &userID}
	if raw := optionalString(status); raw != nil {
		st, ok := domain.ParseTicketStatus(*raw)
		if !ok {
			return nil, apperrors.NewInvalidField("status", "unknown ticket status")
		}
		filter.Statuses = []domain.TicketStatus{st}
	}
	if raw := optionalString(ticketType); raw != nil {
		tt, ok := domain.ParseTicketType(*raw)
		if !ok {
			return nil, apperrors.NewInvalidField("type", "unknown ticket type")
		}
		filter.Type = &tt
	}

	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	creators := make([]string, 0, len(tickets))
	for _, t := range tickets {
		creators = append(creators, t.CreatorID)
	}
	profiles, err := loadProfiles(ctx, s.users, creators...)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	out := make([]ParticipantTicket, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, ParticipantTicket{Ticket: t, Sender: profileRef(profiles, t.CreatorID)})
	}
	return out, nil
}

// RecipientTotals summarizes every ticket addressed to the recipient.
func (s *TicketService) RecipientTotals(ctx context.Context, recipientID string) (*TicketTotals, error) {
	if strings.TrimSpace(recipientID) == "" {
		return nil, apperrors.NewMissingFields("recipient_id")
	}
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{RecipientID: &recipientID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return summarizeTickets(tickets), nil
}

// PurgeTickets deletes every ticket.
func (s *TicketService) PurgeTickets(ctx context.Context) (int64, error) {
	n, err := s.tickets.DeleteAll(ctx)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	s.cache.InvalidateAll(ctx)
	s.rt.logger().Info("tickets purged", zap.Int64("count", n))
	return n, nil
}

func (s *TicketService) getTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapTicketErr(err, id)
	}
	return ticket, nil
}

func (s *TicketService) mapTicketErr(err error, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	return apperrors.MapError(err)
}

func summarizeTickets(tickets []domain.Ticket) *TicketTotals {
	totals := &TicketTotals{
		Tickets:    tickets,
		TypeCounts: make(map[domain.TicketType]int, len(domain.TicketTypes)),
		Others:     []domain.Ticket{},
	}
	if totals.Tickets == nil {
		totals.Tickets = []domain.Ticket{}
	}
	for _, tt := range domain.TicketTypes {
		totals.TypeCounts[tt] = 0
	}
	for _, t := range tickets {
		if isOpen(t.Status) {
			totals.TypeCounts[t.Type]++
			continue
		}
		totals.Others = append(totals.Others, t)
	}
	totals.OtherCount = len(totals.Others)
	return totals
}

func isOpen(status domain.TicketStatus) bool {
	for _, s := range domain.OpenStatuses {
		if strings.EqualFold(string(status), string(s)) {
			return true
		}
	}
	return false
}

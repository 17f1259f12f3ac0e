package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// ReplyService records the conversation around a ticket: responder replies
// and the author's satisfaction verdicts.
type ReplyService struct {
	responses     repository.TicketResponseRepository
	satisfactions repository.SatisfactionRepository
	tickets       repository.TicketRepository
	users         repository.UserRepository
	rt            Runtime
}

// ReplyDependencies bundles repositories.
type ReplyDependencies struct {
	ResponseRepo     repository.TicketResponseRepository
	SatisfactionRepo repository.SatisfactionRepository
	TicketRepo       repository.TicketRepository
	UserRepo         repository.UserRepository
	Runtime          Runtime
}

// ReplyInput carries a response or satisfaction record. Deadline and Rights
// apply to responses only.
type ReplyInput struct {
	TicketID    string
	AuthorID    string
	ResponderID string
	Type        string
	Description string
	Priority    string
	Deadline    *time.Time
	Rights      *string
	Media       domain.MediaRefs
	SaveMedia   MediaSaver
}

// ReplyQuery filters replies of one ticket.
type ReplyQuery struct {
	TicketID    string
	AuthorID    *string
	ResponderID *string
}

// SatisfactionUpdateInput lists the fields an update may change.
type SatisfactionUpdateInput struct {
	ID          string
	Type        *string
	Description *string
	Priority    *string
	Status      *string
	SaveMedia   MediaSaver
}

// ResponseView joins a response with its people and ticket.
type ResponseView struct {
	Response  domain.TicketResponse
	Author    *domain.Profile
	Responder *domain.Profile
	Ticket    *TicketBrief
}

// SatisfactionView joins a satisfaction record with its people and ticket.
type SatisfactionView struct {
	Satisfaction domain.Satisfaction
	Author       *domain.Profile
	Responder    *domain.Profile
	Ticket       *TicketBrief
}

// NewReplyService creates the service.
func NewReplyService(deps ReplyDependencies) *ReplyService {
	return &ReplyService{
		responses:     deps.ResponseRepo,
		satisfactions: deps.SatisfactionRepo,
		tickets:       deps.TicketRepo,
		users:         deps.UserRepo,
		rt:            deps.Runtime,
	}
}

// Respond stores a pending reply to an existing ticket.
func (s *ReplyService) Respond(ctx context.Context, input ReplyInput) (*domain.TicketResponse, error) {
	priority, err := s.validateReply(ctx, input)
	if err != nil {
		return nil, err
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

	resp := &domain.TicketResponse{
		TicketID:    strings.TrimSpace(input.TicketID),
		AuthorID:    strings.TrimSpace(input.AuthorID),
		ResponderID: strings.TrimSpace(input.ResponderID),
		Type:        strings.TrimSpace(input.Type),
		Description: strings.TrimSpace(input.Description),
		Priority:    priority,
		Deadline:    input.Deadline,
		Media:       media,
		Status:      domain.ResponseStatusPending,
		Rights:      rights,
	}
	if err := s.responses.Create(ctx, resp); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.rt.publishEvent(ctx, events.Event{
		Type:       events.EventTicketResponded,
		ActorID:    resp.ResponderID,
		TicketID:   resp.TicketID,
		Recipients: []string{resp.AuthorID},
		Payload:    events.TicketRespondedPayload{ResponseID: resp.ID},
	})
	return resp, nil
}

// ListResponses returns a ticket's replies, newest first.
func (s *ReplyService) ListResponses(ctx context.Context, query ReplyQuery) ([]ResponseView, error) {
	filter, err := replyFilter(query)
	if err != nil {
		return nil, err
	}
	list, err := s.responses.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	var people []string
	for _, r := range list {
		people = append(people, r.AuthorID, r.ResponderID)
	}
	ticket, profiles, err := s.joins(ctx, filter.TicketID, people)
	if err != nil {
		return nil, err
	}
	out := make([]ResponseView, 0, len(list))
	for _, r := range list {
		out = append(out, ResponseView{
			Response:  r,
			Author:    profileRef(profiles, r.AuthorID),
			Responder: profileRef(profiles, r.ResponderID),
			Ticket:    ticket,
		})
	}
	return out, nil
}

// RecordSatisfaction stores the author's verdict on an existing ticket.
func (s *ReplyService) RecordSatisfaction(ctx context.Context, input ReplyInput) (*domain.Satisfaction, error) {
	priority, err := s.validateReply(ctx, input)
	if err != nil {
		return nil, err
	}
	media, err := resolveMedia(ctx, input.Media, input.SaveMedia)
	if err != nil {
		return nil, err
	}
	rec := &domain.Satisfaction{
		TicketID:    strings.TrimSpace(input.TicketID),
		AuthorID:    strings.TrimSpace(input.AuthorID),
		ResponderID: strings.TrimSpace(input.ResponderID),
		Type:        strings.TrimSpace(input.Type),
		Description: strings.TrimSpace(input.Description),
		Priority:    priority,
		Media:       media,
		Status:      domain.SatisfactionStatusCompleted,
	}
	if err := s.satisfactions.Create(ctx, rec); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishSatisfaction(ctx, rec)
	return rec, nil
}

// ListSatisfactions returns a ticket's satisfaction records, newest first.
func (s *ReplyService) ListSatisfactions(ctx context.Context, query ReplyQuery) ([]SatisfactionView, error) {
	filter, err := replyFilter(query)
	if err != nil {
		return nil, err
	}
	list, err := s.satisfactions.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	var people []string
	for _, r := range list {
		people = append(people, r.AuthorID, r.ResponderID)
	}
	ticket, profiles, err := s.joins(ctx, filter.TicketID, people)
	if err != nil {
		return nil, err
	}
	out := make([]SatisfactionView, 0, len(list))
	for _, r := range list {
		out = append(out, SatisfactionView{
			Satisfaction: r,
			Author:       profileRef(profiles, r.AuthorID),
			Responder:    profileRef(profiles, r.ResponderID),
			Ticket:       ticket,
		})
	}
	return out, nil
}

// UpdateSatisfaction changes the given fields of a record. New media replaces
// the stored media only when at least one file was uploaded.
func (s *ReplyService) UpdateSatisfaction(ctx context.Context, input SatisfactionUpdateInput) (*domain.Satisfaction, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, apperrors.NewMissingFields("id")
	}
	if !isWellFormedID(id) {
		return nil, apperrors.NewInvalidField("id", "satisfaction id is malformed")
	}
	patch := repository.SatisfactionPatch{
		Type:        optionalString(input.Type),
		Description: optionalString(input.Description),
		Status:      optionalString(input.Status),
	}
	if raw := optionalString(input.Priority); raw != nil {
		p, ok := domain.ParseTicketPriority(*raw)
		if !ok {
			return nil, apperrors.NewInvalidField("priority", "unknown ticket priority")
		}
		patch.Priority = &p
	}
	if input.SaveMedia != nil {
		media, err := input.SaveMedia(ctx)
		if err != nil {
			return nil, err
		}
		if media.VoiceNoteURL != nil || media.VideoURL != nil || media.ImageURL != nil {
			patch.Media = &media
		}
	}

	rec, err := s.satisfactions.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("satisfaction", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	if patch.Status != nil {
		s.publishSatisfaction(ctx, rec)
	}
	return rec, nil
}

// PurgeSatisfactions deletes every satisfaction record.
func (s *ReplyService) PurgeSatisfactions(ctx context.Context) (int64, error) {
	n, err := s.satisfactions.DeleteAll(ctx)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	s.rt.logger().Info("satisfaction records purged", zap.Int64("count", n))
	return n, nil
}

func (s *ReplyService) validateReply(ctx context.Context, input ReplyInput) (domain.TicketPriority, error) {
	if missing := missingFields(
		"user_id", input.AuthorID,
		"response_person_id", input.ResponderID,
		"ticket_id", input.TicketID,
		"type", input.Type,
		"description", input.Description,
		"priority", input.Priority,
	); len(missing) > 0 {
		return "", apperrors.NewMissingFields(missing...)
	}
	priority, ok := domain.ParseTicketPriority(input.Priority)
	if !ok {
		return "", apperrors.NewInvalidField("priority", "unknown ticket priority")
	}
	ticketID := strings.TrimSpace(input.TicketID)
	if !isWellFormedID(ticketID) {
		return "", apperrors.NewInvalidField("ticket_id", "ticket id is malformed")
	}
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return "", apperrors.MapError(err)
	}
	return priority, nil
}

func (s *ReplyService) joins(ctx context.Context, ticketID string, people []string) (*TicketBrief, map[string]domain.Profile, error) {
	tickets, err := loadTickets(ctx, s.tickets, ticketID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	profiles, err := loadProfiles(ctx, s.users, people...)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return briefOf(tickets[ticketID]), profiles, nil
}

func (s *ReplyService) publishSatisfaction(ctx context.Context, rec *domain.Satisfaction) {
	s.rt.publishEvent(ctx, events.Event{
		Type:       events.EventSatisfactionRecorded,
		ActorID:    rec.AuthorID,
		TicketID:   rec.TicketID,
		Recipients: []string{rec.ResponderID},
		Payload:    events.SatisfactionRecordedPayload{SatisfactionID: rec.ID, Status: rec.Status},
	})
}

func replyFilter(query ReplyQuery) (repository.ReplyFilter, error) {
	ticketID := strings.TrimSpace(query.TicketID)
	if ticketID == "" {
		return repository.ReplyFilter{}, apperrors.NewMissingFields("ticket_id")
	}
	return repository.ReplyFilter{
		TicketID:    ticketID,
		AuthorID:    optionalString(query.AuthorID),
		ResponderID: optionalString(query.ResponderID),
	}, nil
}

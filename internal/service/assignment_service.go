package service

import (
	"context"
	"errors"
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

// AssignmentService handles delegation of tickets and standalone tasks.
type AssignmentService struct {
	assignments repository.AssignmentRepository
	tickets     repository.TicketRepository
	users       repository.UserRepository
	cache       *cache.DashboardCache
	rt          Runtime
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	AssignmentRepo repository.AssignmentRepository
	TicketRepo     repository.TicketRepository
	UserRepo       repository.UserRepository
	Cache          *cache.DashboardCache
	Runtime        Runtime
}

// AssignmentCreateInput describes a new delegation.
type AssignmentCreateInput struct {
	ManagerID   string
	AssigneeIDs []string
	Details     string
	Priority    string
	TargetDate  *time.Time
	Status      *string
	TicketID    *string
	Media       domain.MediaRefs
	SaveMedia   MediaSaver
}

// AssignmentView is an assignment with its manager and assignee profiles.
type AssignmentView struct {
	Assignment domain.Assignment
	Manager    *domain.Profile
	Assignees  []domain.Profile
}

// UserAssignments is everything on a user's plate: delegations they manage
// or receive, and delegated tickets addressed to them.
type UserAssignments struct {
	Assignments []AssignmentView
	Tickets     []domain.Ticket
	Creators    []domain.Profile
}

// DateBuckets partitions a manager/assignee pair's assignments by target day.
type DateBuckets struct {
	Today    []AssignmentView
	Weekly   []AssignmentView
	Pending  []AssignmentView
	Tickets  []domain.Ticket
	Creators []domain.Profile
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		assignments: deps.AssignmentRepo,
		tickets:     deps.TicketRepo,
		users:       deps.UserRepo,
		cache:       deps.Cache,
		rt:          deps.Runtime,
	}
}

// CreateAssignment records a delegation. When it references a well-formed
// ticket id, the ticket is moved to the delegated status atomically with the
// insert. A malformed ticket id is dropped with a warning and the assignment
// is still created.
func (s *AssignmentService) CreateAssignment(ctx context.Context, input AssignmentCreateInput) (*domain.Assignment, error) {
	missing := missingFields(
		"manager_id", input.ManagerID,
		"details", input.Details,
		"priority", input.Priority,
	)
	if len(input.AssigneeIDs) == 0 {
		missing = append(missing, "assignee_ids")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewMissingFields(missing...)
	}

	status := domain.AssignmentStatusPending
	if raw := optionalString(input.Status); raw != nil {
		st, ok := domain.ParseAssignmentStatus(*raw)
		if !ok {
			return nil, apperrors.NewInvalidField("status", "unknown assignment status")
		}
		status = st
	}

	var ticketID *string
	if raw := optionalString(input.TicketID); raw != nil {
		if isWellFormedID(*raw) {
			ticketID = raw
		} else {
			s.rt.logger().Warn("assignment references malformed ticket id; storing without ticket",
				zap.String("ticket_id", *raw),
				zap.String("manager_id", input.ManagerID))
		}
	}

	media, err := resolveMedia(ctx, input.Media, input.SaveMedia)
	if err != nil {
		return nil, err
	}

	assignment := &domain.Assignment{
		TicketID:    ticketID,
		ManagerID:   strings.TrimSpace(input.ManagerID),
		AssigneeIDs: input.AssigneeIDs,
		Details:     strings.TrimSpace(input.Details),
		Media:       media,
		Priority:    strings.TrimSpace(input.Priority),
		TargetDate:  input.TargetDate,
		Status:      status,
	}
	if err := s.assignments.CreateDelegation(ctx, assignment, domain.DelegatedStatuses[0]); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.InvalidateAll(ctx)

	event := events.Event{
		Type:       events.EventAssignmentCreated,
		ActorID:    assignment.ManagerID,
		Recipients: assignment.AssigneeIDs,
		Payload: events.AssignmentCreatedPayload{
			AssignmentID: assignment.ID,
			Priority:     assignment.Priority,
			TargetDate:   assignment.TargetDate,
		},
	}
	if ticketID != nil {
		event.TicketID = *ticketID
	}
	s.rt.publishEvent(ctx, event)
	return assignment, nil
}

// ListForUser returns the assignments the user manages, plus those naming
// recipientID as assignee when given, optionally filtered by status, along
// with delegated tickets addressed to the user and their creators.
func (s *AssignmentService) ListForUser(ctx context.Context, userID string, recipientID, status *string) (*UserAssignments, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.NewMissingFields("user_id")
	}
	filter := repository.AssignmentFilter{
		Involving: &repository.AssignmentInvolvement{ManagerID: userID, AssigneeID: optionalString(recipientID)},
	}
	if raw := optionalString(status); raw != nil {
		st, ok := domain.ParseAssignmentStatus(*raw)
		if !ok {
			return nil, apperrors.NewInvalidField("status", "unknown assignment status")
		}
		filter.Statuses = []domain.AssignmentStatus{st}
	}

	list, err := s.assignments.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	views, err := s.views(ctx, list)
	if err != nil {
		return nil, err
	}
	tickets, creators, err := s.delegatedTickets(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserAssignments{Assignments: views, Tickets: tickets, Creators: creators}, nil
}

// ByDateCategory buckets the pair's assignments by target day and returns
// the assignee's delegated tickets alongside, without date filtering.
func (s *AssignmentService) ByDateCategory(ctx context.Context, managerID, assigneeID string) (*DateBuckets, error) {
	if missing := missingFields("manager_id", managerID, "assignee_id", assigneeID); len(missing) > 0 {
		return nil, apperrors.NewMissingFields(missing...)
	}
	list, err := s.assignments.List(ctx, repository.AssignmentFilter{ManagerID: &managerID, AssigneeID: &assigneeID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	views, err := s.views(ctx, list)
	if err != nil {
		return nil, err
	}

	now := s.rt.now()
	out := &DateBuckets{Today: []AssignmentView{}, Weekly: []AssignmentView{}, Pending: []AssignmentView{}}
	for _, v := range views {
		switch v.Assignment.Bucket(now, s.rt.Zone) {
		case domain.BucketToday:
			out.Today = append(out.Today, v)
		case domain.BucketWeekly:
			out.Weekly = append(out.Weekly, v)
		default:
			out.Pending = append(out.Pending, v)
		}
	}

	out.Tickets, out.Creators, err = s.delegatedTickets(ctx, assigneeID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountForRecipient counts assignments naming the recipient.
func (s *AssignmentService) CountForRecipient(ctx context.Context, recipientID string) (int, error) {
	if strings.TrimSpace(recipientID) == "" {
		return 0, apperrors.NewMissingFields("recipient_id")
	}
	n, err := s.assignments.Count(ctx, repository.AssignmentFilter{AssigneeID: &recipientID})
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return n, nil
}

// ListAssignments returns every assignment, optionally filtered by status.
func (s *AssignmentService) ListAssignments(ctx context.Context, status *string) ([]AssignmentView, error) {
	var filter repository.AssignmentFilter
	if raw := optionalString(status); raw != nil {
		st, ok := domain.ParseAssignmentStatus(*raw)
		if !ok {
			return nil, apperrors.NewInvalidField("status", "unknown assignment status")
		}
		filter.Statuses = []domain.AssignmentStatus{st}
	}
	list, err := s.assignments.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.views(ctx, list)
}

// UpdateAssignmentStatus overwrites the status of an assignment.
func (s *AssignmentService) UpdateAssignmentStatus(ctx context.Context, id, status string) (*domain.Assignment, error) {
	if missing := missingFields("id", id, "status", status); len(missing) > 0 {
		return nil, apperrors.NewMissingFields(missing...)
	}
	st, ok := domain.ParseAssignmentStatus(status)
	if !ok {
		return nil, apperrors.NewInvalidField("status", "unknown assignment status")
	}

	current, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapAssignmentErr(err, id)
	}
	updated, err := s.assignments.UpdateStatus(ctx, id, st)
	if err != nil {
		return nil, s.mapAssignmentErr(err, id)
	}

	event := events.Event{
		Type:       events.EventAssignmentStatusChanged,
		ActorID:    updated.ManagerID,
		Recipients: append([]string{updated.ManagerID}, updated.AssigneeIDs...),
		Payload: events.AssignmentStatusChangedPayload{
			AssignmentID: updated.ID,
			OldStatus:    current.Status,
			NewStatus:    updated.Status,
		},
	}
	if updated.TicketID != nil {
		event.TicketID = *updated.TicketID
	}
	s.rt.publishEvent(ctx, event)
	return updated, nil
}

// PurgeAssignments deletes every assignment.
func (s *AssignmentService) PurgeAssignments(ctx context.Context) (int64, error) {
	n, err := s.assignments.DeleteAll(ctx)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	s.cache.InvalidateAll(ctx)
	s.rt.logger().Info("assignments purged", zap.Int64("count", n))
	return n, nil
}

func (s *AssignmentService) delegatedTickets(ctx context.Context, recipientID string) ([]domain.Ticket, []domain.Profile, error) {
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{
		RecipientID: &recipientID,
		Statuses:    domain.DelegatedStatuses,
	})
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	creatorIDs := make([]string, 0, len(tickets))
	for _, t := range tickets {
		creatorIDs = append(creatorIDs, t.CreatorID)
	}
	creatorIDs = uniqueNonEmpty(creatorIDs)
	profiles, err := loadProfiles(ctx, s.users, creatorIDs...)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return tickets, profileList(profiles, creatorIDs), nil
}

func (s *AssignmentService) views(ctx context.Context, list []domain.Assignment) ([]AssignmentView, error) {
	var ids []string
	for _, a := range list {
		ids = append(ids, a.ManagerID)
		ids = append(ids, a.AssigneeIDs...)
	}
	profiles, err := loadProfiles(ctx, s.users, ids...)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	out := make([]AssignmentView, 0, len(list))
	for _, a := range list {
		out = append(out, AssignmentView{
			Assignment: a,
			Manager:    profileRef(profiles, a.ManagerID),
			Assignees:  profileList(profiles, a.AssigneeIDs),
		})
	}
	return out, nil
}

func (s *AssignmentService) mapAssignmentErr(err error, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("assignment", map[string]any{"assignment_id": id})
	}
	return apperrors.MapError(err)
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/cache"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const categorizedCacheKey = "categorized"

// ReportService serves the read-only dashboards.
type ReportService struct {
	tickets     repository.TicketRepository
	assignments repository.AssignmentRepository
	users       repository.UserRepository
	cache       *cache.DashboardCache
	rt          Runtime
}

// ReportDependencies bundles repositories.
type ReportDependencies struct {
	TicketRepo     repository.TicketRepository
	AssignmentRepo repository.AssignmentRepository
	UserRepo       repository.UserRepository
	Cache          *cache.DashboardCache
	Runtime        Runtime
}

// CategorizedTickets maps each dashboard bucket to its tickets.
type CategorizedTickets map[domain.TicketCategory][]domain.Ticket

// AdminSummary is the month-to-date overview for administrators.
type AdminSummary struct {
	From         time.Time
	To           time.Time
	TotalTickets int
	StatusCounts map[domain.TicketStatus]int
	TotalTasks   int
}

// TodayCount is the number of tickets a user created today.
type TodayCount struct {
	Date      time.Time
	Total     int
	Completed int
}

// AssigneeReport classifies assignments naming a user.
type AssigneeReport struct {
	Pending       int
	Completed     int
	Delayed       int
	Requested     int
	TotalResolved int
}

// RoleAssignment is an assignment joined with its ticket and manager.
type RoleAssignment struct {
	Assignment domain.Assignment
	Ticket     *domain.Ticket
	Manager    *domain.Profile
}

// RoleMember is a user holding the queried role and their assignments.
type RoleMember struct {
	User        domain.Profile
	Assignments []RoleAssignment
}

// AdminWorkItem is a Working ticket or task with the admins handling it.
// Exactly one of Ticket and Assignment is set.
type AdminWorkItem struct {
	Ticket     *domain.Ticket
	Assignment *domain.Assignment
	Creator    *domain.Profile
	Admins     []domain.Profile
}

// AdminWorkQueue is everything in status Working that an admin holds.
type AdminWorkQueue struct {
	Tasks   []AdminWorkItem
	Tickets []AdminWorkItem
}

// NewReportService creates the service.
func NewReportService(deps ReportDependencies) *ReportService {
	return &ReportService{
		tickets:     deps.TicketRepo,
		assignments: deps.AssignmentRepo,
		users:       deps.UserRepo,
		cache:       deps.Cache,
		rt:          deps.Runtime,
	}
}

// CreatorSummary summarizes tickets created by the user, optionally within
// an inclusive day range.
func (s *ReportService) CreatorSummary(ctx context.Context, userID string, from, to *time.Time) (*TicketTotals, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.NewMissingFields("user_id")
	}
	filter := repository.TicketFilter{CreatorID: &userID}
	filter.CreatedFrom, filter.CreatedTo = dayRange(s.rt.Zone, from, to)
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return summarizeTickets(tickets), nil
}

// Overdue lists unresolved tickets whose deadline has passed, optionally
// narrowed to a creator and/or recipient.
func (s *ReportService) Overdue(ctx context.Context, creatorID, recipientID *string) ([]domain.Ticket, error) {
	now := s.rt.now()
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{
		CreatorID:       optionalString(creatorID),
		RecipientID:     optionalString(recipientID),
		ExcludeStatuses: []domain.TicketStatus{domain.TicketStatusResolved},
		DeadlineBefore:  &now,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return tickets, nil
}

// Categorized buckets every ticket for the dashboard. Tickets that fit no
// bucket are omitted.
func (s *ReportService) Categorized(ctx context.Context) (CategorizedTickets, error) {
	var cached CategorizedTickets
	if s.cache.Get(ctx, categorizedCacheKey, &cached) {
		return cached, nil
	}

	tickets, err := s.tickets.List(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	now := s.rt.now()
	out := make(CategorizedTickets, len(domain.Categories))
	for _, c := range domain.Categories {
		out[c] = []domain.Ticket{}
	}
	for i := range tickets {
		if c, ok := domain.Categorize(&tickets[i], now, s.rt.Zone); ok {
			out[c] = append(out[c], tickets[i])
		}
	}
	s.cache.Set(ctx, categorizedCacheKey, out)
	return out, nil
}

// AdminSummary reports month-to-date ticket and task volume. The caller must
// hold one of domain.SummaryRoles.
func (s *ReportService) AdminSummary(ctx context.Context, userID string) (*AdminSummary, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.NewMissingFields("user_id")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	if !user.HasRole(domain.SummaryRoles...) {
		return nil, apperrors.NewForbidden("user is not an administrator")
	}

	now := s.rt.now()
	from := s.rt.Zone.StartOfMonth(now).UTC()
	key := "admin-summary:" + s.rt.Zone.In(now).Format("2006-01")
	var cached AdminSummary
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	tickets, err := s.tickets.List(ctx, repository.TicketFilter{CreatedFrom: &from, CreatedTo: &now})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	tasks, err := s.assignments.Count(ctx, repository.AssignmentFilter{Standalone: true, CreatedFrom: &from})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	summary := &AdminSummary{
		From:         from,
		To:           now,
		TotalTickets: len(tickets),
		StatusCounts: make(map[domain.TicketStatus]int),
		TotalTasks:   tasks,
	}
	for _, t := range tickets {
		summary.StatusCounts[t.Status]++
	}
	s.cache.Set(ctx, key, summary)
	return summary, nil
}

// CountToday counts tickets the user created today and how many are completed.
func (s *ReportService) CountToday(ctx context.Context, userID string) (*TodayCount, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.NewMissingFields("user_id")
	}
	now := s.rt.now()
	from, to := dayRange(s.rt.Zone, &now, &now)
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{CreatorID: &userID, CreatedFrom: from, CreatedTo: to})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	out := &TodayCount{Date: s.rt.Zone.StartOfDay(now), Total: len(tickets)}
	for _, t := range tickets {
		if isCompleted(t.Status) {
			out.Completed++
		}
	}
	return out, nil
}

// AssigneeReport classifies the user's assignments and counts the tickets
// they requested.
func (s *ReportService) AssigneeReport(ctx context.Context, userID string) (*AssigneeReport, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.NewMissingFields("user_id")
	}
	list, err := s.assignments.List(ctx, repository.AssignmentFilter{AssigneeID: &userID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	requested, err := s.tickets.List(ctx, repository.TicketFilter{CreatorID: &userID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := s.rt.now()
	report := &AssigneeReport{Requested: len(requested)}
	for i := range list {
		switch list[i].Outcome(now) {
		case domain.OutcomeCompleted:
			report.Completed++
		case domain.OutcomeDelayed:
			report.Delayed++
		default:
			report.Pending++
		}
	}
	report.TotalResolved = report.Pending + report.Completed + report.Delayed
	return report, nil
}

// RoleAssignments lists users holding role (default Admin) with their
// assignments in status (default Working).
func (s *ReportService) RoleAssignments(ctx context.Context, role, status *string) ([]RoleMember, error) {
	userRole := domain.RoleAdmin
	if raw := optionalString(role); raw != nil {
		r, ok := domain.ParseUserRole(*raw)
		if !ok {
			return nil, apperrors.NewInvalidField("role", "unknown role")
		}
		userRole = r
	}
	assignmentStatus := domain.AssignmentStatusWorking
	if raw := optionalString(status); raw != nil {
		st, ok := domain.ParseAssignmentStatus(*raw)
		if !ok {
			return nil, apperrors.NewInvalidField("status", "unknown assignment status")
		}
		assignmentStatus = st
	}

	users, err := s.users.ListByRole(ctx, userRole)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	out := make([]RoleMember, 0, len(users))
	for _, u := range users {
		userID := u.ID
		list, err := s.assignments.List(ctx, repository.AssignmentFilter{
			AssigneeID: &userID,
			Statuses:   []domain.AssignmentStatus{assignmentStatus},
		})
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		member, err := s.joinRoleAssignments(ctx, u.Profile(), list)
		if err != nil {
			return nil, err
		}
		out = append(out, member)
	}
	return out, nil
}

func (s *ReportService) joinRoleAssignments(ctx context.Context, user domain.Profile, list []domain.Assignment) (RoleMember, error) {
	var ticketIDs, managerIDs []string
	for _, a := range list {
		if a.TicketID != nil {
			ticketIDs = append(ticketIDs, *a.TicketID)
		}
		managerIDs = append(managerIDs, a.ManagerID)
	}
	tickets, err := loadTickets(ctx, s.tickets, ticketIDs...)
	if err != nil {
		return RoleMember{}, apperrors.MapError(err)
	}
	managers, err := loadProfiles(ctx, s.users, managerIDs...)
	if err != nil {
		return RoleMember{}, apperrors.MapError(err)
	}

	member := RoleMember{User: user, Assignments: make([]RoleAssignment, 0, len(list))}
	for _, a := range list {
		ra := RoleAssignment{Assignment: a, Manager: profileRef(managers, a.ManagerID)}
		if a.TicketID != nil {
			ra.Ticket = tickets[*a.TicketID]
		}
		member.Assignments = append(member.Assignments, ra)
	}
	return member, nil
}

// WorkingAdminQueue lists Working tickets with an admin among their
// recipients and Working assignments with an admin among their assignees.
// Items with no admin are left out.
func (s *ReportService) WorkingAdminQueue(ctx context.Context) (*AdminWorkQueue, error) {
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{Statuses: []domain.TicketStatus{domain.TicketStatusWorking}})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	tasks, err := s.assignments.List(ctx, repository.AssignmentFilter{Statuses: []domain.AssignmentStatus{domain.AssignmentStatusWorking}})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	var ids []string
	for _, t := range tickets {
		ids = append(ids, t.CreatorID)
		ids = append(ids, t.RecipientIDs...)
	}
	for _, a := range tasks {
		ids = append(ids, a.ManagerID)
		ids = append(ids, a.AssigneeIDs...)
	}
	profiles, err := loadProfiles(ctx, s.users, ids...)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	admins := func(ids []string) []domain.Profile {
		var out []domain.Profile
		for _, p := range profileList(profiles, ids) {
			if p.Role == domain.RoleAdmin {
				out = append(out, p)
			}
		}
		return out
	}

	queue := &AdminWorkQueue{Tasks: []AdminWorkItem{}, Tickets: []AdminWorkItem{}}
	for i := range tickets {
		t := &tickets[i]
		if held := admins(t.RecipientIDs); len(held) > 0 {
			queue.Tickets = append(queue.Tickets, AdminWorkItem{Ticket: t, Creator: profileRef(profiles, t.CreatorID), Admins: held})
		}
	}
	for i := range tasks {
		a := &tasks[i]
		if held := admins(a.AssigneeIDs); len(held) > 0 {
			queue.Tasks = append(queue.Tasks, AdminWorkItem{Assignment: a, Creator: profileRef(profiles, a.ManagerID), Admins: held})
		}
	}
	return queue, nil
}

func isCompleted(status domain.TicketStatus) bool {
	s := strings.ToLower(string(status))
	return s == "completed" || s == "complete"
}

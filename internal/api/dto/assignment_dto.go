package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/pkg/util/timeutil"
)

// UpdateAssignmentStatusRequest payload.
type UpdateAssignmentStatusRequest struct {
	Status string `json:"status"`
}

// AssignmentResponse is a delegation with timestamps in the display zone.
type AssignmentResponse struct {
	ID          string                  `json:"id"`
	TicketID    *string                 `json:"ticket_id"`
	ManagerID   string                  `json:"manager_id"`
	AssigneeIDs []string                `json:"assignee_ids"`
	Details     string                  `json:"details"`
	Priority    string                  `json:"priority"`
	TargetDate  *time.Time              `json:"target_date"`
	Status      domain.AssignmentStatus `json:"status"`
	MediaResponse
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AssignmentViewResponse joins the manager and assignee profiles.
type AssignmentViewResponse struct {
	AssignmentResponse
	Manager   *ProfileResponse  `json:"manager"`
	Assignees []ProfileResponse `json:"assignees"`
}

// UserAssignmentsResponse is the per-user delegation view.
type UserAssignmentsResponse struct {
	Assignments []AssignmentViewResponse `json:"assignments"`
	Tickets     []TicketResponse         `json:"tickets"`
	Creators    []ProfileResponse        `json:"creators"`
}

// DateBucketsResponse groups delegations by target date.
type DateBucketsResponse struct {
	Today    []AssignmentViewResponse `json:"today"`
	Weekly   []AssignmentViewResponse `json:"weekly"`
	Pending  []AssignmentViewResponse `json:"pending"`
	Tickets  []TicketResponse         `json:"tickets"`
	Creators []ProfileResponse        `json:"creators"`
}

// AssigneeReportResponse totals an assignee's workload.
type AssigneeReportResponse struct {
	Pending       int `json:"pending"`
	Completed     int `json:"completed"`
	Delayed       int `json:"delayed"`
	Requested     int `json:"requested"`
	TotalResolved int `json:"total_resolved"`
}

// RoleAssignmentResponse is one delegation in the role-scoped view.
type RoleAssignmentResponse struct {
	AssignmentResponse
	Ticket  *TicketResponse  `json:"ticket"`
	Manager *ProfileResponse `json:"manager"`
}

// RoleMemberResponse groups delegations under an assignee.
type RoleMemberResponse struct {
	User        ProfileResponse          `json:"user"`
	Assignments []RoleAssignmentResponse `json:"assignments"`
}

// AdminWorkItemResponse is a Working ticket or task held by admins.
type AdminWorkItemResponse struct {
	Ticket     *TicketResponse     `json:"ticket,omitempty"`
	Assignment *AssignmentResponse `json:"assignment,omitempty"`
	Creator    *ProfileResponse    `json:"creator"`
	Admins     []ProfileResponse   `json:"admins"`
}

// AdminWorkQueueResponse splits the admin work queue by kind.
type AdminWorkQueueResponse struct {
	Tasks   []AdminWorkItemResponse `json:"tasks"`
	Tickets []AdminWorkItemResponse `json:"tickets"`
}

// NewAssignmentResponse maps an assignment.
func NewAssignmentResponse(a *domain.Assignment, zone timeutil.Zone) AssignmentResponse {
	assignees := a.AssigneeIDs
	if assignees == nil {
		assignees = []string{}
	}
	return AssignmentResponse{
		ID:            a.ID,
		TicketID:      a.TicketID,
		ManagerID:     a.ManagerID,
		AssigneeIDs:   assignees,
		Details:       a.Details,
		Priority:      a.Priority,
		TargetDate:    zone.InPtr(a.TargetDate),
		Status:        a.Status,
		MediaResponse: newMedia(a.Media),
		CreatedAt:     zone.In(a.CreatedAt),
		UpdatedAt:     zone.In(a.UpdatedAt),
	}
}

// NewAssignmentList maps assignments, never returning nil.
func NewAssignmentList(items []domain.Assignment, zone timeutil.Zone) []AssignmentResponse {
	out := make([]AssignmentResponse, 0, len(items))
	for i := range items {
		out = append(out, NewAssignmentResponse(&items[i], zone))
	}
	return out
}

// NewAssignmentViews maps joined assignments.
func NewAssignmentViews(items []service.AssignmentView, zone timeutil.Zone) []AssignmentViewResponse {
	out := make([]AssignmentViewResponse, 0, len(items))
	for i := range items {
		out = append(out, AssignmentViewResponse{
			AssignmentResponse: NewAssignmentResponse(&items[i].Assignment, zone),
			Manager:            NewProfilePtr(items[i].Manager),
			Assignees:          NewProfiles(items[i].Assignees),
		})
	}
	return out
}

// NewUserAssignments maps the per-user view.
func NewUserAssignments(u *service.UserAssignments, zone timeutil.Zone) UserAssignmentsResponse {
	return UserAssignmentsResponse{
		Assignments: NewAssignmentViews(u.Assignments, zone),
		Tickets:     NewTicketList(u.Tickets, zone),
		Creators:    NewProfiles(u.Creators),
	}
}

// NewDateBuckets maps the bucketed view.
func NewDateBuckets(b *service.DateBuckets, zone timeutil.Zone) DateBucketsResponse {
	return DateBucketsResponse{
		Today:    NewAssignmentViews(b.Today, zone),
		Weekly:   NewAssignmentViews(b.Weekly, zone),
		Pending:  NewAssignmentViews(b.Pending, zone),
		Tickets:  NewTicketList(b.Tickets, zone),
		Creators: NewProfiles(b.Creators),
	}
}

// NewAssigneeReport maps workload totals.
func NewAssigneeReport(r *service.AssigneeReport) AssigneeReportResponse {
	return AssigneeReportResponse{
		Pending:       r.Pending,
		Completed:     r.Completed,
		Delayed:       r.Delayed,
		Requested:     r.Requested,
		TotalResolved: r.TotalResolved,
	}
}

// NewRoleMembers maps the role-scoped view.
func NewRoleMembers(members []service.RoleMember, zone timeutil.Zone) []RoleMemberResponse {
	out := make([]RoleMemberResponse, 0, len(members))
	for _, m := range members {
		items := make([]RoleAssignmentResponse, 0, len(m.Assignments))
		for i := range m.Assignments {
			ra := m.Assignments[i]
			item := RoleAssignmentResponse{
				AssignmentResponse: NewAssignmentResponse(&ra.Assignment, zone),
				Manager:            NewProfilePtr(ra.Manager),
			}
			if ra.Ticket != nil {
				t := NewTicketResponse(ra.Ticket, zone)
				item.Ticket = &t
			}
			items = append(items, item)
		}
		out = append(out, RoleMemberResponse{User: NewProfile(m.User), Assignments: items})
	}
	return out
}

// NewAdminWorkQueue maps the Working items admins hold.
func NewAdminWorkQueue(q *service.AdminWorkQueue, zone timeutil.Zone) AdminWorkQueueResponse {
	return AdminWorkQueueResponse{
		Tasks:   newAdminWorkItems(q.Tasks, zone),
		Tickets: newAdminWorkItems(q.Tickets, zone),
	}
}

func newAdminWorkItems(items []service.AdminWorkItem, zone timeutil.Zone) []AdminWorkItemResponse {
	out := make([]AdminWorkItemResponse, 0, len(items))
	for _, item := range items {
		row := AdminWorkItemResponse{
			Creator: NewProfilePtr(item.Creator),
			Admins:  NewProfiles(item.Admins),
		}
		if item.Ticket != nil {
			t := NewTicketResponse(item.Ticket, zone)
			row.Ticket = &t
		}
		if item.Assignment != nil {
			a := NewAssignmentResponse(item.Assignment, zone)
			row.Assignment = &a
		}
		out = append(out, row)
	}
	return out
}

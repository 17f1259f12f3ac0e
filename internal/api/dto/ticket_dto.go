package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/pkg/util/timeutil"
)

// ForwardTicketRequest payload.
type ForwardTicketRequest struct {
	TicketID    string `json:"ticket_id"`
	RecipientID string `json:"recipient_id"`
	Rights      string `json:"rights"`
}

// UpdateTicketStatusRequest payload.
type UpdateTicketStatusRequest struct {
	TicketID    string `json:"ticket_id"`
	RequesterID string `json:"requester_id"`
	RecipientID string `json:"recipient_id"`
	Status      string `json:"status"`
}

// TicketResponse is the full ticket with timestamps in the display zone.
type TicketResponse struct {
	ID           string                `json:"id"`
	CreatorID    string                `json:"creator_id"`
	RecipientIDs []string              `json:"recipient_ids"`
	Type         domain.TicketType     `json:"type"`
	Description  string                `json:"description"`
	Priority     domain.TicketPriority `json:"priority"`
	Deadline     *time.Time            `json:"deadline"`
	Status       domain.TicketStatus   `json:"status"`
	Rights       *domain.Rights        `json:"rights"`
	MediaResponse
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecipientAssignmentsResponse lists one recipient's delegations of a ticket.
type RecipientAssignmentsResponse struct {
	UserID      string               `json:"user_id"`
	Profile     *ProfileResponse     `json:"profile"`
	Assignments []AssignmentResponse `json:"assignments"`
}

// CreatorTicketResponse is a ticket with its per-recipient delegation info.
type CreatorTicketResponse struct {
	TicketResponse
	AssignInfo []RecipientAssignmentsResponse `json:"assign_info"`
}

// ParticipantTicketResponse is a ticket with the creator's profile.
type ParticipantTicketResponse struct {
	TicketResponse
	Sender *ProfileResponse `json:"sender"`
}

// TicketTotalsResponse feeds the recipient and creator dashboards.
type TicketTotalsResponse struct {
	Tickets      []TicketResponse          `json:"tickets"`
	TypeCounts   map[domain.TicketType]int `json:"type_counts"`
	OtherTickets []TicketResponse          `json:"other_tickets"`
	OtherCount   int                       `json:"other_count"`
}

// AdminSummaryResponse is the month-to-date overview.
type AdminSummaryResponse struct {
	From         time.Time                   `json:"from"`
	To           time.Time                   `json:"to"`
	TotalTickets int                         `json:"total_tickets"`
	StatusCounts map[domain.TicketStatus]int `json:"status_counts"`
	TotalTasks   int                         `json:"total_tasks"`
}

// TodayCountResponse counts the tickets a user created today.
type TodayCountResponse struct {
	Date      string `json:"date"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
}

// NewTicketResponse maps a ticket.
func NewTicketResponse(t *domain.Ticket, zone timeutil.Zone) TicketResponse {
	recipients := t.RecipientIDs
	if recipients == nil {
		recipients = []string{}
	}
	return TicketResponse{
		ID:            t.ID,
		CreatorID:     t.CreatorID,
		RecipientIDs:  recipients,
		Type:          t.Type,
		Description:   t.Description,
		Priority:      t.Priority,
		Deadline:      zone.InPtr(t.Deadline),
		Status:        t.Status,
		Rights:        t.Rights,
		MediaResponse: newMedia(t.Media),
		CreatedAt:     zone.In(t.CreatedAt),
		UpdatedAt:     zone.In(t.UpdatedAt),
	}
}

// NewTicketList maps tickets, never returning nil.
func NewTicketList(tickets []domain.Ticket, zone timeutil.Zone) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketResponse(&tickets[i], zone))
	}
	return out
}

// NewCreatorTickets maps the creator listing.
func NewCreatorTickets(items []service.CreatorTicket, zone timeutil.Zone) []CreatorTicketResponse {
	out := make([]CreatorTicketResponse, 0, len(items))
	for i := range items {
		info := make([]RecipientAssignmentsResponse, 0, len(items[i].Recipients))
		for _, rec := range items[i].Recipients {
			info = append(info, RecipientAssignmentsResponse{
				UserID:      rec.UserID,
				Profile:     NewProfilePtr(rec.Profile),
				Assignments: NewAssignmentList(rec.Assignments, zone),
			})
		}
		out = append(out, CreatorTicketResponse{
			TicketResponse: NewTicketResponse(&items[i].Ticket, zone),
			AssignInfo:     info,
		})
	}
	return out
}

// NewParticipantTickets maps the participant listing.
func NewParticipantTickets(items []service.ParticipantTicket, zone timeutil.Zone) []ParticipantTicketResponse {
	out := make([]ParticipantTicketResponse, 0, len(items))
	for i := range items {
		out = append(out, ParticipantTicketResponse{
			TicketResponse: NewTicketResponse(&items[i].Ticket, zone),
			Sender:         NewProfilePtr(items[i].Sender),
		})
	}
	return out
}

// NewTicketTotals maps dashboard totals.
func NewTicketTotals(t *service.TicketTotals, zone timeutil.Zone) TicketTotalsResponse {
	return TicketTotalsResponse{
		Tickets:      NewTicketList(t.Tickets, zone),
		TypeCounts:   t.TypeCounts,
		OtherTickets: NewTicketList(t.Others, zone),
		OtherCount:   t.OtherCount,
	}
}

// NewCategorized maps the categorized dashboard; every category is present.
func NewCategorized(c service.CategorizedTickets, zone timeutil.Zone) map[domain.TicketCategory][]TicketResponse {
	out := make(map[domain.TicketCategory][]TicketResponse, len(domain.Categories))
	for _, category := range domain.Categories {
		out[category] = NewTicketList(c[category], zone)
	}
	return out
}

// NewAdminSummary maps the admin overview.
func NewAdminSummary(s *service.AdminSummary, zone timeutil.Zone) AdminSummaryResponse {
	return AdminSummaryResponse{
		From:         zone.In(s.From),
		To:           zone.In(s.To),
		TotalTickets: s.TotalTickets,
		StatusCounts: s.StatusCounts,
		TotalTasks:   s.TotalTasks,
	}
}

// NewTodayCount maps the daily counter.
func NewTodayCount(c *service.TodayCount, zone timeutil.Zone) TodayCountResponse {
	return TodayCountResponse{
		Date:      zone.In(c.Date).Format(timeutil.DateLayout),
		Total:     c.Total,
		Completed: c.Completed,
	}
}

package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/pkg/util/timeutil"
)

// TicketReplyResponse is a responder's reply to a ticket author.
type TicketReplyResponse struct {
	ID          string                `json:"id"`
	TicketID    string                `json:"ticket_id"`
	AuthorID    string                `json:"user_id"`
	ResponderID string                `json:"response_person_id"`
	Type        string                `json:"type"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Deadline    *time.Time            `json:"deadline"`
	Status      string                `json:"status"`
	Rights      *domain.Rights        `json:"rights"`
	MediaResponse
	CreatedAt time.Time `json:"created_at"`
}

// TicketReplyViewResponse joins the people and the ticket.
type TicketReplyViewResponse struct {
	TicketReplyResponse
	Author    *ProfileResponse     `json:"user"`
	Responder *ProfileResponse     `json:"response_person"`
	Ticket    *TicketBriefResponse `json:"ticket"`
}

// SatisfactionResponse is an author's verdict on a handled ticket.
type SatisfactionResponse struct {
	ID          string                `json:"id"`
	TicketID    string                `json:"ticket_id"`
	AuthorID    string                `json:"user_id"`
	ResponderID string                `json:"response_person_id"`
	Type        string                `json:"type"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      string                `json:"status"`
	MediaResponse
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SatisfactionViewResponse joins the people and the ticket.
type SatisfactionViewResponse struct {
	SatisfactionResponse
	Author    *ProfileResponse     `json:"user"`
	Responder *ProfileResponse     `json:"response_person"`
	Ticket    *TicketBriefResponse `json:"ticket"`
}

// NewTicketReplyResponse maps a reply.
func NewTicketReplyResponse(r *domain.TicketResponse, zone timeutil.Zone) TicketReplyResponse {
	return TicketReplyResponse{
		ID:            r.ID,
		TicketID:      r.TicketID,
		AuthorID:      r.AuthorID,
		ResponderID:   r.ResponderID,
		Type:          r.Type,
		Description:   r.Description,
		Priority:      r.Priority,
		Deadline:      zone.InPtr(r.Deadline),
		Status:        r.Status,
		Rights:        r.Rights,
		MediaResponse: newMedia(r.Media),
		CreatedAt:     zone.In(r.CreatedAt),
	}
}

// NewTicketReplyViews maps joined replies.
func NewTicketReplyViews(items []service.ResponseView, zone timeutil.Zone) []TicketReplyViewResponse {
	out := make([]TicketReplyViewResponse, 0, len(items))
	for i := range items {
		out = append(out, TicketReplyViewResponse{
			TicketReplyResponse: NewTicketReplyResponse(&items[i].Response, zone),
			Author:              NewProfilePtr(items[i].Author),
			Responder:           NewProfilePtr(items[i].Responder),
			Ticket:              newTicketBrief(items[i].Ticket),
		})
	}
	return out
}

// NewSatisfactionResponse maps a satisfaction record.
func NewSatisfactionResponse(r *domain.Satisfaction, zone timeutil.Zone) SatisfactionResponse {
	return SatisfactionResponse{
		ID:            r.ID,
		TicketID:      r.TicketID,
		AuthorID:      r.AuthorID,
		ResponderID:   r.ResponderID,
		Type:          r.Type,
		Description:   r.Description,
		Priority:      r.Priority,
		Status:        r.Status,
		MediaResponse: newMedia(r.Media),
		CreatedAt:     zone.In(r.CreatedAt),
		UpdatedAt:     zone.In(r.UpdatedAt),
	}
}

// NewSatisfactionViews maps joined satisfaction records.
func NewSatisfactionViews(items []service.SatisfactionView, zone timeutil.Zone) []SatisfactionViewResponse {
	out := make([]SatisfactionViewResponse, 0, len(items))
	for i := range items {
		out = append(out, SatisfactionViewResponse{
			SatisfactionResponse: NewSatisfactionResponse(&items[i].Satisfaction, zone),
			Author:               NewProfilePtr(items[i].Author),
			Responder:            NewProfilePtr(items[i].Responder),
			Ticket:               newTicketBrief(items[i].Ticket),
		})
	}
	return out
}

package dto

import (
	"strconv"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/pkg/util/timeutil"
)

// ProofResponse is a recorded proof of completion.
type ProofResponse struct {
	ID                string  `json:"id"`
	TicketID          string  `json:"ticket_id"`
	SubmitterID       *string `json:"submitter_id"`
	RecipientID       *string `json:"recipient_id"`
	WorkInstructionID *string `json:"work_instruction_id"`
	RecipientName     *string `json:"recipient_name"`
	Remarks           *string `json:"remarks"`
	MediaResponse
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProofViewResponse joins the ticket, recipient and work instruction.
type ProofViewResponse struct {
	ProofResponse
	Ticket          *TicketBriefResponse          `json:"ticket"`
	Recipient       *ProfileResponse              `json:"recipient"`
	WorkInstruction *WorkInstructionBriefResponse `json:"work_instruction"`
}

// SendReminderRequest payload.
type SendReminderRequest struct {
	TicketID    string `json:"ticket_id"`
	SenderID    string `json:"sender_id"`
	RecipientID string `json:"recipient_id"`
}

// ReminderResponse renders the counter as a string, as existing clients expect.
type ReminderResponse struct {
	ID          string    `json:"id"`
	TicketID    string    `json:"ticket_id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Count       string    `json:"count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ReminderViewResponse joins the ticket and sender.
type ReminderViewResponse struct {
	ReminderResponse
	Ticket *TicketBriefResponse `json:"ticket"`
	Sender *ProfileResponse     `json:"sender"`
}

// NewProofResponse maps a proof.
func NewProofResponse(p *domain.Proof, zone timeutil.Zone) ProofResponse {
	return ProofResponse{
		ID:                p.ID,
		TicketID:          p.TicketID,
		SubmitterID:       p.SubmitterID,
		RecipientID:       p.RecipientID,
		WorkInstructionID: p.WorkInstructionID,
		RecipientName:     p.RecipientName,
		Remarks:           p.Remarks,
		MediaResponse:     newMedia(p.Media),
		CreatedAt:         zone.In(p.CreatedAt),
		UpdatedAt:         zone.In(p.UpdatedAt),
	}
}

// NewProofViews maps joined proofs.
func NewProofViews(items []service.ProofView, zone timeutil.Zone) []ProofViewResponse {
	out := make([]ProofViewResponse, 0, len(items))
	for i := range items {
		out = append(out, ProofViewResponse{
			ProofResponse:   NewProofResponse(&items[i].Proof, zone),
			Ticket:          newTicketBrief(items[i].Ticket),
			Recipient:       NewProfilePtr(items[i].Recipient),
			WorkInstruction: newWorkInstructionBrief(items[i].WorkInstruction),
		})
	}
	return out
}

// NewReminderResponse maps a reminder.
func NewReminderResponse(r *domain.Reminder, zone timeutil.Zone) ReminderResponse {
	return ReminderResponse{
		ID:          r.ID,
		TicketID:    r.TicketID,
		SenderID:    r.SenderID,
		RecipientID: r.RecipientID,
		Count:       strconv.Itoa(r.Count),
		CreatedAt:   zone.In(r.CreatedAt),
		UpdatedAt:   zone.In(r.UpdatedAt),
	}
}

// NewReminderViews maps joined reminders.
func NewReminderViews(items []service.ReminderView, zone timeutil.Zone) []ReminderViewResponse {
	out := make([]ReminderViewResponse, 0, len(items))
	for i := range items {
		out = append(out, ReminderViewResponse{
			ReminderResponse: NewReminderResponse(&items[i].Reminder, zone),
			Ticket:           newTicketBrief(items[i].Ticket),
			Sender:           NewProfilePtr(items[i].Sender),
		})
	}
	return out
}

package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
	"github.com/spec-kit/helpdesk-service/pkg/util/timeutil"
)

// EvidenceHandler serves proofs of completion and reminders.
type EvidenceHandler struct {
	proofs    *service.ProofService
	reminders *service.ReminderService
	uploads   Uploads
	zone      timeutil.Zone
}

// NewEvidenceHandler constructs handler.
func NewEvidenceHandler(proofs *service.ProofService, reminders *service.ReminderService, uploads Uploads, zone timeutil.Zone) *EvidenceHandler {
	return &EvidenceHandler{proofs: proofs, reminders: reminders, uploads: uploads, zone: zone}
}

// SubmitProof POST /proof.
func (h *EvidenceHandler) SubmitProof(c *fiber.Ctx) error {
	fields, err := readFields(c)
	if err != nil {
		return err
	}
	batch := h.uploads.begin(c, "voice_note")
	proof, err := h.proofs.SubmitProof(c.UserContext(), service.ProofSubmitInput{
		TicketID:          fields.str("ticket_id"),
		SubmitterID:       fields.optional("submitter_id"),
		RecipientID:       fields.optional("recipient_id"),
		WorkInstructionID: fields.optional("work_instruction_id"),
		RecipientName:     fields.optional("recipient_name"),
		Remarks:           fields.optional("remarks"),
		SaveMedia:         batch.saver(),
	})
	if err != nil {
		batch.discard(c.UserContext())
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":    dto.NewProofResponse(proof, h.zone),
		"message": "proof submitted",
	})
}

// ListProofs GET /proof.
func (h *EvidenceHandler) ListProofs(c *fiber.Ctx) error {
	views, err := h.proofs.ListProofs(c.UserContext(), service.ProofQuery{
		SubmitterID:       queryPtr(c, "user_id"),
		TicketID:          queryPtr(c, "ticket_id"),
		WorkInstructionID: queryPtr(c, "work_instruction_id"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProofViews(views, h.zone)})
}

// PurgeProofs DELETE /proof/delete-all.
func (h *EvidenceHandler) PurgeProofs(c *fiber.Ctx) error {
	n, err := h.proofs.PurgeProofs(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": n}, "message": "all proofs deleted"})
}

// SendReminder POST /reminder/reminder.
func (h *EvidenceHandler) SendReminder(c *fiber.Ctx) error {
	var req dto.SendReminderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	res, err := h.reminders.SendReminder(c.UserContext(), req.TicketID, req.SenderID, req.RecipientID)
	if err != nil {
		return err
	}
	message := "reminder sent"
	if res.Capped {
		message = "reminder limit reached"
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"reminder": dto.NewReminderResponse(&res.Reminder, h.zone),
			"capped":   res.Capped,
		},
		"message": message,
	})
}

// ListReminders GET /reminder/reminders/:ticketId.
func (h *EvidenceHandler) ListReminders(c *fiber.Ctx) error {
	views, err := h.reminders.ListReminders(c.UserContext(), c.Params("ticketId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewReminderViews(views, h.zone)})
}

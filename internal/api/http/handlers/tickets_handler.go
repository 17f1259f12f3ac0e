package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
	"github.com/spec-kit/helpdesk-service/pkg/util/timeutil"
)

// TicketsHandler manages ticket lifecycle endpoints.
type TicketsHandler struct {
	service *service.TicketService
	uploads Uploads
	zone    timeutil.Zone
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, uploads Uploads, zone timeutil.Zone) *TicketsHandler {
	return &TicketsHandler{service: ticketService, uploads: uploads, zone: zone}
}

// CreateTicket POST /ticket.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	fields, err := readFields(c)
	if err != nil {
		return err
	}
	recipients, err := fields.idList("recipient_ids")
	if err != nil {
		return err
	}
	deadline, err := fields.date(h.zone, "deadline")
	if err != nil {
		return err
	}

	batch := h.uploads.begin(c, "voice_note")
	ticket, err := h.service.CreateTicket(c.UserContext(), service.TicketCreateInput{
		CreatorID:    fields.str("creator_id"),
		RecipientIDs: recipients,
		Type:         fields.str("type"),
		Description:  fields.str("description"),
		Priority:     fields.str("priority"),
		Deadline:     deadline,
		Rights:       fields.optional("rights"),
		SaveMedia:    batch.saver(),
	})
	if err != nil {
		batch.discard(c.UserContext())
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":    dto.NewTicketResponse(ticket, h.zone),
		"message": "ticket created",
	})
}

// ForwardTicket PUT /ticket/forward.
func (h *TicketsHandler) ForwardTicket(c *fiber.Ctx) error {
	var req dto.ForwardTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.ForwardTicket(c.UserContext(), service.TicketForwardInput{
		TicketID:    req.TicketID,
		RecipientID: req.RecipientID,
		Rights:      req.Rights,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket, h.zone), "message": "ticket forwarded"})
}

// UpdateStatus PATCH /ticket/update-status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateTicketStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateStatus(c.UserContext(), service.TicketStatusInput{
		TicketID:    req.TicketID,
		RequesterID: req.RequesterID,
		RecipientID: req.RecipientID,
		Status:      req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket, h.zone), "message": "ticket status updated"})
}

// ListByCreator GET /ticket/filter.
func (h *TicketsHandler) ListByCreator(c *fiber.Ctx) error {
	from, err := queryDate(c, h.zone, "from")
	if err != nil {
		return err
	}
	to, err := queryDate(c, h.zone, "to")
	if err != nil {
		return err
	}
	items, err := h.service.ListByCreator(c.UserContext(), c.Query("user_id"), queryPtr(c, "status"), from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCreatorTickets(items, h.zone)})
}

// ListForParticipant GET /ticket/participant/:userId.
func (h *TicketsHandler) ListForParticipant(c *fiber.Ctx) error {
	items, err := h.service.ListForParticipant(c.UserContext(), c.Params("userId"), queryPtr(c, "status"), queryPtr(c, "type"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewParticipantTickets(items, h.zone)})
}

// RecipientTotals GET /ticket/recipient/totaltickets/:recipientId.
func (h *TicketsHandler) RecipientTotals(c *fiber.Ctx) error {
	totals, err := h.service.RecipientTotals(c.UserContext(), c.Params("recipientId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketTotals(totals, h.zone)})
}

// PurgeTickets DELETE /ticket/tickets/delete-all.
func (h *TicketsHandler) PurgeTickets(c *fiber.Ctx) error {
	n, err := h.service.PurgeTickets(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": n}, "message": "all tickets deleted"})
}

package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/pkg/util/timeutil"
)

// RepliesHandler serves ticket responses and satisfaction records.
type RepliesHandler struct {
	service *service.ReplyService
	uploads Uploads
	zone    timeutil.Zone
}

// NewRepliesHandler constructs handler.
func NewRepliesHandler(replies *service.ReplyService, uploads Uploads, zone timeutil.Zone) *RepliesHandler {
	return &RepliesHandler{service: replies, uploads: uploads, zone: zone}
}

func (h *RepliesHandler) replyInput(fields *requestFields) (service.ReplyInput, error) {
	deadline, err := fields.date(h.zone, "deadline")
	if err != nil {
		return service.ReplyInput{}, err
	}
	return service.ReplyInput{
		TicketID:    fields.str("ticket_id"),
		AuthorID:    fields.str("user_id"),
		ResponderID: fields.str("response_person_id"),
		Type:        fields.str("type"),
		Description: fields.str("description"),
		Priority:    fields.str("priority"),
		Deadline:    deadline,
		Rights:      fields.optional("rights"),
	}, nil
}

func replyQuery(c *fiber.Ctx) service.ReplyQuery {
	return service.ReplyQuery{
		TicketID:    c.Query("ticket_id"),
		AuthorID:    queryPtr(c, "user_id"),
		ResponderID: queryPtr(c, "response_person_id"),
	}
}

// Respond POST /ticket/response.
func (h *RepliesHandler) Respond(c *fiber.Ctx) error {
	fields, err := readFields(c)
	if err != nil {
		return err
	}
	input, err := h.replyInput(fields)
	if err != nil {
		return err
	}
	batch := h.uploads.begin(c, "voice_note")
	input.SaveMedia = batch.saver()
	resp, err := h.service.Respond(c.UserContext(), input)
	if err != nil {
		batch.discard(c.UserContext())
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":    dto.NewTicketReplyResponse(resp, h.zone),
		"message": "response recorded",
	})
}

// ListResponses GET /ticket/response?ticket_id=.
func (h *RepliesHandler) ListResponses(c *fiber.Ctx) error {
	views, err := h.service.ListResponses(c.UserContext(), replyQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketReplyViews(views, h.zone)})
}

// RecordSatisfaction POST /ticket/satisfaction.
func (h *RepliesHandler) RecordSatisfaction(c *fiber.Ctx) error {
	fields, err := readFields(c)
	if err != nil {
		return err
	}
	input, err := h.replyInput(fields)
	if err != nil {
		return err
	}
	batch := h.uploads.begin(c, "voice_note")
	input.SaveMedia = batch.saver()
	rec, err := h.service.RecordSatisfaction(c.UserContext(), input)
	if err != nil {
		batch.discard(c.UserContext())
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":    dto.NewSatisfactionResponse(rec, h.zone),
		"message": "satisfaction recorded",
	})
}

// ListSatisfactions GET /ticket/satisfaction?ticket_id=.
func (h *RepliesHandler) ListSatisfactions(c *fiber.Ctx) error {
	views, err := h.service.ListSatisfactions(c.UserContext(), replyQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSatisfactionViews(views, h.zone)})
}

// UpdateSatisfaction PUT /ticket/satisfaction/:id.
func (h *RepliesHandler) UpdateSatisfaction(c *fiber.Ctx) error {
	fields, err := readFields(c)
	if err != nil {
		return err
	}
	batch := h.uploads.begin(c, "voice_note")
	rec, err := h.service.UpdateSatisfaction(c.UserContext(), service.SatisfactionUpdateInput{
		ID:          c.Params("id"),
		Type:        fields.optional("type"),
		Description: fields.optional("description"),
		Priority:    fields.optional("priority"),
		Status:      fields.optional("status"),
		SaveMedia:   batch.saver(),
	})
	if err != nil {
		batch.discard(c.UserContext())
		return err
	}
	return c.JSON(fiber.Map{
		"data":    dto.NewSatisfactionResponse(rec, h.zone),
		"message": "satisfaction updated",
	})
}

// PurgeSatisfactions DELETE /ticket/satisfaction/delete-all.
func (h *RepliesHandler) PurgeSatisfactions(c *fiber.Ctx) error {
	n, err := h.service.PurgeSatisfactions(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": n}, "message": "all satisfaction records deleted"})
}

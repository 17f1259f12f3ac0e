package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/pkg/util/timeutil"
)

// WorkInstructionsHandler serves standing orders.
type WorkInstructionsHandler struct {
	service *service.WorkInstructionService
	uploads Uploads
	zone    timeutil.Zone
}

// NewWorkInstructionsHandler constructs handler.
func NewWorkInstructionsHandler(instructions *service.WorkInstructionService, uploads Uploads, zone timeutil.Zone) *WorkInstructionsHandler {
	return &WorkInstructionsHandler{service: instructions, uploads: uploads, zone: zone}
}

// Create POST /workinstruction. The recording arrives in the "audio" part.
func (h *WorkInstructionsHandler) Create(c *fiber.Ctx) error {
	fields, err := readFields(c)
	if err != nil {
		return err
	}
	recipients, err := fields.idList("recipient_ids")
	if err != nil {
		return err
	}

	batch := h.uploads.begin(c, "audio")
	wi, err := h.service.Create(c.UserContext(), service.WorkInstructionInput{
		CreatorID:    fields.str("user_id"),
		RecipientIDs: recipients,
		Type:         fields.optional("type"),
		Remarks:      fields.optional("remarks"),
		ReviewTime:   fields.str("review_time"),
		OrderType:    fields.optional("order_type"),
		MediaSelect:  fields.names("media_select"),
		SaveMedia:    batch.saver(),
	})
	if err != nil {
		batch.discard(c.UserContext())
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":    dto.NewWorkInstructionResponse(wi, h.zone),
		"message": "work instruction created",
	})
}

// ListForRecipient GET /workinstruction/recipient/:recipient_id.
func (h *WorkInstructionsHandler) ListForRecipient(c *fiber.Ctx) error {
	views, err := h.service.ListForRecipient(c.UserContext(), c.Params("recipient_id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewWorkInstructionViews(views, h.zone)})
}

// ListByCreator GET /workinstruction/data/:user_id.
func (h *WorkInstructionsHandler) ListByCreator(c *fiber.Ctx) error {
	views, err := h.service.ListByCreator(c.UserContext(), c.Params("user_id"),
		queryPtr(c, "workinstruction_id"), queryPtr(c, "recipient_id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewWorkInstructionViews(views, h.zone)})
}

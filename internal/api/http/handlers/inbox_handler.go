package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
	"github.com/spec-kit/helpdesk-service/pkg/util/timeutil"
)

// InboxHandler serves the in-app notification list.
type InboxHandler struct {
	service *service.InboxService
	zone    timeutil.Zone
}

// NewInboxHandler constructs handler.
func NewInboxHandler(inbox *service.InboxService, zone timeutil.Zone) *InboxHandler {
	return &InboxHandler{service: inbox, zone: zone}
}

// Send POST /notification.
func (h *InboxHandler) Send(c *fiber.Ctx) error {
	var req dto.SendInboxRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	item, err := h.service.Send(c.UserContext(), service.InboxInput{
		ReceiverID:  req.ReceiverID,
		SenderID:    req.SenderID,
		Kind:        req.Type,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":    dto.NewInboxItemResponse(item, h.zone),
		"message": "notification sent",
	})
}

// List GET /notification?receiver_id=&status=.
func (h *InboxHandler) List(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext(), c.Query("receiver_id"), c.Query("status"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewInboxList(items, h.zone)})
}

// SetStatus PUT /notification/:id/status.
func (h *InboxHandler) SetStatus(c *fiber.Ctx) error {
	var req dto.UpdateInboxStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	item, err := h.service.SetStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":    dto.NewInboxItemResponse(item, h.zone),
		"message": "notification updated",
	})
}

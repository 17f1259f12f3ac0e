package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
	"github.com/spec-kit/helpdesk-service/pkg/util/timeutil"
)

// AssignmentsHandler manages delegation endpoints.
type AssignmentsHandler struct {
	service *service.AssignmentService
	uploads Uploads
	zone    timeutil.Zone
}

// NewAssignmentsHandler constructs handler.
func NewAssignmentsHandler(assignments *service.AssignmentService, uploads Uploads, zone timeutil.Zone) *AssignmentsHandler {
	return &AssignmentsHandler{service: assignments, uploads: uploads, zone: zone}
}

// CreateAssignment POST /assign/assign.
func (h *AssignmentsHandler) CreateAssignment(c *fiber.Ctx) error {
	fields, err := readFields(c)
	if err != nil {
		return err
	}
	assignees, err := fields.idList("assignee_ids")
	if err != nil {
		return err
	}
	target, err := fields.date(h.zone, "target_date")
	if err != nil {
		return err
	}

	batch := h.uploads.begin(c, "voice_note")
	assignment, err := h.service.CreateAssignment(c.UserContext(), service.AssignmentCreateInput{
		ManagerID:   fields.str("manager_id"),
		AssigneeIDs: assignees,
		Details:     fields.str("details"),
		Priority:    fields.str("priority"),
		TargetDate:  target,
		Status:      fields.optional("status"),
		TicketID:    fields.optional("ticket_id"),
		SaveMedia:   batch.saver(),
	})
	if err != nil {
		batch.discard(c.UserContext())
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":    dto.NewAssignmentResponse(assignment, h.zone),
		"message": "assignment created",
	})
}

// ListForUser GET /assign/assign.
func (h *AssignmentsHandler) ListForUser(c *fiber.Ctx) error {
	view, err := h.service.ListForUser(c.UserContext(), c.Query("user_id"), queryPtr(c, "recipient_id"), queryPtr(c, "status"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserAssignments(view, h.zone)})
}

// ByDateCategory GET /assign/assign/by-date-category.
func (h *AssignmentsHandler) ByDateCategory(c *fiber.Ctx) error {
	buckets, err := h.service.ByDateCategory(c.UserContext(), c.Query("manager_id"), c.Query("assignee_id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDateBuckets(buckets, h.zone)})
}

// Count GET /assign/assign/count.
func (h *AssignmentsHandler) Count(c *fiber.Ctx) error {
	n, err := h.service.CountForRecipient(c.UserContext(), c.Query("recipient_id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"count": n}})
}

// ListAll GET /assign/assignments.
func (h *AssignmentsHandler) ListAll(c *fiber.Ctx) error {
	views, err := h.service.ListAssignments(c.UserContext(), queryPtr(c, "status"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAssignmentViews(views, h.zone)})
}

// ListWorking GET /assign/assignments/working.
func (h *AssignmentsHandler) ListWorking(c *fiber.Ctx) error {
	working := string(domain.AssignmentStatusWorking)
	views, err := h.service.ListAssignments(c.UserContext(), &working)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "working assignments",
		"count":   len(views),
		"data":    dto.NewAssignmentViews(views, h.zone),
	})
}

// UpdateStatus PUT /assign/update-status/:id.
func (h *AssignmentsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateAssignmentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	assignment, err := h.service.UpdateAssignmentStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAssignmentResponse(assignment, h.zone), "message": "assignment status updated"})
}

// PurgeAssignments DELETE /assign/assignments/delete-all.
func (h *AssignmentsHandler) PurgeAssignments(c *fiber.Ctx) error {
	n, err := h.service.PurgeAssignments(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": n}, "message": "all assignments deleted"})
}

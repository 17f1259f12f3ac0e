package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/pkg/util/timeutil"
)

// ReportsHandler serves the dashboard and reporting endpoints.
type ReportsHandler struct {
	service *service.ReportService
	zone    timeutil.Zone
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService, zone timeutil.Zone) *ReportsHandler {
	return &ReportsHandler{service: reports, zone: zone}
}

// CreatorSummary GET /ticket/summary/:userId.
func (h *ReportsHandler) CreatorSummary(c *fiber.Ctx) error {
	from, err := queryDate(c, h.zone, "from")
	if err != nil {
		return err
	}
	to, err := queryDate(c, h.zone, "to")
	if err != nil {
		return err
	}
	totals, err := h.service.CreatorSummary(c.UserContext(), c.Params("userId"), from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketTotals(totals, h.zone)})
}

// Overdue GET /ticket/tickets/overdue.
func (h *ReportsHandler) Overdue(c *fiber.Ctx) error {
	tickets, err := h.service.Overdue(c.UserContext(), queryPtr(c, "user_id"), queryPtr(c, "recipient_id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketList(tickets, h.zone)})
}

// Categorized GET /ticket/tickets/categorized.
func (h *ReportsHandler) Categorized(c *fiber.Ctx) error {
	buckets, err := h.service.Categorized(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCategorized(buckets, h.zone)})
}

// AdminSummary GET /ticket/admin-summary.
func (h *ReportsHandler) AdminSummary(c *fiber.Ctx) error {
	summary, err := h.service.AdminSummary(c.UserContext(), c.Query("user_id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAdminSummary(summary, h.zone)})
}

// CountToday GET /ticket/count-today/:userId.
func (h *ReportsHandler) CountToday(c *fiber.Ctx) error {
	count, err := h.service.CountToday(c.UserContext(), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTodayCount(count, h.zone)})
}

// AssigneeReport GET /assign/adminreport-count.
func (h *ReportsHandler) AssigneeReport(c *fiber.Ctx) error {
	report, err := h.service.AssigneeReport(c.UserContext(), c.Query("user_id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAssigneeReport(report)})
}

// RoleAssignments GET /assign/admin-assignments.
func (h *ReportsHandler) RoleAssignments(c *fiber.Ctx) error {
	members, err := h.service.RoleAssignments(c.UserContext(), queryPtr(c, "role"), queryPtr(c, "status"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRoleMembers(members, h.zone)})
}

// WorkingAdminQueue GET /ticket/working-tasks-tickets.
func (h *ReportsHandler) WorkingAdminQueue(c *fiber.Ctx) error {
	queue, err := h.service.WorkingAdminQueue(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAdminWorkQueue(queue, h.zone)})
}

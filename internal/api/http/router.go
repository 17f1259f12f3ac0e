package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// AppDependencies carries the cross-cutting pieces the middlewares need.
type AppDependencies struct {
	Logger  *zap.Logger
	Metrics *observability.Metrics
	Timeout time.Duration
}

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Assignments    *handlers.AssignmentsHandler
	Evidence       *handlers.EvidenceHandler
	Reports        *handlers.ReportsHandler
	Instructions   *handlers.WorkInstructionsHandler
	Replies        *handlers.RepliesHandler
	Inbox          *handlers.InboxHandler
	Media          *handlers.MediaHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)
	app.Get("/media/:filename", cfg.Media.Download)

	authGroup := app.Group("/auth")
	authGroup.Post("/users", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/refresh", cfg.Users.Refresh)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Users.Logout)

	purge := auth.RequireRole(domain.PurgeRoles...)

	ticket := app.Group("/ticket", cfg.AuthMiddleware.Handle)
	ticket.Post("/", cfg.Tickets.CreateTicket)
	ticket.Put("/forward", cfg.Tickets.ForwardTicket)
	ticket.Patch("/update-status", cfg.Tickets.UpdateStatus)
	ticket.Get("/filter", cfg.Tickets.ListByCreator)
	ticket.Get("/participant/:userId", cfg.Tickets.ListForParticipant)
	ticket.Get("/recipient/totaltickets/:recipientId", cfg.Tickets.RecipientTotals)
	ticket.Get("/summary/:userId", cfg.Reports.CreatorSummary)
	ticket.Get("/tickets/overdue", cfg.Reports.Overdue)
	ticket.Get("/tickets/categorized", cfg.Reports.Categorized)
	ticket.Get("/admin-summary", cfg.Reports.AdminSummary)
	ticket.Get("/count-today/:userId", cfg.Reports.CountToday)
	ticket.Get("/working-tasks-tickets", cfg.Reports.WorkingAdminQueue)
	ticket.Delete("/tickets/delete-all", purge, cfg.Tickets.PurgeTickets)
	ticket.Post("/response", cfg.Replies.Respond)
	ticket.Get("/response", cfg.Replies.ListResponses)
	ticket.Post("/satisfaction", cfg.Replies.RecordSatisfaction)
	ticket.Get("/satisfaction", cfg.Replies.ListSatisfactions)
	ticket.Put("/satisfaction/:id", cfg.Replies.UpdateSatisfaction)
	ticket.Delete("/satisfaction/delete-all", purge, cfg.Replies.PurgeSatisfactions)

	assign := app.Group("/assign", cfg.AuthMiddleware.Handle)
	assign.Post("/assign", cfg.Assignments.CreateAssignment)
	assign.Get("/assign", cfg.Assignments.ListForUser)
	assign.Get("/assign/by-date-category", cfg.Assignments.ByDateCategory)
	assign.Get("/assign/count", cfg.Assignments.Count)
	assign.Get("/adminreport-count", cfg.Reports.AssigneeReport)
	assign.Get("/admin-assignments", cfg.Reports.RoleAssignments)
	assign.Get("/assignments", cfg.Assignments.ListAll)
	assign.Get("/assignments/working", cfg.Assignments.ListWorking)
	assign.Put("/update-status/:id", cfg.Assignments.UpdateStatus)
	assign.Delete("/assignments/delete-all", purge, cfg.Assignments.PurgeAssignments)

	proof := app.Group("/proof", cfg.AuthMiddleware.Handle)
	proof.Post("/", cfg.Evidence.SubmitProof)
	proof.Get("/", cfg.Evidence.ListProofs)
	proof.Delete("/delete-all", purge, cfg.Evidence.PurgeProofs)

	reminder := app.Group("/reminder", cfg.AuthMiddleware.Handle)
	reminder.Post("/reminder", cfg.Evidence.SendReminder)
	reminder.Get("/reminders/:ticketId", cfg.Evidence.ListReminders)

	instruction := app.Group("/workinstruction", cfg.AuthMiddleware.Handle)
	instruction.Post("/", cfg.Instructions.Create)
	instruction.Get("/recipient/:recipient_id", cfg.Instructions.ListForRecipient)
	instruction.Get("/data/:user_id", cfg.Instructions.ListByCreator)

	inbox := app.Group("/notification", cfg.AuthMiddleware.Handle)
	inbox.Post("/", cfg.Inbox.Send)
	inbox.Get("/", cfg.Inbox.List)
	inbox.Put("/:id/status", cfg.Inbox.SetStatus)
}

// NewApp builds a Fiber app with middlewares and routes registered.
func NewApp(appCfg fiber.Config, deps AppDependencies, routes RouteConfig) *fiber.App {
	app := fiber.New(appCfg)
	RegisterMiddlewares(app, deps.Logger, deps.Metrics, deps.Timeout)
	RegisterRoutes(app, routes)
	return app
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/cache"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/media"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/worker"
	"github.com/spec-kit/helpdesk-service/pkg/util/timeutil"
)

type repositories struct {
	users       repository.UserRepository
	tickets     repository.TicketRepository
	assignments repository.AssignmentRepository
	proofs      repository.ProofRepository
	reminders   repository.ReminderRepository
	instrs      repository.WorkInstructionRepository
	responses   repository.TicketResponseRepository
	satisfied   repository.SatisfactionRepository
	inbox       repository.InboxRepository
}

func newRepositories(pg *persistence.Postgres) repositories {
	if pg.Configured() {
		pool := pg.Pool
		return repositories{
			users:       repository.NewUserRepository(pool),
			tickets:     repository.NewTicketRepository(pool),
			assignments: repository.NewAssignmentRepository(pool),
			proofs:      repository.NewProofRepository(pool),
			reminders:   repository.NewReminderRepository(pool),
			instrs:      repository.NewWorkInstructionRepository(pool),
			responses:   repository.NewTicketResponseRepository(pool),
			satisfied:   repository.NewSatisfactionRepository(pool),
			inbox:       repository.NewInboxRepository(pool),
		}
	}
	tickets := memory.NewTicketRepository(nil)
	return repositories{
		users:       memory.NewUserRepository(nil),
		tickets:     tickets,
		assignments: memory.NewAssignmentRepository(nil, tickets),
		proofs:      memory.NewProofRepository(nil),
		reminders:   memory.NewReminderRepository(nil),
		instrs:      memory.NewWorkInstructionRepository(nil),
		responses:   memory.NewTicketResponseRepository(nil),
		satisfied:   memory.NewSatisfactionRepository(nil),
		inbox:       memory.NewInboxRepository(nil),
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	zone, err := timeutil.NewZone(cfg.App.DisplayTimezone)
	if err != nil {
		logger.Fatal("invalid display timezone", zap.String("zone", cfg.App.DisplayTimezone), zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing := observability.SetupTracing(ctx, cfg.App, cfg.Telemetry, logger)

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Configured() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()
	dashboard := cache.NewDashboardCache(redis.Handle(), cfg.Redis.DashboardCacheTTL(), logger)

	store, err := media.NewLocalStore(cfg.Media)
	if err != nil {
		logger.Fatal("failed to prepare media store", zap.Error(err))
	}

	publisher, err := events.NewRabbitPublisher(ctx, cfg.Broker, logger)
	if err != nil {
		logger.Fatal("failed to connect rabbitmq", zap.Error(err))
	}
	if publisher != nil {
		defer publisher.Close()
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	repos := newRepositories(pg)

	rt := service.Runtime{
		Now:        time.Now,
		Zone:       zone,
		Logger:     logger,
		Dispatcher: dispatcher,
	}
	authService := service.NewAuthService(*cfg, service.AuthDependencies{UserRepo: repos.users, Runtime: rt})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     repos.tickets,
		AssignmentRepo: repos.assignments,
		UserRepo:       repos.users,
		Cache:          dashboard,
		Runtime:        rt,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		AssignmentRepo: repos.assignments,
		TicketRepo:     repos.tickets,
		UserRepo:       repos.users,
		Cache:          dashboard,
		Runtime:        rt,
	})
	proofService := service.NewProofService(service.ProofDependencies{
		ProofRepo:           repos.proofs,
		TicketRepo:          repos.tickets,
		UserRepo:            repos.users,
		WorkInstructionRepo: repos.instrs,
		Runtime:             rt,
	})
	instructionService := service.NewWorkInstructionService(service.WorkInstructionDependencies{
		WorkInstructionRepo: repos.instrs,
		UserRepo:            repos.users,
		Runtime:             rt,
	})
	replyService := service.NewReplyService(service.ReplyDependencies{
		ResponseRepo:     repos.responses,
		SatisfactionRepo: repos.satisfied,
		TicketRepo:       repos.tickets,
		UserRepo:         repos.users,
		Runtime:          rt,
	})
	inboxService := service.NewInboxService(service.InboxDependencies{InboxRepo: repos.inbox, Runtime: rt})
	reminderService := service.NewReminderService(service.ReminderDependencies{
		ReminderRepo: repos.reminders,
		TicketRepo:   repos.tickets,
		UserRepo:     repos.users,
		Runtime:      rt,
	})
	reportService := service.NewReportService(service.ReportDependencies{
		TicketRepo:     repos.tickets,
		AssignmentRepo: repos.assignments,
		UserRepo:       repos.users,
		Cache:          dashboard,
		Runtime:        rt,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		Dispatcher: dispatcher,
		UserRepo:   repos.users,
		Logger:     logger,
		Metrics:    metrics,
	})
	stopWorker := worker.StartNotificationWorker(ctx, notificationService, publisher, logger, metrics)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), repos.users)
	uploads := handlers.Uploads{Store: store, MaxBytes: cfg.Media.MaxUploadBytes, Logger: logger}

	app := httptransport.NewApp(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: 3*cfg.Media.MaxUploadBytes + 1<<20,
	}, httptransport.AppDependencies{
		Logger:  logger,
		Metrics: metrics,
		Timeout: cfg.App.RequestTimeout(),
	}, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService, uploads, zone),
		Assignments:    handlers.NewAssignmentsHandler(assignmentService, uploads, zone),
		Evidence:       handlers.NewEvidenceHandler(proofService, reminderService, uploads, zone),
		Reports:        handlers.NewReportsHandler(reportService, zone),
		Instructions:   handlers.NewWorkInstructionsHandler(instructionService, uploads, zone),
		Replies:        handlers.NewRepliesHandler(replyService, uploads, zone),
		Inbox:          handlers.NewInboxHandler(inboxService, zone),
		Media:          handlers.NewMediaHandler(store),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	stopWorker()
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

const defaultOutboxSize = 256

// NotificationService turns domain events into push-notification envelopes.
// Envelopes are queued on a bounded outbox drained by the notification
// worker; when the outbox is full the envelope is dropped.
type NotificationService struct {
	dispatcher events.Dispatcher
	users      repository.UserRepository
	logger     *zap.Logger
	metrics    *observability.Metrics
	outbox     chan events.Envelope
}

// NotificationDependencies bundles collaborators.
type NotificationDependencies struct {
	Dispatcher events.Dispatcher
	UserRepo   repository.UserRepository
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	OutboxSize int
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	size := deps.OutboxSize
	if size <= 0 {
		size = defaultOutboxSize
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		users:      deps.UserRepo,
		logger:     logger,
		metrics:    deps.Metrics,
		outbox:     make(chan events.Envelope, size),
	}
}

// RegisterHandlers subscribes to every domain event.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, t := range events.AllEventTypes {
		n.dispatcher.Subscribe(t, n.handle)
	}
}

// Outbox is the queue the worker drains.
func (n *NotificationService) Outbox() <-chan events.Envelope {
	return n.outbox
}

func (n *NotificationService) handle(ctx context.Context, event events.Event) error {
	recipients := make([]string, 0, len(event.Recipients))
	for _, id := range uniqueNonEmpty(event.Recipients) {
		if id != event.ActorID {
			recipients = append(recipients, id)
		}
	}
	env := events.Envelope{Event: event, PushTokens: []string{}}
	if len(recipients) > 0 {
		users, err := n.users.GetByIDs(ctx, recipients)
		if err != nil {
			return err
		}
		for _, u := range users {
			if u.PushToken != nil && *u.PushToken != "" {
				env.PushTokens = append(env.PushTokens, *u.PushToken)
			}
		}
	}

	select {
	case n.outbox <- env:
	default:
		n.metrics.RecordNotification("dropped")
		n.logger.Warn("notification outbox full; dropping",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID))
	}
	return nil
}

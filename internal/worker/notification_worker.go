package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

const publishTimeout = 5 * time.Second

// StartNotificationWorker registers notification handlers and drains the
// outbox into publisher. With a nil publisher envelopes are only logged.
// The returned func stops the worker after the queued envelopes are flushed.
func StartNotificationWorker(ctx context.Context, notifications *service.NotificationService, publisher events.Publisher, logger *zap.Logger, metrics *observability.Metrics) func() {
	if notifications == nil {
		return func() {}
	}
	notifications.RegisterHandlers()

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		outbox := notifications.Outbox()
		for {
			select {
			case env := <-outbox:
				deliver(env, publisher, logger, metrics)
			case <-ctx.Done():
				for {
					select {
					case env := <-outbox:
						deliver(env, publisher, logger, metrics)
					default:
						return
					}
				}
			}
		}
	}()

	return func() {
		cancel()
		wg.Wait()
	}
}

func deliver(env events.Envelope, publisher events.Publisher, logger *zap.Logger, metrics *observability.Metrics) {
	if publisher == nil {
		metrics.RecordNotification("logged")
		logger.Info("notification",
			zap.String("event_type", string(env.Event.Type)),
			zap.String("ticket_id", env.Event.TicketID),
			zap.Int("push_tokens", len(env.PushTokens)))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := publisher.Publish(ctx, env); err != nil {
		metrics.RecordNotification("failed")
		logger.Error("notification publish failed",
			zap.String("event_type", string(env.Event.Type)),
			zap.String("event_id", env.Event.ID),
			zap.Error(err))
		return
	}
	metrics.RecordNotification("published")
}

package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

type recordingPublisher struct {
	mu   sync.Mutex
	sent []events.Envelope
	fail bool
}

func (p *recordingPublisher) Publish(_ context.Context, env events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.sent = append(p.sent, env)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestWorkerFlushesOutboxOnStop(t *testing.T) {
	ctx := context.Background()
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	ns := service.NewNotificationService(service.NotificationDependencies{
		Dispatcher: dispatcher,
		UserRepo:   memory.NewUserRepository(nil),
		Metrics:    metrics,
	})
	pub := &recordingPublisher{}
	stop := StartNotificationWorker(ctx, ns, pub, zap.NewNop(), metrics)

	for _, et := range []events.EventType{events.EventTicketCreated, events.EventProofSubmitted} {
		if err := dispatcher.Publish(ctx, events.Event{Type: et}); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	stop()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.sent) != 2 {
		t.Fatalf("published %d envelopes, want 2", len(pub.sent))
	}
	if got := metrics.Snapshot().Notifications["published"]; got != 2 {
		t.Fatalf("published counter = %d", got)
	}
}

func TestWorkerCountsFailures(t *testing.T) {
	ctx := context.Background()
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	ns := service.NewNotificationService(service.NotificationDependencies{
		Dispatcher: dispatcher,
		UserRepo:   memory.NewUserRepository(nil),
	})
	stop := StartNotificationWorker(ctx, ns, &recordingPublisher{fail: true}, zap.NewNop(), metrics)
	if err := dispatcher.Publish(ctx, events.Event{Type: events.EventReminderSent}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	stop()
	if got := metrics.Snapshot().Notifications["failed"]; got != 1 {
		t.Fatalf("failed counter = %d", got)
	}
}

func TestWorkerWithoutPublisherLogs(t *testing.T) {
	ctx := context.Background()
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	ns := service.NewNotificationService(service.NotificationDependencies{
		Dispatcher: dispatcher,
		UserRepo:   memory.NewUserRepository(nil),
	})
	stop := StartNotificationWorker(ctx, ns, nil, zap.NewNop(), metrics)
	if err := dispatcher.Publish(ctx, events.Event{Type: events.EventTicketForwarded}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	stop()
	if got := metrics.Snapshot().Notifications["logged"]; got != 1 {
		t.Fatalf("logged counter = %d", got)
	}
}

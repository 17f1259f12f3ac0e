package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// InboxService keeps the in-app message list each user reads.
type InboxService struct {
	items repository.InboxRepository
	rt    Runtime
}

// InboxDependencies bundles repositories.
type InboxDependencies struct {
	InboxRepo repository.InboxRepository
	Runtime   Runtime
}

// InboxInput carries a new message; every field is required.
type InboxInput struct {
	ReceiverID  string
	SenderID    string
	Kind        string
	Description string
}

// NewInboxService creates the service.
func NewInboxService(deps InboxDependencies) *InboxService {
	return &InboxService{items: deps.InboxRepo, rt: deps.Runtime}
}

// Send stores an unread message for the receiver.
func (s *InboxService) Send(ctx context.Context, input InboxInput) (*domain.InboxItem, error) {
	if missing := missingFields(
		"receiver_id", input.ReceiverID,
		"sender_id", input.SenderID,
		"type", input.Kind,
		"description", input.Description,
	); len(missing) > 0 {
		return nil, apperrors.NewMissingFields(missing...)
	}
	kind, ok := domain.ParseInboxKind(input.Kind)
	if !ok {
		return nil, apperrors.NewInvalidField("type", "type must be one of message, alert, request, info")
	}
	item := &domain.InboxItem{
		ReceiverID:  strings.TrimSpace(input.ReceiverID),
		SenderID:    strings.TrimSpace(input.SenderID),
		Kind:        kind,
		Status:      domain.InboxUnread,
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.rt.publishEvent(ctx, events.Event{
		Type:       events.EventInboxMessageSent,
		ActorID:    item.SenderID,
		Recipients: []string{item.ReceiverID},
		Payload:    events.InboxMessageSentPayload{ItemID: item.ID, Kind: item.Kind},
	})
	return item, nil
}

// List returns the receiver's messages in one status, newest first.
func (s *InboxService) List(ctx context.Context, receiverID, status string) ([]domain.InboxItem, error) {
	if missing := missingFields("receiver_id", receiverID, "status", status); len(missing) > 0 {
		return nil, apperrors.NewMissingFields(missing...)
	}
	st, ok := domain.ParseInboxStatus(strings.TrimSpace(status))
	if !ok {
		return nil, apperrors.NewInvalidField("status", `status must be "read" or "unread"`)
	}
	items, err := s.items.List(ctx, strings.TrimSpace(receiverID), st)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if items == nil {
		items = []domain.InboxItem{}
	}
	return items, nil
}

// SetStatus marks a message read or unread.
func (s *InboxService) SetStatus(ctx context.Context, id, status string) (*domain.InboxItem, error) {
	st, ok := domain.ParseInboxStatus(strings.TrimSpace(status))
	if !ok {
		return nil, apperrors.NewInvalidField("status", `status must be "read" or "unread"`)
	}
	id = strings.TrimSpace(id)
	item, err := s.items.SetStatus(ctx, id, st)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("notification", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return item, nil
}

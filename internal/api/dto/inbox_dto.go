package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/pkg/util/timeutil"
)

// SendInboxRequest payload.
type SendInboxRequest struct {
	ReceiverID  string `json:"receiver_id"`
	SenderID    string `json:"sender_id"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// UpdateInboxStatusRequest payload.
type UpdateInboxStatusRequest struct {
	Status string `json:"status"`
}

// InboxItemResponse is one in-app message.
type InboxItemResponse struct {
	ID          string             `json:"id"`
	ReceiverID  string             `json:"receiver_id"`
	SenderID    string             `json:"sender_id"`
	Type        domain.InboxKind   `json:"type"`
	Status      domain.InboxStatus `json:"status"`
	Description string             `json:"description"`
	SentAt      time.Time          `json:"time"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// NewInboxItemResponse maps a message.
func NewInboxItemResponse(item *domain.InboxItem, zone timeutil.Zone) InboxItemResponse {
	return InboxItemResponse{
		ID:          item.ID,
		ReceiverID:  item.ReceiverID,
		SenderID:    item.SenderID,
		Type:        item.Kind,
		Status:      item.Status,
		Description: item.Description,
		SentAt:      zone.In(item.SentAt),
		CreatedAt:   zone.In(item.CreatedAt),
		UpdatedAt:   zone.In(item.UpdatedAt),
	}
}

// NewInboxList maps messages, never returning nil.
func NewInboxList(items []domain.InboxItem, zone timeutil.Zone) []InboxItemResponse {
	out := make([]InboxItemResponse, 0, len(items))
	for i := range items {
		out = append(out, NewInboxItemResponse(&items[i], zone))
	}
	return out
}

package domain

import "time"

// InboxKind classifies an in-app message.
type InboxKind string

const (
	InboxMessage InboxKind = "message"
	InboxAlert   InboxKind = "alert"
	InboxRequest InboxKind = "request"
	InboxInfo    InboxKind = "info"
)

var inboxKinds = []InboxKind{InboxMessage, InboxAlert, InboxRequest, InboxInfo}

// InboxStatus tracks whether the receiver has seen a message.
type InboxStatus string

const (
	InboxUnread InboxStatus = "unread"
	InboxRead   InboxStatus = "read"
)

// InboxItem is a message shown in a user's in-app inbox.
type InboxItem struct {
	ID          string
	ReceiverID  string
	SenderID    string
	Kind        InboxKind
	Status      InboxStatus
	Description string
	SentAt      time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ParseInboxKind matches v case-insensitively.
func ParseInboxKind(v string) (InboxKind, bool) {
	return matchFold(v, inboxKinds)
}

// ParseInboxStatus accepts only the exact lowercase names.
func ParseInboxStatus(v string) (InboxStatus, bool) {
	switch s := InboxStatus(v); s {
	case InboxUnread, InboxRead:
		return s, true
	}
	return "", false
}

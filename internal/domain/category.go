package domain

import (
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/pkg/util/timeutil"
)

// TicketCategory is a bucket on the categorized dashboard.
type TicketCategory string

const (
	CategoryCompleted TicketCategory = "completed"
	CategoryPending   TicketCategory = "pending"
	CategoryActive    TicketCategory = "active"
	CategoryRejection TicketCategory = "rejection"
	CategoryTraining  TicketCategory = "training"
)

// Categories lists dashboard buckets in display order.
var Categories = []TicketCategory{
	CategoryCompleted,
	CategoryPending,
	CategoryActive,
	CategoryRejection,
	CategoryTraining,
}

// Categorize buckets t for the dashboard. A deadline has passed once it is
// before now, matching the overdue backlog; "today" is the calendar day of now
// in zone. The second result is false for tickets that fall in no bucket,
// which includes pending tickets due later today and every ticket due on a
// later day.
func Categorize(t *Ticket, now time.Time, zone timeutil.Zone) (TicketCategory, bool) {
	status := strings.ToLower(string(t.Status))
	switch status {
	case strings.ToLower(string(TicketStatusRejected)):
		return CategoryRejection, true
	case strings.ToLower(string(TicketStatusTraining)):
		return CategoryTraining, true
	}
	if t.Deadline == nil {
		return "", false
	}
	if t.Deadline.Before(now) {
		if status == "complete" || status == "completed" {
			return CategoryCompleted, true
		}
		return CategoryPending, true
	}
	if zone.CompareDay(*t.Deadline, now) == 0 && status != string(TicketStatusPending) {
		return CategoryActive, true
	}
	return "", false
}

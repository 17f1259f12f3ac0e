package domain

import (
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/pkg/util/timeutil"
)

// AssignmentStatus enumerates delegation progress.
type AssignmentStatus string

const (
	AssignmentStatusPending   AssignmentStatus = "pending"
	AssignmentStatusWorking   AssignmentStatus = "Working"
	AssignmentStatusCompleted AssignmentStatus = "Completed"
)

var assignmentStatuses = []AssignmentStatus{
	AssignmentStatusPending,
	AssignmentStatusWorking,
	AssignmentStatusCompleted,
}

// ParseAssignmentStatus matches v case-insensitively against the known statuses.
func ParseAssignmentStatus(v string) (AssignmentStatus, bool) {
	return matchFold(v, assignmentStatuses)
}

// Assignment is a delegation of a ticket, or of a standalone task, to assignees.
type Assignment struct {
	ID          string
	TicketID    *string
	ManagerID   string
	AssigneeIDs []string
	Details     string
	Media       MediaRefs
	Priority    string
	TargetDate  *time.Time
	Status      AssignmentStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasAssignee reports whether userID is one of the assignees.
func (a *Assignment) HasAssignee(userID string) bool {
	for _, id := range a.AssigneeIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// AssignmentOutcome is the derived bucket used by the assignee report.
type AssignmentOutcome string

const (
	OutcomeCompleted AssignmentOutcome = "completed"
	OutcomeDelayed   AssignmentOutcome = "delayed"
	OutcomePending   AssignmentOutcome = "pending"
)

// Outcome classifies the assignment relative to now.
func (a *Assignment) Outcome(now time.Time) AssignmentOutcome {
	if strings.EqualFold(string(a.Status), string(AssignmentStatusCompleted)) {
		return OutcomeCompleted
	}
	if a.TargetDate != nil && a.TargetDate.Before(now) {
		return OutcomeDelayed
	}
	return OutcomePending
}

// DateBucket partitions assignments by target date.
type DateBucket string

const (
	BucketToday   DateBucket = "today"
	BucketWeekly  DateBucket = "weekly"
	BucketPending DateBucket = "pending"
)

// Bucket places the assignment by calendar day of its target date in zone.
// Assignments with no target date, or one in the past, are pending.
func (a *Assignment) Bucket(now time.Time, zone timeutil.Zone) DateBucket {
	if a.TargetDate == nil {
		return BucketPending
	}
	switch zone.CompareDay(*a.TargetDate, now) {
	case 0:
		return BucketToday
	case 1:
		return BucketWeekly
	default:
		return BucketPending
	}
}

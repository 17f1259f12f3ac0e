package domain

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-service/pkg/util/timeutil"
)

func TestParseIDList(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"array", `["a","b"]`, []string{"a", "b"}},
		{"encoded string", `"[\"a\",\"b\"]"`, []string{"a", "b"}},
		{"form text", ` ["x"] `, []string{"x"}},
		{"dedupe keeps order", `["b","a","b"]`, []string{"b", "a"}},
	}
	for _, tt := range cases {
		got, err := ParseIDList([]byte(tt.raw))
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tt.name, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParseIDListRejects(t *testing.T) {
	for _, raw := range []string{``, `null`, `[]`, `"abc"`, `{"a":1}`, `[1,2]`, `["a",""]`, `"[\"a\""`} {
		if _, err := ParseIDList([]byte(raw)); !errors.Is(err, ErrInvalidIDList) {
			t.Fatalf("%q: expected ErrInvalidIDList, got %v", raw, err)
		}
	}
}

func TestParseTicketStatus(t *testing.T) {
	cases := map[string]TicketStatus{
		"PENDING":   TicketStatusPending,
		"active":    TicketStatusActive,
		"assign":    TicketStatusAssign,
		"complete":  TicketStatusCompleted,
		"Completed": TicketStatusCompleted,
		" Rejected": TicketStatusRejected,
	}
	for in, want := range cases {
		got, ok := ParseTicketStatus(in)
		if !ok || got != want {
			t.Fatalf("%q: got %q %v, want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseTicketStatus("archived"); ok {
		t.Fatalf("expected unknown status to be rejected")
	}
}

func TestParseEnums(t *testing.T) {
	if v, ok := ParseTicketType("COMPLAINT"); !ok || v != TicketTypeComplaint {
		t.Fatalf("type: got %q %v", v, ok)
	}
	if v, ok := ParseTicketPriority("very urgent"); !ok || v != TicketPriorityVeryUrgent {
		t.Fatalf("priority: got %q %v", v, ok)
	}
	if _, ok := ParseRights("view"); ok {
		t.Fatalf("rights must match exactly")
	}
	if v, ok := ParseRights("Power"); !ok || v != RightsPower {
		t.Fatalf("rights: got %q %v", v, ok)
	}
	if v, ok := ParseAssignmentStatus("working"); !ok || v != AssignmentStatusWorking {
		t.Fatalf("assignment status: got %q %v", v, ok)
	}
}

func TestCategorize(t *testing.T) {
	zone := timeutil.FixedZone("PKT", 5*60*60)
	now := time.Date(2025, 7, 23, 6, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	earlierToday := now.Add(-3 * time.Hour)
	laterToday := now.Add(3 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	cases := []struct {
		name     string
		status   TicketStatus
		deadline *time.Time
		want     TicketCategory
		ok       bool
	}{
		{"rejected wins", TicketStatusRejected, &tomorrow, CategoryRejection, true},
		{"training wins", TicketStatusTraining, nil, CategoryTraining, true},
		{"past completed", TicketStatusCompleted, &yesterday, CategoryCompleted, true},
		{"past legacy complete", TicketStatus("complete"), &yesterday, CategoryCompleted, true},
		{"past not completed", TicketStatusWorking, &yesterday, CategoryPending, true},
		{"earlier today working", TicketStatusWorking, &earlierToday, CategoryPending, true},
		{"earlier today completed", TicketStatusCompleted, &earlierToday, CategoryCompleted, true},
		{"earlier today pending", TicketStatusPending, &earlierToday, CategoryPending, true},
		{"today active", TicketStatusAssign, &laterToday, CategoryActive, true},
		{"today pending excluded", TicketStatusPending, &laterToday, "", false},
		{"future excluded", TicketStatusActive, &tomorrow, "", false},
		{"no deadline excluded", TicketStatusActive, nil, "", false},
	}
	for _, tt := range cases {
		ticket := &Ticket{Status: tt.status, Deadline: tt.deadline}
		got, ok := Categorize(ticket, now, zone)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("%s: got %q %v, want %q %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAssignmentOutcomeAndBucket(t *testing.T) {
	zone := timeutil.UTC()
	now := time.Date(2025, 7, 23, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(72 * time.Hour)

	done := &Assignment{Status: AssignmentStatusCompleted, TargetDate: &past}
	if done.Outcome(now) != OutcomeCompleted {
		t.Fatalf("completed assignment should stay completed")
	}
	late := &Assignment{Status: AssignmentStatusWorking, TargetDate: &past}
	if late.Outcome(now) != OutcomeDelayed {
		t.Fatalf("expected delayed")
	}
	open := &Assignment{Status: AssignmentStatusPending}
	if open.Outcome(now) != OutcomePending {
		t.Fatalf("expected pending")
	}

	if late.Bucket(now, zone) != BucketToday {
		t.Fatalf("earlier today should bucket as today")
	}
	if (&Assignment{TargetDate: &future}).Bucket(now, zone) != BucketWeekly {
		t.Fatalf("future should bucket as weekly")
	}
	if open.Bucket(now, zone) != BucketPending {
		t.Fatalf("no date should bucket as pending")
	}
}

func TestReminderCapped(t *testing.T) {
	r := &Reminder{Count: MaxReminderCount - 1}
	if r.Capped() {
		t.Fatalf("not yet capped")
	}
	r.Count++
	if !r.Capped() {
		t.Fatalf("expected capped at %d", MaxReminderCount)
	}
}

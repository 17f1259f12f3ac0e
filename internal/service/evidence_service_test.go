package service

import (
	"context"
	"sync"
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestProofWithOnlyTicketID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.proofSvc.SubmitProof(ctx, ProofSubmitInput{})
	assertCode(t, err, apperrors.CodeValidation)

	proof, err := f.proofSvc.SubmitProof(ctx, ProofSubmitInput{TicketID: "t-1", Remarks: strPtr("  ")})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	list, err := f.proofSvc.ListProofs(ctx, ProofQuery{TicketID: strPtr("t-1")})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one proof, got %d", len(list))
	}
	got := list[0]
	if got.Proof.ID != proof.ID || got.Proof.TicketID != "t-1" {
		t.Fatalf("unexpected proof %+v", got.Proof)
	}
	p := got.Proof
	if p.SubmitterID != nil || p.RecipientID != nil || p.WorkInstructionID != nil || p.RecipientName != nil || p.Remarks != nil {
		t.Fatalf("optional fields must stay nil: %+v", p)
	}
	if p.Media.ImageURL != nil || p.Media.VideoURL != nil || p.Media.VoiceNoteURL != nil {
		t.Fatalf("media must stay nil: %+v", p.Media)
	}
	if got.Ticket != nil || got.Recipient != nil {
		t.Fatalf("unresolved joins must be nil: %+v", got)
	}
}

func TestListProofsFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	recipient := f.addUser(t, "recipient", domain.RoleIT)
	ticket := f.addTicket(t, "creator", recipient.ID)

	for _, submitter := range []string{"s1", "s1", "s2"} {
		if _, err := f.proofSvc.SubmitProof(ctx, ProofSubmitInput{
			TicketID: ticket.ID, SubmitterID: strPtr(submitter), RecipientID: strPtr(recipient.ID),
		}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	_, err := f.proofSvc.ListProofs(ctx, ProofQuery{WorkInstructionID: strPtr("wi")})
	assertCode(t, err, apperrors.CodeValidation)

	list, err := f.proofSvc.ListProofs(ctx, ProofQuery{SubmitterID: strPtr("s1")})
	if err != nil || len(list) != 2 {
		t.Fatalf("by submitter = %d, %v", len(list), err)
	}
	if list[0].Ticket == nil || list[0].Ticket.ID != ticket.ID || list[0].Recipient == nil {
		t.Fatalf("joins missing: %+v", list[0])
	}

	list, err = f.proofSvc.ListProofs(ctx, ProofQuery{SubmitterID: strPtr("s2"), TicketID: strPtr(ticket.ID)})
	if err != nil || len(list) != 1 {
		t.Fatalf("by submitter and ticket = %d, %v", len(list), err)
	}

	if n, err := f.proofSvc.PurgeProofs(ctx); err != nil || n != 3 {
		t.Fatalf("purge = %d, %v", n, err)
	}
}

func TestReminderCap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.addTicket(t, "creator", "r1")

	wantCounts := []int{1, 2, 3, 3, 3}
	for i, want := range wantCounts {
		res, err := f.reminderSvc.SendReminder(ctx, ticket.ID, "creator", "r1")
		if err != nil {
			t.Fatalf("send %d: %v", i+1, err)
		}
		if res.Reminder.Count != want {
			t.Fatalf("send %d: count = %d, want %d", i+1, res.Reminder.Count, want)
		}
		if res.Capped != (i >= domain.MaxReminderCount) {
			t.Fatalf("send %d: capped = %v", i+1, res.Capped)
		}
	}
	if got := len(f.eventsOf(events.EventReminderSent)); got != domain.MaxReminderCount {
		t.Fatalf("expected %d reminder events, got %d", domain.MaxReminderCount, got)
	}

	other, err := f.reminderSvc.SendReminder(ctx, ticket.ID, "creator", "r2")
	if err != nil || other.Reminder.Count != 1 {
		t.Fatalf("separate triple: %+v, %v", other, err)
	}
}

func TestReminderConcurrentSendsNeverExceedCap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.addTicket(t, "s", "r")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.reminderSvc.SendReminder(ctx, ticket.ID, "s", "r")
		}()
	}
	wg.Wait()

	rem, err := f.reminders.Get(ctx, ticket.ID, "s", "r")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rem.Count > domain.MaxReminderCount || rem.Count < 1 {
		t.Fatalf("count = %d", rem.Count)
	}
}

func TestReminderValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ticket := f.addTicket(t, "s", "r")

	_, err := f.reminderSvc.SendReminder(ctx, ticket.ID, "", "r")
	assertCode(t, err, apperrors.CodeValidation)

	_, err = f.reminderSvc.SendReminder(ctx, "not-a-uuid", "s", "r")
	assertCode(t, err, apperrors.CodeValidation)
	if got := len(f.eventsOf(events.EventReminderSent)); got != 0 {
		t.Fatalf("rejected reminders must not be stored, got %d events", got)
	}

	_, err = f.reminderSvc.ListReminders(ctx, "not-a-uuid")
	assertCode(t, err, apperrors.CodeValidation)

	_, err = f.reminderSvc.ListReminders(ctx, "")
	assertCode(t, err, apperrors.CodeValidation)
}

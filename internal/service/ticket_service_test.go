package service

import (
	"context"
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestCreateTicketValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input TicketCreateInput
		code  string
	}{
		{"missing creator", TicketCreateInput{RecipientIDs: []string{"r"}, Type: "general", Priority: "Normal"}, apperrors.CodeValidation},
		{"missing recipients", TicketCreateInput{CreatorID: "c", Type: "general", Priority: "Normal"}, apperrors.CodeValidation},
		{"unknown type", TicketCreateInput{CreatorID: "c", RecipientIDs: []string{"r"}, Type: "hardware", Priority: "Normal"}, apperrors.CodeValidation},
		{"unknown priority", TicketCreateInput{CreatorID: "c", RecipientIDs: []string{"r"}, Type: "general", Priority: "Low"}, apperrors.CodeValidation},
		{"bad rights", TicketCreateInput{CreatorID: "c", RecipientIDs: []string{"r"}, Type: "general", Priority: "Normal", Rights: strPtr("Admin")}, apperrors.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.ticketSvc.CreateTicket(ctx, tc.input); !apperrors.IsCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
	if len(f.eventsOf(events.EventTicketCreated)) != 0 {
		t.Fatalf("rejected tickets must not publish events")
	}
}

func TestCreateTicketDefaults(t *testing.T) {
	f := newFixture(t)
	ticket, err := f.ticketSvc.CreateTicket(context.Background(), TicketCreateInput{
		CreatorID:    "creator",
		RecipientIDs: []string{"r1", "r2"},
		Type:         "Complaint",
		Priority:     "very urgent",
		Rights:       strPtr("View"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket.ID == "" || ticket.Status != domain.TicketStatusPending {
		t.Fatalf("unexpected ticket %+v", ticket)
	}
	if ticket.Priority != domain.TicketPriorityVeryUrgent || ticket.Type != domain.TicketTypeComplaint {
		t.Fatalf("enums not normalised: %q %q", ticket.Priority, ticket.Type)
	}
	if ticket.Rights == nil || *ticket.Rights != domain.RightsView {
		t.Fatalf("rights = %v", ticket.Rights)
	}
	if !ticket.CreatedAt.Equal(testNow) {
		t.Fatalf("created_at = %v", ticket.CreatedAt)
	}
}

func TestForwardReplacesRecipients(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.addTicket(t, "creator", "r1", "r2", "r3")

	forwarded, err := f.ticketSvc.ForwardTicket(ctx, TicketForwardInput{TicketID: ticket.ID, RecipientID: "r9", Rights: "Forward"})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	stored, _ := f.tickets.GetByID(ctx, ticket.ID)
	for _, got := range []*domain.Ticket{forwarded, stored} {
		if len(got.RecipientIDs) != 1 || got.RecipientIDs[0] != "r9" {
			t.Fatalf("recipients = %v", got.RecipientIDs)
		}
		if got.Rights == nil || *got.Rights != domain.RightsForward {
			t.Fatalf("rights = %v", got.Rights)
		}
	}
	evs := f.eventsOf(events.EventTicketForwarded)
	if len(evs) != 1 {
		t.Fatalf("expected forward event, got %d", len(evs))
	}
	payload := evs[0].Payload.(events.TicketForwardedPayload)
	if len(payload.PreviousRecipients) != 3 {
		t.Fatalf("previous recipients = %v", payload.PreviousRecipients)
	}
}

func TestForwardErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.addTicket(t, "creator", "r1")

	_, err := f.ticketSvc.ForwardTicket(ctx, TicketForwardInput{TicketID: "00000000-0000-0000-0000-000000000000", RecipientID: "r9", Rights: "View"})
	assertCode(t, err, apperrors.CodeNotFound)

	_, err = f.ticketSvc.ForwardTicket(ctx, TicketForwardInput{TicketID: ticket.ID, RecipientID: "r9", Rights: "view"})
	assertCode(t, err, apperrors.CodeValidation)

	_, err = f.ticketSvc.ForwardTicket(ctx, TicketForwardInput{TicketID: ticket.ID, Rights: "View"})
	assertCode(t, err, apperrors.CodeValidation)
}

func TestUpdateStatusAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.addTicket(t, "creator", "r1")

	cases := []struct {
		name      string
		ticketID  string
		requester string
		recipient string
		status    string
		code      string
	}{
		{"missing ticket", "00000000-0000-0000-0000-000000000000", "creator", "r1", "Active", apperrors.CodeNotFound},
		{"wrong requester", ticket.ID, "someone", "r1", "Active", apperrors.CodeNotFound},
		{"wrong recipient", ticket.ID, "creator", "r2", "Active", apperrors.CodeNotFound},
		{"unknown status", ticket.ID, "creator", "r1", "archived", apperrors.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.ticketSvc.UpdateStatus(ctx, TicketStatusInput{
				TicketID: tc.ticketID, RequesterID: tc.requester, RecipientID: tc.recipient, Status: tc.status,
			})
			assertCode(t, err, tc.code)
		})
	}

	updated, err := f.ticketSvc.UpdateStatus(ctx, TicketStatusInput{
		TicketID: ticket.ID, RequesterID: "creator", RecipientID: "r1", Status: "complete",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.TicketStatusCompleted {
		t.Fatalf("status = %q", updated.Status)
	}
	if len(f.eventsOf(events.EventTicketStatusChanged)) != 1 {
		t.Fatalf("expected a status change event")
	}
}

func TestListByCreatorJoinsAssignments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creator := f.addUser(t, "creator", domain.RoleIncharge)
	r1 := f.addUser(t, "r1", domain.RoleSupervisor)
	r2 := f.addUser(t, "r2", domain.RoleSupervisor)
	ticket := f.addTicket(t, creator.ID, r1.ID, r2.ID)

	if _, err := f.assignmentSvc.CreateAssignment(ctx, AssignmentCreateInput{
		ManagerID: r1.ID, AssigneeIDs: []string{"worker"}, Details: "d", Priority: "Normal", TicketID: strPtr(ticket.ID),
	}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	list, err := f.ticketSvc.ListByCreator(ctx, creator.ID, nil, nil, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || len(list[0].Recipients) != 2 {
		t.Fatalf("unexpected listing %+v", list)
	}
	for _, rec := range list[0].Recipients {
		want := 0
		if rec.UserID == r1.ID {
			want = 1
		}
		if len(rec.Assignments) != want {
			t.Fatalf("recipient %s has %d assignments, want %d", rec.UserID, len(rec.Assignments), want)
		}
		if rec.Profile == nil {
			t.Fatalf("recipient %s profile not joined", rec.UserID)
		}
	}

	day := testNow.AddDate(0, 0, -3)
	list, err = f.ticketSvc.ListByCreator(ctx, creator.ID, nil, &day, &day)
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected nothing in an earlier range, got %d", len(list))
	}
}

func TestParticipantAndRecipientTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creator := f.addUser(t, "creator", domain.RoleIncharge)
	f.addTicket(t, creator.ID, "r1")
	second := f.addTicket(t, "other", "r1")
	f.addTicket(t, "other", "r2")

	if _, err := f.ticketSvc.UpdateStatus(ctx, TicketStatusInput{
		TicketID: second.ID, RequesterID: "other", RecipientID: "r1", Status: "resolved",
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	part, err := f.ticketSvc.ListForParticipant(ctx, "r1", nil, nil)
	if err != nil {
		t.Fatalf("participant: %v", err)
	}
	if len(part) != 2 {
		t.Fatalf("expected 2 tickets for r1, got %d", len(part))
	}
	for _, p := range part {
		if p.Ticket.CreatorID == creator.ID && (p.Sender == nil || p.Sender.ID != creator.ID) {
			t.Fatalf("sender not joined for %s", p.Ticket.ID)
		}
		if p.Ticket.CreatorID == "other" && p.Sender != nil {
			t.Fatalf("unknown sender must be nil")
		}
	}

	totals, err := f.ticketSvc.RecipientTotals(ctx, "r1")
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals.TypeCounts[domain.TicketTypeGeneral] != 1 || totals.TypeCounts[domain.TicketTypeBilling] != 0 {
		t.Fatalf("type counts = %v", totals.TypeCounts)
	}
	if totals.OtherCount != 1 || totals.Others[0].ID != second.ID {
		t.Fatalf("others = %+v", totals.Others)
	}
	if len(totals.Tickets) != 2 {
		t.Fatalf("tickets = %d", len(totals.Tickets))
	}
}

func TestPurgeTickets(t *testing.T) {
	f := newFixture(t)
	f.addTicket(t, "c", "r")
	f.addTicket(t, "c", "r")
	n, err := f.ticketSvc.PurgeTickets(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("purge = %d, %v", n, err)
	}
}

func TestCreateTicketSavesMediaAfterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	calls := 0
	saver := func(context.Context) (domain.MediaRefs, error) {
		calls++
		url := "http://files.test/media/1.png"
		return domain.MediaRefs{ImageURL: &url}, nil
	}

	_, err := f.ticketSvc.CreateTicket(ctx, TicketCreateInput{RecipientIDs: []string{"r"}, Type: "general", Priority: "Normal", SaveMedia: saver})
	assertCode(t, err, apperrors.CodeValidation)
	if calls != 0 {
		t.Fatalf("media saved for a rejected ticket")
	}

	ticket, err := f.ticketSvc.CreateTicket(ctx, TicketCreateInput{
		CreatorID: "c", RecipientIDs: []string{"r"}, Type: "general", Priority: "Normal", SaveMedia: saver,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if calls != 1 || ticket.Media.ImageURL == nil {
		t.Fatalf("media not attached: calls=%d media=%+v", calls, ticket.Media)
	}
}

// interleavedTickets runs afterGet once, between the service's read and its
// write, to stand in for a request racing on the same ticket.
type interleavedTickets struct {
	repository.TicketRepository
	afterGet func()
}

func (r *interleavedTickets) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := r.TicketRepository.GetByID(ctx, id)
	if hook := r.afterGet; hook != nil {
		r.afterGet = nil
		hook()
	}
	return ticket, err
}

func TestConcurrentTicketWritesKeepEachOthersFields(t *testing.T) {
	ctx := context.Background()

	t.Run("forward keeps a delegated status", func(t *testing.T) {
		f := newFixture(t)
		ticket := f.addTicket(t, "creator", "r1")
		racing := &interleavedTickets{TicketRepository: f.tickets, afterGet: func() {
			if _, err := f.assignmentSvc.CreateAssignment(ctx, AssignmentCreateInput{
				ManagerID: "r1", AssigneeIDs: []string{"r2"}, Details: "d", Priority: "Normal", TicketID: strPtr(ticket.ID),
			}); err != nil {
				t.Fatalf("delegate: %v", err)
			}
		}}
		svc := NewTicketService(TicketDependencies{TicketRepo: racing, AssignmentRepo: f.assignments, UserRepo: f.users})

		forwarded, err := svc.ForwardTicket(ctx, TicketForwardInput{TicketID: ticket.ID, RecipientID: "r9", Rights: "Power"})
		if err != nil {
			t.Fatalf("forward: %v", err)
		}
		stored, _ := f.tickets.GetByID(ctx, ticket.ID)
		for _, got := range []*domain.Ticket{forwarded, stored} {
			if got.Status != domain.TicketStatusAssign {
				t.Fatalf("status = %q, want %q", got.Status, domain.TicketStatusAssign)
			}
			if len(got.RecipientIDs) != 1 || got.RecipientIDs[0] != "r9" {
				t.Fatalf("recipients = %v", got.RecipientIDs)
			}
		}
	})

	t.Run("status update keeps a forward", func(t *testing.T) {
		f := newFixture(t)
		ticket := f.addTicket(t, "creator", "r1")
		racing := &interleavedTickets{TicketRepository: f.tickets, afterGet: func() {
			if _, err := f.ticketSvc.ForwardTicket(ctx, TicketForwardInput{TicketID: ticket.ID, RecipientID: "r2", Rights: "View"}); err != nil {
				t.Fatalf("forward: %v", err)
			}
		}}
		svc := NewTicketService(TicketDependencies{TicketRepo: racing, AssignmentRepo: f.assignments, UserRepo: f.users})

		updated, err := svc.UpdateStatus(ctx, TicketStatusInput{TicketID: ticket.ID, RequesterID: "creator", RecipientID: "r1", Status: "Working"})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		stored, _ := f.tickets.GetByID(ctx, ticket.ID)
		for _, got := range []*domain.Ticket{updated, stored} {
			if got.Status != domain.TicketStatusWorking {
				t.Fatalf("status = %q", got.Status)
			}
			if len(got.RecipientIDs) != 1 || got.RecipientIDs[0] != "r2" {
				t.Fatalf("recipients = %v", got.RecipientIDs)
			}
			if got.Rights == nil || *got.Rights != domain.RightsView {
				t.Fatalf("rights = %v", got.Rights)
			}
		}
	})
}

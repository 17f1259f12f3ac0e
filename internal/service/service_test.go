package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
	"github.com/spec-kit/helpdesk-service/pkg/util/timeutil"
)

// 11:00 in Karachi.
var testNow = time.Date(2025, 7, 23, 6, 0, 0, 0, time.UTC)

type fixture struct {
	users       *memory.UserRepository
	tickets     *memory.TicketRepository
	assignments *memory.AssignmentRepository
	proofs      *memory.ProofRepository
	reminders   *memory.ReminderRepository
	instrs      *memory.WorkInstructionRepository
	dispatcher  events.Dispatcher

	mu        sync.Mutex
	published []events.Event

	ticketSvc     *TicketService
	assignmentSvc *AssignmentService
	proofSvc      *ProofService
	reminderSvc   *ReminderService
	reportSvc     *ReportService
	instrSvc      *WorkInstructionService
	replySvc      *ReplyService
	inboxSvc      *InboxService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := memory.Clock(func() time.Time { return testNow })
	f := &fixture{
		users:      memory.NewUserRepository(clock),
		tickets:    memory.NewTicketRepository(clock),
		proofs:     memory.NewProofRepository(clock),
		reminders:  memory.NewReminderRepository(clock),
		instrs:     memory.NewWorkInstructionRepository(clock),
		dispatcher: events.NewInMemoryDispatcher(),
	}
	f.assignments = memory.NewAssignmentRepository(clock, f.tickets)
	for _, et := range events.AllEventTypes {
		f.dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.published = append(f.published, e)
			return nil
		})
	}

	rt := Runtime{
		Now:        func() time.Time { return testNow },
		Zone:       timeutil.FixedZone("PKT", 5*60*60),
		Dispatcher: f.dispatcher,
	}
	f.ticketSvc = NewTicketService(TicketDependencies{TicketRepo: f.tickets, AssignmentRepo: f.assignments, UserRepo: f.users, Runtime: rt})
	f.assignmentSvc = NewAssignmentService(AssignmentDependencies{AssignmentRepo: f.assignments, TicketRepo: f.tickets, UserRepo: f.users, Runtime: rt})
	f.proofSvc = NewProofService(ProofDependencies{
		ProofRepo: f.proofs, TicketRepo: f.tickets, UserRepo: f.users, WorkInstructionRepo: f.instrs, Runtime: rt,
	})
	f.reminderSvc = NewReminderService(ReminderDependencies{ReminderRepo: f.reminders, TicketRepo: f.tickets, UserRepo: f.users, Runtime: rt})
	f.reportSvc = NewReportService(ReportDependencies{TicketRepo: f.tickets, AssignmentRepo: f.assignments, UserRepo: f.users, Runtime: rt})
	f.instrSvc = NewWorkInstructionService(WorkInstructionDependencies{WorkInstructionRepo: f.instrs, UserRepo: f.users, Runtime: rt})
	f.replySvc = NewReplyService(ReplyDependencies{
		ResponseRepo:     memory.NewTicketResponseRepository(clock),
		SatisfactionRepo: memory.NewSatisfactionRepository(clock),
		TicketRepo:       f.tickets,
		UserRepo:         f.users,
		Runtime:          rt,
	})
	f.inboxSvc = NewInboxService(InboxDependencies{InboxRepo: memory.NewInboxRepository(clock), Runtime: rt})
	return f
}

func (f *fixture) addUser(t *testing.T, name string, role domain.UserRole) *domain.User {
	t.Helper()
	u := &domain.User{
		FullName:   name,
		Email:      name + "@example.com",
		Username:   name,
		Department: "Operations",
		Role:       role,
		Status:     domain.UserStatusActive,
	}
	if err := f.users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func (f *fixture) addTicket(t *testing.T, creatorID string, recipients ...string) *domain.Ticket {
	t.Helper()
	ticket, err := f.ticketSvc.CreateTicket(context.Background(), TicketCreateInput{
		CreatorID:    creatorID,
		RecipientIDs: recipients,
		Type:         "general",
		Description:  "printer on floor 2 is jammed",
		Priority:     "Normal",
	})
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return ticket
}

func (f *fixture) eventsOf(et events.EventType) []events.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []events.Event
	for _, e := range f.published {
		if e.Type == et {
			out = append(out, e)
		}
	}
	return out
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if !apperrors.IsCode(err, code) {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestEndToEndDelegationScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creator := f.addUser(t, "creator", domain.RoleIncharge)
	r1 := f.addUser(t, "r1", domain.RoleSupervisor)
	r2 := f.addUser(t, "r2", domain.RoleIT)

	ticket := f.addTicket(t, creator.ID, r1.ID)
	if ticket.Status != domain.TicketStatusPending {
		t.Fatalf("new ticket status = %q", ticket.Status)
	}

	assignment, err := f.assignmentSvc.CreateAssignment(ctx, AssignmentCreateInput{
		ManagerID:   r1.ID,
		AssigneeIDs: []string{r2.ID},
		Details:     "replace the fuser",
		Priority:    "Normal",
		TicketID:    strPtr(ticket.ID),
	})
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	stored, _ := f.tickets.GetByID(ctx, ticket.ID)
	if stored.Status != domain.TicketStatusAssign {
		t.Fatalf("ticket status after delegation = %q", stored.Status)
	}

	proof, err := f.proofSvc.SubmitProof(ctx, ProofSubmitInput{TicketID: ticket.ID, SubmitterID: strPtr(r2.ID)})
	if err != nil {
		t.Fatalf("submit proof: %v", err)
	}
	if proof.TicketID != ticket.ID || proof.SubmitterID == nil || *proof.SubmitterID != r2.ID {
		t.Fatalf("unexpected proof %+v", proof)
	}
	proofs, err := f.proofSvc.ListProofs(ctx, ProofQuery{TicketID: strPtr(ticket.ID)})
	if err != nil {
		t.Fatalf("list proofs: %v", err)
	}
	if len(proofs) != 1 || proofs[0].Ticket == nil || proofs[0].Ticket.Status != domain.TicketStatusAssign {
		t.Fatalf("unexpected proofs %+v", proofs)
	}

	mine, err := f.assignmentSvc.ListForUser(ctx, r1.ID, nil, nil)
	if err != nil {
		t.Fatalf("list assignments: %v", err)
	}
	if len(mine.Assignments) != 1 || mine.Assignments[0].Assignment.ID != assignment.ID {
		t.Fatalf("unexpected assignments %+v", mine.Assignments)
	}
	if mine.Assignments[0].Manager == nil || mine.Assignments[0].Manager.FullName != "r1" {
		t.Fatalf("manager not joined: %+v", mine.Assignments[0])
	}
	if len(mine.Tickets) != 1 || mine.Tickets[0].ID != ticket.ID {
		t.Fatalf("delegated ticket missing: %+v", mine.Tickets)
	}
	if len(mine.Creators) != 1 || mine.Creators[0].ID != creator.ID {
		t.Fatalf("creator profile missing: %+v", mine.Creators)
	}

	reminders, err := f.reminderSvc.ListReminders(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("list reminders: %v", err)
	}
	if len(reminders) != 0 {
		t.Fatalf("expected no reminders, got %d", len(reminders))
	}
	if _, err := f.reminderSvc.SendReminder(ctx, ticket.ID, r1.ID, r2.ID); err != nil {
		t.Fatalf("send reminder: %v", err)
	}
	reminders, err = f.reminderSvc.ListReminders(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("list reminders: %v", err)
	}
	if len(reminders) != 1 || reminders[0].Reminder.Count != 1 {
		t.Fatalf("unexpected reminders %+v", reminders)
	}
	if reminders[0].Sender == nil || reminders[0].Sender.ID != r1.ID {
		t.Fatalf("sender not joined: %+v", reminders[0])
	}

	for _, et := range []events.EventType{
		events.EventTicketCreated,
		events.EventAssignmentCreated,
		events.EventProofSubmitted,
		events.EventReminderSent,
	} {
		if len(f.eventsOf(et)) != 1 {
			t.Fatalf("expected one %s event, got %d", et, len(f.eventsOf(et)))
		}
	}
}

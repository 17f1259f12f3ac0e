package service

import (
	"context"
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestCreateWorkInstruction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	boss := f.addUser(t, "boss", domain.RoleIncharge)
	worker := f.addUser(t, "worker", domain.RoleIT)

	wi, err := f.instrSvc.Create(ctx, WorkInstructionInput{
		CreatorID:    boss.ID,
		RecipientIDs: []string{worker.ID},
		Type:         strPtr("safety"),
		ReviewTime:   "MONTHLY",
		OrderType:    strPtr("follow"),
		MediaSelect:  []string{"audio", "", "audio", "image"},
		Media:        domain.MediaRefs{VoiceNoteURL: strPtr("http://files/a.wav")},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if wi.ReviewTime != domain.ReviewMonthly || wi.OrderType == nil || *wi.OrderType != domain.OrderFollow {
		t.Fatalf("enums not normalised: %+v", wi)
	}
	if len(wi.MediaSelect) != 2 || !wi.SavedAt.Equal(testNow) {
		t.Fatalf("unexpected instruction %+v", wi)
	}
	if got := f.eventsOf(events.EventWorkInstructionIssued); len(got) != 1 || got[0].Recipients[0] != worker.ID {
		t.Fatalf("issued events = %+v", got)
	}

	cases := []struct {
		name  string
		input WorkInstructionInput
	}{
		{"no recipients", WorkInstructionInput{CreatorID: boss.ID, ReviewTime: "daily"}},
		{"no cadence", WorkInstructionInput{CreatorID: boss.ID, RecipientIDs: []string{worker.ID}}},
		{"unknown cadence", WorkInstructionInput{CreatorID: boss.ID, RecipientIDs: []string{worker.ID}, ReviewTime: "hourly"}},
		{"unknown order", WorkInstructionInput{CreatorID: boss.ID, RecipientIDs: []string{worker.ID}, ReviewTime: "daily", OrderType: strPtr("loose")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.instrSvc.Create(ctx, tc.input)
			assertCode(t, err, apperrors.CodeValidation)
		})
	}
}

func TestListWorkInstructions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	boss := f.addUser(t, "boss", domain.RoleIncharge)
	a := f.addUser(t, "a", domain.RoleIT)
	b := f.addUser(t, "b", domain.RoleIT)

	first, err := f.instrSvc.Create(ctx, WorkInstructionInput{CreatorID: boss.ID, RecipientIDs: []string{a.ID}, ReviewTime: "daily"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.instrSvc.Create(ctx, WorkInstructionInput{CreatorID: boss.ID, RecipientIDs: []string{a.ID, b.ID}, ReviewTime: "weekly"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	views, err := f.instrSvc.ListForRecipient(ctx, b.ID)
	if err != nil {
		t.Fatalf("list for recipient: %v", err)
	}
	if len(views) != 1 || views[0].Creator == nil || views[0].Creator.ID != boss.ID || len(views[0].Recipients) != 2 {
		t.Fatalf("recipient view = %+v", views)
	}

	views, err = f.instrSvc.ListByCreator(ctx, boss.ID, nil, nil)
	if err != nil || len(views) != 2 {
		t.Fatalf("creator list = %d, %v", len(views), err)
	}
	views, err = f.instrSvc.ListByCreator(ctx, boss.ID, &first.ID, nil)
	if err != nil || len(views) != 1 || views[0].Instruction.ID != first.ID {
		t.Fatalf("narrowed list = %+v, %v", views, err)
	}

	_, err = f.instrSvc.ListForRecipient(ctx, " ")
	assertCode(t, err, apperrors.CodeValidation)
	_, err = f.instrSvc.ListByCreator(ctx, boss.ID, strPtr("not-a-uuid"), nil)
	assertCode(t, err, apperrors.CodeValidation)
	_, err = f.instrSvc.ListByCreator(ctx, "boss", nil, nil)
	assertCode(t, err, apperrors.CodeValidation)
}

func TestProofJoinsWorkInstruction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	boss := f.addUser(t, "boss", domain.RoleIncharge)
	worker := f.addUser(t, "worker", domain.RoleIT)
	ticket := f.addTicket(t, boss.ID, worker.ID)

	wi, err := f.instrSvc.Create(ctx, WorkInstructionInput{
		CreatorID: boss.ID, RecipientIDs: []string{worker.ID}, ReviewTime: "onetime", Type: strPtr("lockout"),
	})
	if err != nil {
		t.Fatalf("create instruction: %v", err)
	}
	for _, ref := range []*string{&wi.ID, strPtr("gone"), nil} {
		if _, err := f.proofSvc.SubmitProof(ctx, ProofSubmitInput{TicketID: ticket.ID, SubmitterID: &worker.ID, WorkInstructionID: ref}); err != nil {
			t.Fatalf("submit proof: %v", err)
		}
	}

	views, err := f.proofSvc.ListProofs(ctx, ProofQuery{TicketID: &ticket.ID})
	if err != nil {
		t.Fatalf("list proofs: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("proofs = %d", len(views))
	}
	joined := 0
	for _, v := range views {
		if v.WorkInstruction == nil {
			continue
		}
		joined++
		if v.WorkInstruction.ID != wi.ID || v.WorkInstruction.Type == nil || *v.WorkInstruction.Type != "lockout" {
			t.Fatalf("joined instruction = %+v", v.WorkInstruction)
		}
	}
	if joined != 1 {
		t.Fatalf("only the resolvable reference should join, got %d", joined)
	}
}

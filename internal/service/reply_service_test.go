package service

import (
	"context"
	"errors"
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestRespondToTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.addUser(t, "author", domain.RoleIncharge)
	responder := f.addUser(t, "responder", domain.RoleIT)
	ticket := f.addTicket(t, author.ID, responder.ID)

	input := ReplyInput{
		TicketID:    ticket.ID,
		AuthorID:    author.ID,
		ResponderID: responder.ID,
		Type:        "general",
		Description: "cable replaced",
		Priority:    "urgent",
		Rights:      strPtr("View"),
	}
	resp, err := f.replySvc.Respond(ctx, input)
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if resp.Status != domain.ResponseStatusPending || resp.Priority != domain.TicketPriorityUrgent || resp.Rights == nil {
		t.Fatalf("unexpected response %+v", resp)
	}
	if got := f.eventsOf(events.EventTicketResponded); len(got) != 1 || got[0].Recipients[0] != author.ID {
		t.Fatalf("responded events = %+v", got)
	}

	views, err := f.replySvc.ListResponses(ctx, ReplyQuery{TicketID: ticket.ID, ResponderID: &responder.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 || views[0].Author == nil || views[0].Responder == nil || views[0].Ticket == nil {
		t.Fatalf("joined view = %+v", views)
	}
	views, err = f.replySvc.ListResponses(ctx, ReplyQuery{TicketID: ticket.ID, AuthorID: &responder.ID})
	if err != nil || len(views) != 0 {
		t.Fatalf("author filter = %d, %v", len(views), err)
	}
	_, err = f.replySvc.ListResponses(ctx, ReplyQuery{})
	assertCode(t, err, apperrors.CodeValidation)

	bad := input
	bad.Description = ""
	_, err = f.replySvc.Respond(ctx, bad)
	assertCode(t, err, apperrors.CodeValidation)

	bad = input
	bad.TicketID = "ticket-1"
	_, err = f.replySvc.Respond(ctx, bad)
	assertCode(t, err, apperrors.CodeValidation)

	bad = input
	bad.TicketID = "00000000-0000-0000-0000-000000000000"
	_, err = f.replySvc.Respond(ctx, bad)
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestSatisfactionLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.addUser(t, "author", domain.RoleIncharge)
	responder := f.addUser(t, "responder", domain.RoleIT)
	ticket := f.addTicket(t, author.ID, responder.ID)

	rec, err := f.replySvc.RecordSatisfaction(ctx, ReplyInput{
		TicketID:    ticket.ID,
		AuthorID:    author.ID,
		ResponderID: responder.ID,
		Type:        "general",
		Description: "fixed quickly",
		Priority:    "Normal",
		Media:       domain.MediaRefs{ImageURL: strPtr("http://files/before.png")},
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if rec.Status != domain.SatisfactionStatusCompleted {
		t.Fatalf("status = %q", rec.Status)
	}

	noFiles := func(context.Context) (domain.MediaRefs, error) { return domain.MediaRefs{}, nil }
	updated, err := f.replySvc.UpdateSatisfaction(ctx, SatisfactionUpdateInput{ID: rec.ID, Description: strPtr("fixed, then broke"), SaveMedia: noFiles})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description != "fixed, then broke" || updated.Media.ImageURL == nil || updated.Status != domain.SatisfactionStatusCompleted {
		t.Fatalf("empty upload must keep stored media: %+v", updated)
	}

	newVideo := func(context.Context) (domain.MediaRefs, error) {
		return domain.MediaRefs{VideoURL: strPtr("http://files/after.mp4")}, nil
	}
	updated, err = f.replySvc.UpdateSatisfaction(ctx, SatisfactionUpdateInput{ID: rec.ID, Status: strPtr("Reopened"), SaveMedia: newVideo})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != "Reopened" || updated.Media.VideoURL == nil || updated.Media.ImageURL != nil {
		t.Fatalf("upload must replace media: %+v", updated)
	}
	if got := f.eventsOf(events.EventSatisfactionRecorded); len(got) != 2 {
		t.Fatalf("satisfaction events = %d", len(got))
	}

	failing := func(context.Context) (domain.MediaRefs, error) { return domain.MediaRefs{}, errors.New("disk full") }
	if _, err := f.replySvc.UpdateSatisfaction(ctx, SatisfactionUpdateInput{ID: rec.ID, SaveMedia: failing}); err == nil {
		t.Fatalf("expected save failure to surface")
	}
	_, err = f.replySvc.UpdateSatisfaction(ctx, SatisfactionUpdateInput{ID: "x"})
	assertCode(t, err, apperrors.CodeValidation)
	_, err = f.replySvc.UpdateSatisfaction(ctx, SatisfactionUpdateInput{ID: "00000000-0000-0000-0000-000000000000", Status: strPtr("x")})
	assertCode(t, err, apperrors.CodeNotFound)
	_, err = f.replySvc.UpdateSatisfaction(ctx, SatisfactionUpdateInput{ID: rec.ID, Priority: strPtr("whenever")})
	assertCode(t, err, apperrors.CodeValidation)

	views, err := f.replySvc.ListSatisfactions(ctx, ReplyQuery{TicketID: ticket.ID})
	if err != nil || len(views) != 1 || views[0].Ticket == nil || views[0].Ticket.ID != ticket.ID {
		t.Fatalf("list = %+v, %v", views, err)
	}

	n, err := f.replySvc.PurgeSatisfactions(ctx)
	if err != nil || n != 1 {
		t.Fatalf("purge = %d, %v", n, err)
	}
	views, err = f.replySvc.ListSatisfactions(ctx, ReplyQuery{TicketID: ticket.ID})
	if err != nil || len(views) != 0 {
		t.Fatalf("after purge = %d, %v", len(views), err)
	}
}

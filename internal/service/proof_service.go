package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// ProofService stores completion evidence against tickets.
type ProofService struct {
	proofs       repository.ProofRepository
	tickets      repository.TicketRepository
	instructions repository.WorkInstructionRepository
	users        repository.UserRepository
	rt           Runtime
}

// ProofDependencies bundles repositories.
type ProofDependencies struct {
	ProofRepo           repository.ProofRepository
	TicketRepo          repository.TicketRepository
	WorkInstructionRepo repository.WorkInstructionRepository
	UserRepo            repository.UserRepository
	Runtime             Runtime
}

// ProofSubmitInput carries a new proof. Only TicketID is required.
type ProofSubmitInput struct {
	TicketID          string
	SubmitterID       *string
	RecipientID       *string
	WorkInstructionID *string
	RecipientName     *string
	Remarks           *string
	Media             domain.MediaRefs
	SaveMedia         MediaSaver
}

// ProofQuery filters proofs; at least one of SubmitterID or TicketID is required.
type ProofQuery struct {
	SubmitterID       *string
	TicketID          *string
	WorkInstructionID *string
}

// ProofView joins a proof with its ticket, recipient and work instruction,
// each nil when unresolved.
type ProofView struct {
	Proof           domain.Proof
	Ticket          *TicketBrief
	Recipient       *domain.Profile
	WorkInstruction *WorkInstructionBrief
}

// NewProofService creates the service.
func NewProofService(deps ProofDependencies) *ProofService {
	return &ProofService{
		proofs:       deps.ProofRepo,
		tickets:      deps.TicketRepo,
		instructions: deps.WorkInstructionRepo,
		users:        deps.UserRepo,
		rt:           deps.Runtime,
	}
}

// SubmitProof records a proof.
func (s *ProofService) SubmitProof(ctx context.Context, input ProofSubmitInput) (*domain.Proof, error) {
	if strings.TrimSpace(input.TicketID) == "" {
		return nil, apperrors.NewMissingFields("ticket_id")
	}
	media, err := resolveMedia(ctx, input.Media, input.SaveMedia)
	if err != nil {
		return nil, err
	}
	proof := &domain.Proof{
		TicketID:          strings.TrimSpace(input.TicketID),
		SubmitterID:       optionalString(input.SubmitterID),
		RecipientID:       optionalString(input.RecipientID),
		WorkInstructionID: optionalString(input.WorkInstructionID),
		RecipientName:     optionalString(input.RecipientName),
		Remarks:           optionalString(input.Remarks),
		Media:             media,
	}
	if err := s.proofs.Create(ctx, proof); err != nil {
		return nil, apperrors.MapError(err)
	}

	event := events.Event{
		Type:     events.EventProofSubmitted,
		TicketID: proof.TicketID,
		Payload: events.ProofSubmittedPayload{
			ProofID:           proof.ID,
			WorkInstructionID: proof.WorkInstructionID,
		},
	}
	if proof.SubmitterID != nil {
		event.ActorID = *proof.SubmitterID
	}
	if proof.RecipientID != nil {
		event.Recipients = []string{*proof.RecipientID}
	}
	s.rt.publishEvent(ctx, event)
	return proof, nil
}

// ListProofs returns matching proofs, newest first.
func (s *ProofService) ListProofs(ctx context.Context, query ProofQuery) ([]ProofView, error) {
	filter := repository.ProofFilter{
		SubmitterID:       optionalString(query.SubmitterID),
		TicketID:          optionalString(query.TicketID),
		WorkInstructionID: optionalString(query.WorkInstructionID),
	}
	if filter.SubmitterID == nil && filter.TicketID == nil {
		return nil, apperrors.NewMissingFields("user_id", "ticket_id")
	}
	proofs, err := s.proofs.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	var ticketIDs, recipientIDs, instructionIDs []string
	for _, p := range proofs {
		ticketIDs = append(ticketIDs, p.TicketID)
		if p.RecipientID != nil {
			recipientIDs = append(recipientIDs, *p.RecipientID)
		}
		if p.WorkInstructionID != nil {
			instructionIDs = append(instructionIDs, *p.WorkInstructionID)
		}
	}
	tickets, err := loadTickets(ctx, s.tickets, ticketIDs...)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	profiles, err := loadProfiles(ctx, s.users, recipientIDs...)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	instructions, err := loadInstructionBriefs(ctx, s.instructions, instructionIDs...)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	out := make([]ProofView, 0, len(proofs))
	for _, p := range proofs {
		view := ProofView{Proof: p, Ticket: briefOf(tickets[p.TicketID])}
		if p.RecipientID != nil {
			view.Recipient = profileRef(profiles, *p.RecipientID)
		}
		if p.WorkInstructionID != nil {
			view.WorkInstruction = instructions[*p.WorkInstructionID]
		}
		out = append(out, view)
	}
	return out, nil
}

// PurgeProofs deletes every proof.
func (s *ProofService) PurgeProofs(ctx context.Context) (int64, error) {
	n, err := s.proofs.DeleteAll(ctx)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	s.rt.logger().Info("proofs purged", zap.Int64("count", n))
	return n, nil
}

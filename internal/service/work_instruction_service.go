package service

import (
	"context"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// WorkInstructionService issues standing orders that proofs can reference.
type WorkInstructionService struct {
	instructions repository.WorkInstructionRepository
	users        repository.UserRepository
	rt           Runtime
}

// WorkInstructionDependencies bundles repositories.
type WorkInstructionDependencies struct {
	WorkInstructionRepo repository.WorkInstructionRepository
	UserRepo            repository.UserRepository
	Runtime             Runtime
}

// WorkInstructionInput carries a new work instruction.
type WorkInstructionInput struct {
	CreatorID    string
	RecipientIDs []string
	Type         *string
	Remarks      *string
	ReviewTime   string
	OrderType    *string
	MediaSelect  []string
	Media        domain.MediaRefs
	SaveMedia    MediaSaver
}

// WorkInstructionView joins an instruction with its creator and recipients.
type WorkInstructionView struct {
	Instruction domain.WorkInstruction
	Creator     *domain.Profile
	Recipients  []domain.Profile
}

// WorkInstructionBrief is the slice of an instruction joined into proofs.
type WorkInstructionBrief struct {
	ID   string
	Type *string
}

// NewWorkInstructionService creates the service.
func NewWorkInstructionService(deps WorkInstructionDependencies) *WorkInstructionService {
	return &WorkInstructionService{
		instructions: deps.WorkInstructionRepo,
		users:        deps.UserRepo,
		rt:           deps.Runtime,
	}
}

// Create validates and stores an instruction.
func (s *WorkInstructionService) Create(ctx context.Context, input WorkInstructionInput) (*domain.WorkInstruction, error) {
	missing := missingFields(
		"user_id", input.CreatorID,
		"review_time", input.ReviewTime,
	)
	if len(input.RecipientIDs) == 0 {
		missing = append(missing, "recipient_ids")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewMissingFields(missing...)
	}
	cadence, ok := domain.ParseReviewCadence(input.ReviewTime)
	if !ok {
		return nil, apperrors.NewInvalidField("review_time", "review_time must be one of daily, weekly, monthly, onetime")
	}
	var order *domain.OrderType
	if raw := optionalString(input.OrderType); raw != nil {
		o, ok := domain.ParseOrderType(*raw)
		if !ok {
			return nil, apperrors.NewInvalidField("order_type", "order_type must be strict or Follow")
		}
		order = &o
	}

	media, err := resolveMedia(ctx, input.Media, input.SaveMedia)
	if err != nil {
		return nil, err
	}
	wi := &domain.WorkInstruction{
		CreatorID:    strings.TrimSpace(input.CreatorID),
		RecipientIDs: input.RecipientIDs,
		Type:         optionalString(input.Type),
		Remarks:      optionalString(input.Remarks),
		Media:        media,
		ReviewTime:   cadence,
		OrderType:    order,
		MediaSelect:  uniqueNonEmpty(input.MediaSelect),
	}
	if err := s.instructions.Create(ctx, wi); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.rt.publishEvent(ctx, events.Event{
		Type:       events.EventWorkInstructionIssued,
		ActorID:    wi.CreatorID,
		Recipients: wi.RecipientIDs,
		Payload:    events.WorkInstructionIssuedPayload{WorkInstructionID: wi.ID, ReviewTime: wi.ReviewTime},
	})
	return wi, nil
}

// ListForRecipient returns the instructions addressed to a user, newest first.
func (s *WorkInstructionService) ListForRecipient(ctx context.Context, recipientID string) ([]WorkInstructionView, error) {
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return nil, apperrors.NewMissingFields("recipient_id")
	}
	return s.list(ctx, repository.WorkInstructionFilter{RecipientID: &recipientID})
}

// ListByCreator returns a creator's instructions, optionally narrowed to one
// instruction or one recipient. Every id must be well formed.
func (s *WorkInstructionService) ListByCreator(ctx context.Context, creatorID string, instructionID, recipientID *string) ([]WorkInstructionView, error) {
	creatorID = strings.TrimSpace(creatorID)
	if creatorID == "" {
		return nil, apperrors.NewMissingFields("user_id")
	}
	filter := repository.WorkInstructionFilter{
		CreatorID:   &creatorID,
		ID:          optionalString(instructionID),
		RecipientID: optionalString(recipientID),
	}
	checks := []struct {
		field string
		id    *string
	}{
		{"user_id", filter.CreatorID},
		{"work_instruction_id", filter.ID},
		{"recipient_id", filter.RecipientID},
	}
	for _, c := range checks {
		if c.id != nil && !isWellFormedID(*c.id) {
			return nil, apperrors.NewInvalidField(c.field, c.field+" is malformed")
		}
	}
	return s.list(ctx, filter)
}

func (s *WorkInstructionService) list(ctx context.Context, filter repository.WorkInstructionFilter) ([]WorkInstructionView, error) {
	items, err := s.instructions.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	var ids []string
	for _, wi := range items {
		ids = append(ids, wi.CreatorID)
		ids = append(ids, wi.RecipientIDs...)
	}
	profiles, err := loadProfiles(ctx, s.users, ids...)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	out := make([]WorkInstructionView, 0, len(items))
	for _, wi := range items {
		out = append(out, WorkInstructionView{
			Instruction: wi,
			Creator:     profileRef(profiles, wi.CreatorID),
			Recipients:  profileList(profiles, wi.RecipientIDs),
		})
	}
	return out, nil
}

func loadInstructionBriefs(ctx context.Context, instructions repository.WorkInstructionRepository, ids ...string) (map[string]*WorkInstructionBrief, error) {
	ids = uniqueNonEmpty(ids)
	out := make(map[string]*WorkInstructionBrief, len(ids))
	if len(ids) == 0 || instructions == nil {
		return out, nil
	}
	found, err := instructions.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, wi := range found {
		out[wi.ID] = &WorkInstructionBrief{ID: wi.ID, Type: wi.Type}
	}
	return out, nil
}

package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// WorkInstructionRepository stores work instructions in a map.
type WorkInstructionRepository struct {
	mu    sync.RWMutex
	clock Clock
	items map[string]domain.WorkInstruction
}

var _ repository.WorkInstructionRepository = (*WorkInstructionRepository)(nil)

// NewWorkInstructionRepository returns an empty store.
func NewWorkInstructionRepository(clock Clock) *WorkInstructionRepository {
	return &WorkInstructionRepository{clock: clock, items: make(map[string]domain.WorkInstruction)}
}

func (r *WorkInstructionRepository) Create(_ context.Context, wi *domain.WorkInstruction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock.now()
	wi.ID = newID()
	wi.SavedAt = now
	wi.CreatedAt = now
	wi.UpdatedAt = now
	r.items[wi.ID] = cloneWorkInstruction(*wi)
	return nil
}

func (r *WorkInstructionRepository) GetByIDs(_ context.Context, ids []string) ([]domain.WorkInstruction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.WorkInstruction
	for _, id := range ids {
		if wi, ok := r.items[id]; ok {
			out = append(out, cloneWorkInstruction(wi))
		}
	}
	return out, nil
}

func (r *WorkInstructionRepository) List(_ context.Context, filter repository.WorkInstructionFilter) ([]domain.WorkInstruction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.WorkInstruction
	for _, wi := range r.items {
		if filter.ID != nil && wi.ID != *filter.ID {
			continue
		}
		if filter.CreatorID != nil && wi.CreatorID != *filter.CreatorID {
			continue
		}
		if filter.RecipientID != nil && !wi.HasRecipient(*filter.RecipientID) {
			continue
		}
		out = append(out, cloneWorkInstruction(wi))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SavedAt.After(out[j].SavedAt) })
	return out, nil
}

func cloneWorkInstruction(wi domain.WorkInstruction) domain.WorkInstruction {
	wi.RecipientIDs = cloneStrings(wi.RecipientIDs)
	wi.MediaSelect = cloneStrings(wi.MediaSelect)
	return wi
}

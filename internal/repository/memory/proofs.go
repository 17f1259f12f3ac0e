package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// ProofRepository keeps proofs in insertion order.
type ProofRepository struct {
	mu     sync.RWMutex
	clock  Clock
	proofs []domain.Proof
}

var _ repository.ProofRepository = (*ProofRepository)(nil)

// NewProofRepository returns an empty store.
func NewProofRepository(clock Clock) *ProofRepository {
	return &ProofRepository{clock: clock}
}

func (r *ProofRepository) Create(_ context.Context, proof *domain.Proof) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock.now()
	proof.ID = newID()
	proof.CreatedAt = now
	proof.UpdatedAt = now
	r.proofs = append(r.proofs, *proof)
	return nil
}

func (r *ProofRepository) List(_ context.Context, filter repository.ProofFilter) ([]domain.Proof, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Proof
	for _, p := range r.proofs {
		if filter.SubmitterID != nil && (p.SubmitterID == nil || *p.SubmitterID != *filter.SubmitterID) {
			continue
		}
		if filter.TicketID != nil && p.TicketID != *filter.TicketID {
			continue
		}
		if filter.WorkInstructionID != nil && (p.WorkInstructionID == nil || *p.WorkInstructionID != *filter.WorkInstructionID) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ProofRepository) DeleteAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.proofs))
	r.proofs = nil
	return n, nil
}
